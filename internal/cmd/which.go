package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/codedock/internal/config"
	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/launcher"
)

var whichCmd = &cobra.Command{
	Use:   "which",
	Short: "Show which executable would be launched",
	Long: `Resolve the configured editor executable against PATH exactly as a
launch would, and print the command line that would be run.`,
	Args: cobra.NoArgs,
	RunE: runWhich,
}

var whichVerbose bool

func init() {
	rootCmd.AddCommand(whichCmd)

	whichCmd.Flags().BoolVarP(&whichVerbose, "verbose", "v", false, "List the searched directories")
}

func runWhich(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	resolver := launcher.NewResolver(afero.NewOsFs(), os.Getenv("PATH"))
	return whichWith(cmd.OutOrStdout(), resolver, cfg.Launch.Spec(), whichVerbose)
}

func whichWith(w io.Writer, resolver *launcher.Resolver, spec launcher.Spec, verbose bool) error {
	path, err := resolver.Resolve(spec)
	if verbose || err != nil {
		fmt.Fprintln(w, headerStyle.Render("Search path:"))
		for _, dir := range resolver.Dirs() {
			fmt.Fprintf(w, "  %s\n", mutedStyle.Render(dir))
		}
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Extensions:"), strings.Join(quoteAll(spec.Extensions), " "))
	}
	if err != nil {
		if errors.Is(err, errors.ErrExecutableNotFound) {
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%s was not found on PATH", spec.Executable)))
		}
		return err
	}

	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Executable:"), okStyle.Render(path))
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Arguments:"), strings.Join(quoteAll(spec.Argv()), " "))
	return nil
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		if s == "" || strings.ContainsAny(s, " \t") {
			out[i] = fmt.Sprintf("%q", s)
			continue
		}
		out[i] = s
	}
	return out
}
