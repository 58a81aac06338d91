package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/codedock/internal/config"
	"github.com/Iron-Ham/codedock/internal/locator"
	"github.com/Iron-Ham/codedock/internal/window"
	"github.com/Iron-Ham/codedock/internal/window/win32"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "List top-level windows that match the editor title",
	Long: `Enumerate visible top-level windows once and show which ones the
embedding engine would consider. Windows owned by --pid match precisely;
any other window whose title contains --title is a fallback match. The
window marked with * is the one an embed would pick.

Examples:
  codedock locate
  codedock locate --title "Code - Insiders" --pid 4312`,
	Args: cobra.NoArgs,
	RunE: runLocate,
}

var (
	locateTitle string
	locatePID   int
)

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().StringVar(&locateTitle, "title", "", "Title substring to match (default: locate.title)")
	locateCmd.Flags().IntVar(&locatePID, "pid", 0, "Process ID for the precise pass")
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	criteria := locator.Criteria{Title: cfg.Locate.Title, PID: locatePID}
	if locateTitle != "" {
		criteria.Title = locateTitle
	}

	backend, err := win32.New(nil)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	return locateWith(cmd.OutOrStdout(), backend, criteria)
}

func locateWith(w io.Writer, backend window.Backend, criteria locator.Criteria) error {
	infos, err := backend.TopLevel()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}

	candidates := locator.Classify(infos, criteria)
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Matching"), accentStyle.Render(strconv.Quote(criteria.Title)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d top-level windows scanned", len(infos))))
	fmt.Fprintln(w)

	if len(candidates) == 0 {
		fmt.Fprintln(w, warnStyle.Render("No matching windows."))
		return nil
	}

	chosen, _ := locator.Match(infos, criteria)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("  %-12s %-8s %-9s %s", "HANDLE", "PID", "PASS", "TITLE")))
	for _, c := range candidates {
		mark := " "
		if c.Handle == chosen.Handle {
			mark = okStyle.Render("*")
		}
		fmt.Fprintf(w, "%s %-12s %-8d %-9s %s\n", mark, c.Handle, c.PID, c.Pass, c.Title)
	}
	return nil
}
