package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/codedock/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "codedock",
	Short: "Embed an external editor window into a host window",
	Long: `codedock launches Visual Studio Code, finds its top-level window and
re-parents it into a container window supplied by a host process. The
embedded editor follows the container's size, can be hidden and re-shown
without a restart, and is closed when the host shuts down.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/codedock/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if err := config.Bind(viper.GetViper(), viper.GetString("config")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config: %v\n", err)
	}
}
