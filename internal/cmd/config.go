package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/codedock/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify codedock configuration",
	Long: `View or modify codedock configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  codedock config set launch.executable code-insiders
  codedock config set locate.title "Visual Studio Code - Insiders"
  codedock config set logging.level debug

Valid keys:
  launch.executable        - Program name on PATH, or a path to it
  launch.workspace         - Folder or workspace file to open
  launch.work_dir          - Working directory (default: executable's directory)
  locate.title             - Title substring identifying the editor window
  locate.initial_delay_ms  - Wait before the first window scan
  locate.poll_interval_ms  - Wait between window scans
  locate.max_attempts      - Number of window scans before giving up
  embed.max_depth          - Deepest child window restyled
  embed.max_windows        - Maximum windows restyled per embed
  logging.enabled          - Write logs (true/false)
  logging.level            - debug, info, warn, error
  logging.dir              - Log directory (empty logs to stderr)
  logging.max_size_mb      - Rotate the log file past this size
  logging.max_backups      - Rotated files to keep
  logging.compress         - Gzip rotated files (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/codedock/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// settableKeys maps each key accepted by config set to its value type.
var settableKeys = map[string]string{
	"launch.executable":       "string",
	"launch.workspace":        "string",
	"launch.work_dir":         "string",
	"locate.title":            "string",
	"locate.initial_delay_ms": "int",
	"locate.poll_interval_ms": "int",
	"locate.max_attempts":     "int",
	"embed.max_depth":         "int",
	"embed.max_windows":       "int",
	"logging.enabled":         "bool",
	"logging.level":           "string",
	"logging.dir":             "string",
	"logging.max_size_mb":     "int",
	"logging.max_backups":     "int",
	"logging.compress":        "bool",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	return showConfig(cmd.OutOrStdout(), config.Get(), viper.ConfigFileUsed())
}

func showConfig(w io.Writer, cfg *config.Config, source string) error {
	if source == "" {
		source = mutedStyle.Render("(none - using defaults)")
	}
	fmt.Fprintf(w, "%s %s\n\n", headerStyle.Render("Config file:"), source)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// parseSetting converts a config set argument to the key's type.
func parseSetting(key, value string) (any, error) {
	keyType, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'codedock config set --help' to see valid keys", key)
	}

	switch keyType {
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typed, err := parseSetting(key, value)
	if err != nil {
		return err
	}

	viper.Set(key, typed)
	if _, err := config.Load(); err != nil {
		return fmt.Errorf("refusing to save invalid configuration: %w", err)
	}

	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", accentStyle.Render(key), typed)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// defaultConfigFile renders the defaults as a commented YAML document.
func defaultConfigFile() ([]byte, error) {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return nil, err
	}

	header := `# codedock configuration
#
# launch:  how the editor is started (executable searched on PATH)
# locate:  how its window is found after launch
# embed:   bounds for restyling the editor's child windows
# logging: JSON log output; an empty dir logs to stderr
#
# Every key can be overridden with a CODEDOCK_ environment variable,
# e.g. CODEDOCK_LOCATE_TITLE for locate.title.

`
	return append([]byte(header), data...), nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'codedock config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := defaultConfigFile()
	if err != nil {
		return fmt.Errorf("failed to render default config: %w", err)
	}
	if err := os.WriteFile(configFile, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", okStyle.Render(configFile))
	fmt.Fprintln(out, "Edit this file to customize codedock's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s %s\n", config.ConfigFile(), mutedStyle.Render("(not created)"))
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintf(out, "\nEnvironment variables: %[1]s_* (e.g., %[1]s_LOCATE_TITLE)\n", config.EnvPrefix)
	return nil
}
