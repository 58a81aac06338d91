package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/codedock/internal/bridge"
	"github.com/Iron-Ham/codedock/internal/config"
	"github.com/Iron-Ham/codedock/internal/launcher"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/Iron-Ham/codedock/internal/window"
	"github.com/Iron-Ham/codedock/internal/window/win32"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Host an embedding session driven over stdin",
	Long: `Run an embedding session. Host commands are read from stdin as JSON lines
and state notifications are written to stdout.

With --container the editor is embedded into that window immediately,
which is enough for a host that only needs attach-on-start and
shutdown-on-exit.

Examples:
  # Embed into window 0x30A52 and open a workspace
  codedock run --container 0x30A52 --workspace C:\src\project

  # Let the host send {"op":"attach","container":...} later
  codedock run`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runContainer string
	runWorkspace string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runContainer, "container", "", "Native handle of the container window (decimal or 0x hex)")
	runCmd.Flags().StringVar(&runWorkspace, "workspace", "", "Folder or workspace file to open (overrides launch.workspace)")
}

// parseHandle accepts decimal, 0x-prefixed hex or 0-prefixed octal.
func parseHandle(s string) (window.Handle, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q: %w", s, err)
	}
	return window.Handle(v), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	container, err := parseHandle(runContainer)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if runWorkspace != "" {
		cfg.Launch.Workspace = runWorkspace
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = logger.Close() }()

	watchConfig(logger)

	backend, err := win32.New(logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	eng := newEngine(cfg, platform{
		backend: backend,
		spawner: launcher.ExecSpawner{},
		fs:      afero.NewOsFs(),
		pathEnv: os.Getenv("PATH"),
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if bridge.Interactive(os.Stdin) {
		fmt.Fprint(os.Stderr, bridge.Usage)
	}

	logger.Info("session starting", "container", container.String(), "workspace", cfg.Launch.Workspace)
	return eng.serve(ctx, os.Stdin, os.Stdout, container)
}

// watchConfig applies log level changes from the config file while the
// session runs. Other settings take effect on the next run.
func watchConfig(logger *logging.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := config.Load()
		if err != nil {
			logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}
		logger.SetLevel(next.Logging.Level)
		logger.Info("config reloaded", "file", e.Name, "level", logger.Level())
	})
	viper.WatchConfig()
}
