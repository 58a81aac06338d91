package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Iron-Ham/codedock/internal/embedder"
	"github.com/Iron-Ham/codedock/internal/errors"
	"github.com/Iron-Ham/codedock/internal/launcher"
	"github.com/Iron-Ham/codedock/internal/locator"
	"github.com/Iron-Ham/codedock/internal/logging"
	"github.com/spf13/viper"
)

// Config represents the complete codedock configuration
type Config struct {
	Launch  LaunchConfig  `mapstructure:"launch" yaml:"launch"`
	Locate  LocateConfig  `mapstructure:"locate" yaml:"locate"`
	Embed   EmbedConfig   `mapstructure:"embed" yaml:"embed"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LaunchConfig controls how the editor process is started
type LaunchConfig struct {
	// Executable is the program name searched on PATH, or a path to it (default: "code")
	Executable string `mapstructure:"executable" yaml:"executable"`
	// Extensions are tried in order for each PATH directory.
	// Defaults to [".cmd", ".exe"] on Windows and the bare name elsewhere.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	// Args are passed before the workspace path
	Args []string `mapstructure:"args" yaml:"args"`
	// Workspace is the folder or .code-workspace file to open (default: none)
	Workspace string `mapstructure:"workspace" yaml:"workspace"`
	// WorkDir overrides the working directory. Empty uses the executable's directory.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir"`
}

// LocateConfig controls how the editor's top-level window is found after launch
type LocateConfig struct {
	// Title is the case-insensitive substring matched against window titles
	Title string `mapstructure:"title" yaml:"title"`
	// InitialDelayMs is waited once before the first enumeration (default: 2000)
	InitialDelayMs int `mapstructure:"initial_delay_ms" yaml:"initial_delay_ms"`
	// PollIntervalMs separates enumerations (default: 500)
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	// MaxAttempts bounds the number of enumerations (default: 20)
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// EmbedConfig bounds the decoration fix-up walk over the window subtree
type EmbedConfig struct {
	// MaxDepth is the deepest child level visited (default: 8)
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// MaxWindows caps the number of windows visited (default: 256)
	MaxWindows int `mapstructure:"max_windows" yaml:"max_windows"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logs are written at all (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory holding codedock.log. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// DefaultExtensions returns the executable suffixes probed on this platform.
func DefaultExtensions() []string {
	if runtime.GOOS == "windows" {
		return []string{".cmd", ".exe"}
	}
	return []string{""}
}

// Default returns a Config with sensible default values
func Default() *Config {
	policy := locator.DefaultPolicy()
	limits := embedder.DefaultLimits()
	rotation := logging.DefaultRotationConfig()

	return &Config{
		Launch: LaunchConfig{
			Executable: "code",
			Extensions: DefaultExtensions(),
			Args:       []string{"--new-window", "--disable-workspace-trust"},
		},
		Locate: LocateConfig{
			Title:          "Visual Studio Code",
			InitialDelayMs: int(policy.InitialDelay / time.Millisecond),
			PollIntervalMs: int(policy.Interval / time.Millisecond),
			MaxAttempts:    policy.MaxAttempts,
		},
		Embed: EmbedConfig{
			MaxDepth:   limits.MaxDepth,
			MaxWindows: limits.MaxWindows,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
		},
	}
}

// Spec returns the launch description for the configured editor.
func (c *LaunchConfig) Spec() launcher.Spec {
	return launcher.Spec{
		Executable: c.Executable,
		Extensions: append([]string(nil), c.Extensions...),
		Args:       append([]string(nil), c.Args...),
		Workspace:  c.Workspace,
		Dir:        c.WorkDir,
	}
}

// Policy returns the polling policy as durations.
func (c *LocateConfig) Policy() locator.Policy {
	return locator.Policy{
		InitialDelay: time.Duration(c.InitialDelayMs) * time.Millisecond,
		Interval:     time.Duration(c.PollIntervalMs) * time.Millisecond,
		MaxAttempts:  c.MaxAttempts,
	}
}

// Limits returns the subtree walk bounds.
func (c *EmbedConfig) Limits() embedder.Limits {
	return embedder.Limits{MaxDepth: c.MaxDepth, MaxWindows: c.MaxWindows}
}

// Rotation returns the log rotation settings.
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// ResolveDir returns the log directory with a leading ~ expanded.
func (c *LoggingConfig) ResolveDir() string {
	path := c.Dir
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// NewLogger builds the logger described by the logging section.
// A disabled section yields a logger that discards everything.
func (c *LoggingConfig) NewLogger() (*logging.Logger, error) {
	if !c.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLoggerWithRotation(c.ResolveDir(), c.Level, c.Rotation())
}

// SetDefaults registers default values with viper
func SetDefaults() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Launch defaults
	v.SetDefault("launch.executable", defaults.Launch.Executable)
	v.SetDefault("launch.extensions", defaults.Launch.Extensions)
	v.SetDefault("launch.args", defaults.Launch.Args)
	v.SetDefault("launch.workspace", defaults.Launch.Workspace)
	v.SetDefault("launch.work_dir", defaults.Launch.WorkDir)

	// Locate defaults
	v.SetDefault("locate.title", defaults.Locate.Title)
	v.SetDefault("locate.initial_delay_ms", defaults.Locate.InitialDelayMs)
	v.SetDefault("locate.poll_interval_ms", defaults.Locate.PollIntervalMs)
	v.SetDefault("locate.max_attempts", defaults.Locate.MaxAttempts)

	// Embed defaults
	v.SetDefault("embed.max_depth", defaults.Embed.MaxDepth)
	v.SetDefault("embed.max_windows", defaults.Embed.MaxWindows)

	// Logging defaults
	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load against an explicit viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling or validation fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codedock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codedock"
	}
	return filepath.Join(home, ".config", "codedock")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// EnvPrefix is the prefix for environment overrides, e.g.
// CODEDOCK_LAUNCH_EXECUTABLE for launch.executable.
const EnvPrefix = "CODEDOCK"

// Bind configures v to read the config file and environment overrides.
// An explicit file takes precedence over the search path. A missing file
// is not an error.
func Bind(v *viper.Viper, file string) error {
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}
