package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ProjectFile is the per-directory config file name
const ProjectFile = ".chatterm.json"

// Config represents the full chatterm configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Popup   PopupConfig   `json:"popup"`
	Preview PreviewConfig `json:"preview"`
	Files   FilesConfig   `json:"files"`
	Log     LogConfig     `json:"log"`
}

// ServerConfig contains connection settings
type ServerConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Transport     string `json:"transport"`
	Path          string `json:"path"`
	Username      string `json:"username"`
	DialTimeoutMs int    `json:"dialTimeoutMs"`
}

// PopupConfig sizes the popup relative to the terminal
type PopupConfig struct {
	WidthPercent  int `json:"widthPercent"`
	HeightPercent int `json:"heightPercent"`
}

// PreviewConfig contains file preview settings
type PreviewConfig struct {
	MarkdownStyle string   `json:"markdownStyle"`
	ImageSuffixes []string `json:"imageSuffixes"`
	HighlightCode bool     `json:"highlightCode"`
}

// FilesConfig contains file browser settings
type FilesConfig struct {
	StartDir   string `json:"startDir"`
	ShowHidden bool   `json:"showHidden"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Dir   string `json:"dir"`
	Level string `json:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			Host:          "127.0.0.1",
			Port:          42069,
			Transport:     "tcp",
			Path:          "/",
			DialTimeoutMs: 5000,
		},
		Popup: PopupConfig{
			WidthPercent:  80,
			HeightPercent: 80,
		},
		Preview: PreviewConfig{
			MarkdownStyle: "dark",
			ImageSuffixes: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff"},
			HighlightCode: true,
		},
		Files: FilesConfig{
			StartDir:   ".",
			ShowHidden: false,
		},
		Log: LogConfig{
			Dir:   filepath.Join(homeDir, ".chatterm", "logs"),
			Level: "info",
		},
	}
}

// DefaultPath returns the user-level config file path
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, "chatterm", "config.json")
}

// LoadConfig loads configuration with priority:
// 1. CLI flags (applied by the caller)
// 2. files, later ones overriding earlier ones
// 3. Defaults
//
// Missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		cfg, err = parseOnto(cfg, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return MergeWithDefaults(cfg), nil
}

// Load reads the given file, or the user config then ./.chatterm.json when
// path is empty. An explicit path must exist.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return LoadConfig(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadConfig(DefaultPath(), filepath.Join(cwd, ProjectFile))
}

// SaveConfig saves configuration to the specified path with version information
func SaveConfig(cfg *Config, path string) error {
	data, err := MarshalVersionedConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeWithDefaults fills in empty values with defaults
func MergeWithDefaults(cfg *Config) *Config {
	defaults := DefaultConfig()

	// Merge Server config
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = defaults.Server.Transport
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = defaults.Server.Path
	}
	if cfg.Server.DialTimeoutMs == 0 {
		cfg.Server.DialTimeoutMs = defaults.Server.DialTimeoutMs
	}

	// Merge Popup config
	if cfg.Popup.WidthPercent == 0 {
		cfg.Popup.WidthPercent = defaults.Popup.WidthPercent
	}
	if cfg.Popup.HeightPercent == 0 {
		cfg.Popup.HeightPercent = defaults.Popup.HeightPercent
	}

	// Merge Preview config
	if cfg.Preview.MarkdownStyle == "" {
		cfg.Preview.MarkdownStyle = defaults.Preview.MarkdownStyle
	}
	if cfg.Preview.ImageSuffixes == nil {
		cfg.Preview.ImageSuffixes = defaults.Preview.ImageSuffixes
	}

	// Merge Files config
	if cfg.Files.StartDir == "" {
		cfg.Files.StartDir = defaults.Files.StartDir
	}

	// Merge Log config
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = defaults.Log.Dir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return cfg
}

// Validate rejects settings the client cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port))
	}
	switch c.Server.Transport {
	case "tcp", "websocket":
	default:
		errs = append(errs, fmt.Errorf("server.transport %q must be tcp or websocket", c.Server.Transport))
	}
	if strings.ContainsAny(c.Server.Username, " \t\r\n") {
		errs = append(errs, fmt.Errorf("server.username %q must not contain spaces", c.Server.Username))
	}
	if c.Server.DialTimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("server.dialTimeoutMs must not be negative"))
	}
	if c.Popup.WidthPercent < 1 || c.Popup.WidthPercent > 100 {
		errs = append(errs, fmt.Errorf("popup.widthPercent %d out of range 1-100", c.Popup.WidthPercent))
	}
	if c.Popup.HeightPercent < 1 || c.Popup.HeightPercent > 100 {
		errs = append(errs, fmt.Errorf("popup.heightPercent %d out of range 1-100", c.Popup.HeightPercent))
	}
	for _, s := range c.Preview.ImageSuffixes {
		if !strings.HasPrefix(s, ".") {
			errs = append(errs, fmt.Errorf("preview.imageSuffixes entry %q must start with a dot", s))
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Addr returns host:port for the server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// DialTimeout returns the dial timeout as a duration
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.Server.DialTimeoutMs) * time.Millisecond
}

// ParseLevel maps a log.level value to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q must be debug, info, warn or error", level)
	}
}
