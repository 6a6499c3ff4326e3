package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Search  SearchConfig  `mapstructure:"search"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Opener  OpenerConfig  `mapstructure:"opener"`
}

type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ReleaseFeedURL string        `mapstructure:"release_feed_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
}

type SearchConfig struct {
	ItemsPerPage uint32 `mapstructure:"items_per_page"`
	BatchFactor  uint32 `mapstructure:"batch_factor"`
	DefaultSort  string `mapstructure:"default_sort"`
}

type UIConfig struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	PollTimeout   time.Duration `mapstructure:"poll_timeout"`
	ToastDuration time.Duration `mapstructure:"toast_duration"`
	Colors        UIColors      `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type OpenerConfig struct {
	Command string `mapstructure:"command"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:        "https://crates.io/api/v1",
			ReleaseFeedURL: "https://static.crates.io/rss/crates",
			UserAgent:      "cratuity/1.0 (https://github.com/pders01/cratuity)",
			HTTPTimeout:    30 * time.Second,
		},
		Search: SearchConfig{
			ItemsPerPage: 5,
			BatchFactor:  10,
			DefaultSort:  "relevance",
		},
		UI: UIConfig{
			TickInterval:  250 * time.Millisecond,
			PollTimeout:   1 * time.Second,
			ToastDuration: 2500 * time.Millisecond,
			Colors: UIColors{
				Primary:   "#F74C00",
				Secondary: "#4ECDC4",
				Accent:    "#FFC66D",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#EF4444",
				Success:   "#10B981",
			},
		},
		Logging: LoggingConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".cratuity", "cratuity.log"),
		},
		Opener: OpenerConfig{
			Command: getDefaultOpener(),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cratuity", "config.toml")
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.release_feed_url", cfg.API.ReleaseFeedURL)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.http_timeout", cfg.API.HTTPTimeout)

	v.SetDefault("search.items_per_page", cfg.Search.ItemsPerPage)
	v.SetDefault("search.batch_factor", cfg.Search.BatchFactor)
	v.SetDefault("search.default_sort", cfg.Search.DefaultSort)

	v.SetDefault("ui.tick_interval", cfg.UI.TickInterval)
	v.SetDefault("ui.poll_timeout", cfg.UI.PollTimeout)
	v.SetDefault("ui.toast_duration", cfg.UI.ToastDuration)
	v.SetDefault("ui.colors.primary", cfg.UI.Colors.Primary)
	v.SetDefault("ui.colors.secondary", cfg.UI.Colors.Secondary)
	v.SetDefault("ui.colors.accent", cfg.UI.Colors.Accent)
	v.SetDefault("ui.colors.text", cfg.UI.Colors.Text)
	v.SetDefault("ui.colors.muted", cfg.UI.Colors.Muted)
	v.SetDefault("ui.colors.error", cfg.UI.Colors.Error)
	v.SetDefault("ui.colors.success", cfg.UI.Colors.Success)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)

	v.SetDefault("opener.command", cfg.Opener.Command)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CRATUITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// MaxPerPage is the largest per_page crates.io accepts on a search.
const MaxPerPage = 100

// Validate rejects settings the result cache cannot work with.
func (c *Config) Validate() error {
	if c.Search.ItemsPerPage == 0 {
		return fmt.Errorf("search.items_per_page must be at least 1")
	}
	if c.Search.BatchFactor == 0 {
		return fmt.Errorf("search.batch_factor must be at least 1")
	}
	if uint64(c.Search.ItemsPerPage)*uint64(c.Search.BatchFactor) > MaxPerPage {
		return fmt.Errorf("search.items_per_page × search.batch_factor must not exceed %d (got %d × %d)",
			MaxPerPage, c.Search.ItemsPerPage, c.Search.BatchFactor)
	}
	if c.UI.PollTimeout <= 0 {
		return fmt.Errorf("ui.poll_timeout must be positive")
	}
	if c.UI.TickInterval <= 0 {
		return fmt.Errorf("ui.tick_interval must be positive")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Logging.File = expandPath(cfg.Logging.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings keep the TOML readable.
	apiCfg := map[string]interface{}{
		"base_url":         config.API.BaseURL,
		"release_feed_url": config.API.ReleaseFeedURL,
		"user_agent":       config.API.UserAgent,
		"http_timeout":     config.API.HTTPTimeout.String(),
	}

	searchCfg := map[string]interface{}{
		"items_per_page": config.Search.ItemsPerPage,
		"batch_factor":   config.Search.BatchFactor,
		"default_sort":   config.Search.DefaultSort,
	}

	uiCfg := map[string]interface{}{
		"tick_interval":  config.UI.TickInterval.String(),
		"poll_timeout":   config.UI.PollTimeout.String(),
		"toast_duration": config.UI.ToastDuration.String(),
		"colors": map[string]interface{}{
			"primary":   config.UI.Colors.Primary,
			"secondary": config.UI.Colors.Secondary,
			"accent":    config.UI.Colors.Accent,
			"text":      config.UI.Colors.Text,
			"muted":     config.UI.Colors.Muted,
			"error":     config.UI.Colors.Error,
			"success":   config.UI.Colors.Success,
		},
	}

	v.Set("api", apiCfg)
	v.Set("search", searchCfg)
	v.Set("ui", uiCfg)
	v.Set("logging", map[string]interface{}{
		"level": config.Logging.Level,
		"file":  config.Logging.File,
	})
	v.Set("opener", map[string]interface{}{
		"command": config.Opener.Command,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
