package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultListenAddress = "localhost:12000"

// Config holds daemon settings.
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Server  ServerConfig  `mapstructure:"server"`
	Gesture GestureConfig `mapstructure:"gesture"`
	Power   PowerConfig   `mapstructure:"power"`
	Action  ActionConfig  `mapstructure:"action"`
	History HistoryConfig `mapstructure:"history"`
}

// InputConfig selects the touch panel. An empty device means the first
// event node whose name matches name_filter.
type InputConfig struct {
	Device     string `mapstructure:"device"`
	NameFilter string `mapstructure:"name_filter"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
	CORS   bool   `mapstructure:"cors"`
}

// GestureConfig holds the runtime mask and the optional geometry catalog.
type GestureConfig struct {
	Mask    int    `mapstructure:"mask"`
	Debug   bool   `mapstructure:"debug"`
	Catalog string `mapstructure:"catalog"`
	Gate    string `mapstructure:"gate"`
}

// PowerConfig points at the backlight attribute to follow. Empty disables
// the watcher; the screen state can still be set over RPC.
type PowerConfig struct {
	Backlight    string        `mapstructure:"backlight"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type ActionConfig struct {
	Kind    string `mapstructure:"kind"`
	Serial  string `mapstructure:"serial"`
	Command string `mapstructure:"command"`
}

type HistoryConfig struct {
	Size int `mapstructure:"size"`
}

// Path returns the config file location: SWEEP2SLEEP_CONFIG, or
// ~/.config/sweep2sleep/config.toml.
func Path() string {
	if p := os.Getenv("SWEEP2SLEEP_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "sweep2sleep", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// SWEEP2SLEEP_, e.g. SWEEP2SLEEP_GESTURE_MASK=284. A missing file is not
// an error; path overrides Path() when set.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("input.device", "")
	v.SetDefault("input.name_filter", "synaptics")
	v.SetDefault("server.listen", DefaultListenAddress)
	v.SetDefault("server.cors", false)
	v.SetDefault("gesture.mask", 0)
	v.SetDefault("gesture.debug", false)
	v.SetDefault("gesture.catalog", "")
	v.SetDefault("gesture.gate", "screen-on")
	v.SetDefault("power.backlight", "")
	v.SetDefault("power.poll_interval", 500*time.Millisecond)
	v.SetDefault("action.kind", "power-key")
	v.SetDefault("action.serial", "")
	v.SetDefault("action.command", "")
	v.SetDefault("history.size", 32)

	v.SetConfigType("toml")
	if path == "" {
		path = Path()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("SWEEP2SLEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.History.Size <= 0 {
		return Config{}, fmt.Errorf("history.size must be positive, got %d", c.History.Size)
	}
	return c, nil
}
