package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Source      string        `mapstructure:"source"`
	Destination string        `mapstructure:"destination"`
	Extensions  []string      `mapstructure:"extensions"`
	UseExifTool bool          `mapstructure:"use_exiftool"`
	FailFast    bool          `mapstructure:"fail_fast"`
	Manifest    bool          `mapstructure:"manifest"`
	LogFile     string        `mapstructure:"log_file"`
	WatchSettle time.Duration `mapstructure:"watch_settle"`
}

// AllExtensions as an extensions entry disables the filter.
const AllExtensions = "*"

// DefaultExtensions are the image formats picked up when the config does not
// name any.
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".heic", ".heif", ".tif", ".tiff",
	".webp", ".dng", ".cr2", ".nef", ".arw",
}

// NewViper returns a viper instance with defaults, env binding and config
// search paths set. configFile overrides the search when non-empty.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("source", "")
	v.SetDefault("destination", "")
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("use_exiftool", false)
	v.SetDefault("fail_fast", false)
	v.SetDefault("manifest", false)
	v.SetDefault("log_file", "")
	v.SetDefault("watch_settle", 2*time.Second)

	v.SetEnvPrefix("PHOTOFILER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("photofiler")
		v.SetConfigType("toml")
		if configDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configDir, "photofiler"))
		}
	}
	return v
}

// LoadEnvFile pulls KEY=value pairs into the process environment so the
// PHOTOFILER_* overrides can live next to a library.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the config file if there is one and decodes everything,
// flags and env included, into a Config.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Only a searched-for file may be absent; an explicit --config must exist.
		if !errors.As(err, &notFound) || v.ConfigFileUsed() != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Extensions = normalizeExtensions(cfg.Extensions)
	return &cfg, nil
}

// normalizeExtensions lowercases and dot-prefixes exts. An empty result, or
// a "*" entry anywhere, means every regular file is picked up.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == AllExtensions {
			return []string{}
		}
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
