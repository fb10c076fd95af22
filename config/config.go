package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Mount        string        `toml:"mount"`
	Interval     time.Duration `toml:"interval"`
	FetchTimeout time.Duration `toml:"fetch_timeout"`
	InitialView  string        `toml:"initial_view"`
	LogLevel     string        `toml:"log_level"`
	NoColor      bool          `toml:"no_color"`
	DiskPath     string        `toml:"disk_path"`
	// Source is "system" for host-wide metrics or "process" for this process.
	Source string `toml:"source"`
}

func Default() Config {
	return Config{
		Mount:        "app",
		Interval:     2 * time.Second,
		FetchTimeout: time.Second,
		InitialView:  "system",
		LogLevel:     "info",
		DiskPath:     "/",
		Source:       "system",
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Mount) == "" {
		errs = append(errs, errors.New("mount is required"))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	if strings.TrimSpace(c.InitialView) == "" {
		errs = append(errs, errors.New("initial_view is required"))
	}
	switch c.Source {
	case "system", "process":
	default:
		errs = append(errs, fmt.Errorf("source must be system or process, got %q", c.Source))
	}
	return errors.Join(errs...)
}
