package cmd

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/pflag"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/cmd/cliopts"
	"github.com/tatipharma/pharmabi/internal/cmd/types"
	"github.com/tatipharma/pharmabi/internal/query"
	"github.com/tatipharma/pharmabi/internal/session"
)

const (
	envPrefix      = "PHARMABI"
	defaultTimeout = 60 * time.Second
)

// Config is shared by every command. Values come from the defaults below,
// then ~/.pharmabi/config.yaml, then PHARMABI_* environment variables, then
// the global flags.
type Config struct {
	Server   string        `config:"server" default:"http://localhost:5272/api"`
	Timeout  time.Duration `config:"timeout" default:"60s"`
	Debounce time.Duration `config:"debounce" default:"300ms"`
	PageSize int           `config:"pageSize" default:"10"`
	LogLevel string        `config:"logLevel" default:"info"`

	// SessionDir defaults to ~/.pharmabi.
	SessionDir string `config:"sessionDir"`
	OutputDir  string `config:"outputDir" default:"."`

	// BulkInterval is the minimum time between two sends of a bulk action.
	BulkInterval time.Duration `config:"bulkInterval"`
	MetricsAddr  string        `config:"metricsAddr"`

	ExportFixedPaging bool `config:"exportFixedPaging"`
}

func (c *CLI) loadConfig(flags *pflag.FlagSet) error {
	filename, _ := flags.GetString("config")
	if filename == "" {
		if dir, err := session.DefaultDir(); err == nil {
			filename = filepath.Join(dir, "config.yaml")
		}
	}

	c.Config = Config{}
	opts := cliopts.Options{
		Filename:  filename,
		EnvPrefix: envPrefix,
		Flags:     flags,
		Fs:        c.Fs,
	}
	if err := cliopts.Load(&c.Config, opts); err != nil {
		return err
	}
	if err := c.Config.validate(); err != nil {
		return err
	}
	c.store = session.NewFileStore(c.Fs, c.Config.SessionDir)
	return nil
}

func (c *Config) validate() error {
	var server types.URL
	if err := server.Set(c.Server); err != nil {
		return Error{Cause: "invalid server", OriginalError: err, Suggestion: "Set --server to the API base URL, for example http://localhost:5272/api."}
	}
	c.Server = server.String()

	if c.MetricsAddr != "" {
		var addr types.HostPort
		if err := addr.Set(c.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics address %q: %w", c.MetricsAddr, err)
		}
		c.MetricsAddr = addr.String()
	}

	if !slices.Contains(api.PageSizes, c.PageSize) {
		return fmt.Errorf("%w %d, must be one of %v", query.ErrInvalidPageSize, c.PageSize, api.PageSizes)
	}
	if c.Timeout < 0 || c.Debounce < 0 || c.BulkInterval < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	if c.SessionDir == "" {
		dir, err := session.DefaultDir()
		if err != nil {
			return fmt.Errorf("session directory: %w", err)
		}
		c.SessionDir = dir
	}
	return nil
}
