package config

import (
	"fmt"
	"time"
)

// Persistence modes for the metadata store.
const (
	PersistAppend   = "append"
	PersistRecreate = "recreate"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"BD_ENV" default:"development"`

	HTTPPort    int           `envconfig:"BD_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"BD_HTTP_TIMEOUT" default:"15s"`

	DestinationDir string `envconfig:"BD_DESTINATION_DIR" default:"./downloads"`
	StoreBaseName  string `envconfig:"BD_STORE_BASE_NAME" default:"videos_metadata"`
	PersistMode    string `envconfig:"BD_PERSIST_MODE" default:"append"`

	Platform        string        `envconfig:"BD_PLATFORM" default:""`
	FetchTimeout    time.Duration `envconfig:"BD_FETCH_TIMEOUT" default:"5m"`
	YTDLPPath       string        `envconfig:"BD_YTDLP_PATH" default:"yt-dlp"`
	MaxURLsPerBatch int           `envconfig:"BD_MAX_URLS_PER_BATCH" default:"500"`

	ProgressBuffer int `envconfig:"BD_PROGRESS_BUFFER" default:"64"`

	ShutdownTimeout time.Duration `envconfig:"BD_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"BD_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"BD_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.DestinationDir == "" {
		return fmt.Errorf("destination directory cannot be empty")
	}
	if c.StoreBaseName == "" {
		return fmt.Errorf("store base name cannot be empty")
	}

	if c.PersistMode != PersistAppend && c.PersistMode != PersistRecreate {
		return fmt.Errorf("persist mode must be %q or %q: %q", PersistAppend, PersistRecreate, c.PersistMode)
	}

	if c.MaxURLsPerBatch <= 0 {
		return fmt.Errorf("max URLs per batch must be positive: %d", c.MaxURLsPerBatch)
	}

	if c.ProgressBuffer <= 0 {
		return fmt.Errorf("progress buffer must be positive: %d", c.ProgressBuffer)
	}

	if c.YTDLPPath == "" {
		return fmt.Errorf("yt-dlp path cannot be empty")
	}

	return nil
}
