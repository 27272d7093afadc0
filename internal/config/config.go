// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorePath is the SQLite snapshot store file.
	StorePath string `koanf:"store_path"`

	// RefreshSeconds is the periodic ranking refresh interval.
	RefreshSeconds int `koanf:"refresh_seconds"`

	// QueueSize bounds the mutation dispatch queue.
	QueueSize int `koanf:"queue_size"`

	// DemoFallback serves the placeholder dataset when the snapshot store
	// is empty or unreadable.
	DemoFallback bool `koanf:"demo_fallback"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		StorePath:      "evalrank.db",
		RefreshSeconds: 30,
		QueueSize:      1024,
		DemoFallback:   true,
	}
}
