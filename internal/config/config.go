// Package config loads bookreel settings from defaults, an optional
// config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the typed view of the viper settings.
type Config struct {
	Server      ServerConfig
	Cache       CacheConfig
	Catalog     CatalogConfig
	TMDB        TMDBConfig
	GoogleBooks GoogleBooksConfig
	Curated     CuratedConfig
	Datastore   DatastoreConfig
	Log         LogConfig
	SearchLimit int
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string
	RateLimit       int // requests per minute per client IP, 0 disables
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	RequestTTL   time.Duration
	BookTTL      time.Duration
	MovieTTL     time.Duration
	SingleFlight bool
}

// CatalogConfig configures outbound catalog calls.
type CatalogConfig struct {
	Timeout          time.Duration
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
	OpenLibraryRPS   float64
	GoogleBooksRPS   float64
	TMDBRPS          float64
}

// TMDBConfig holds TMDB credentials. Either one enables movie lookups.
type TMDBConfig struct {
	APIKey          string
	ReadAccessToken string
}

// GoogleBooksConfig holds the optional Google Books key.
type GoogleBooksConfig struct {
	Enabled bool
	APIKey  string
}

// CuratedConfig points at an optional extra override file.
type CuratedConfig struct {
	ExtraFile string
}

// DatastoreConfig configures the recommendation log.
type DatastoreConfig struct {
	Enabled   bool
	Mode      string // local or remote
	DBFile    string
	RemoteURL string
	APIToken  string
	Database  string
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
}

// SetDefaults registers the default value of every setting.
func SetDefaults() {
	viper.SetDefault("server.addr", ":5000")
	viper.SetDefault("server.rate_limit", 120)
	viper.SetDefault("server.request_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("cache.request_ttl", "1h")
	viper.SetDefault("cache.book_ttl", "24h")
	viper.SetDefault("cache.movie_ttl", "24h")
	viper.SetDefault("cache.single_flight", false)

	viper.SetDefault("catalog.timeout", "10s")
	viper.SetDefault("catalog.breaker_failures", 5)
	viper.SetDefault("catalog.breaker_open_delay", "30s")
	viper.SetDefault("catalog.openlibrary_rps", 3.0)
	viper.SetDefault("catalog.googlebooks_rps", 5.0)
	viper.SetDefault("catalog.tmdb_rps", 20.0)

	viper.SetDefault("googlebooks.enabled", true)

	viper.SetDefault("datastore.enabled", false)
	viper.SetDefault("datastore.mode", "local")
	viper.SetDefault("datastore.dbfile", "./bookreel.db")
	viper.SetDefault("datastore.database", "bookreel")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("search_limit", 10)
}

// Init sets defaults, binds the environment and reads the config file.
// With an empty path config.yaml is looked up in the working directory and
// may be absent.
func Init(configFile string) error {
	SetDefaults()

	viper.SetEnvPrefix("BOOKREEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindings := map[string]string{
		"tmdb.api_key":           "TMDB_API_KEY",
		"tmdb.read_access_token": "TMDB_READ_ACCESS_TOKEN",
		"googlebooks.api_key":    "GOOGLE_BOOKS_API_KEY",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env, "BOOKREEL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment")
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	return nil
}

// Load builds a Config from the current viper state.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            viper.GetString("server.addr"),
			RateLimit:       viper.GetInt("server.rate_limit"),
			RequestTimeout:  viper.GetDuration("server.request_timeout"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
		Cache: CacheConfig{
			RequestTTL:   viper.GetDuration("cache.request_ttl"),
			BookTTL:      viper.GetDuration("cache.book_ttl"),
			MovieTTL:     viper.GetDuration("cache.movie_ttl"),
			SingleFlight: viper.GetBool("cache.single_flight"),
		},
		Catalog: CatalogConfig{
			Timeout:          viper.GetDuration("catalog.timeout"),
			BreakerFailures:  viper.GetUint32("catalog.breaker_failures"),
			BreakerOpenDelay: viper.GetDuration("catalog.breaker_open_delay"),
			OpenLibraryRPS:   viper.GetFloat64("catalog.openlibrary_rps"),
			GoogleBooksRPS:   viper.GetFloat64("catalog.googlebooks_rps"),
			TMDBRPS:          viper.GetFloat64("catalog.tmdb_rps"),
		},
		TMDB: TMDBConfig{
			APIKey:          viper.GetString("tmdb.api_key"),
			ReadAccessToken: viper.GetString("tmdb.read_access_token"),
		},
		GoogleBooks: GoogleBooksConfig{
			Enabled: viper.GetBool("googlebooks.enabled"),
			APIKey:  viper.GetString("googlebooks.api_key"),
		},
		Curated: CuratedConfig{
			ExtraFile: viper.GetString("curated.extra_file"),
		},
		Datastore: DatastoreConfig{
			Enabled:   viper.GetBool("datastore.enabled"),
			Mode:      strings.ToLower(viper.GetString("datastore.mode")),
			DBFile:    viper.GetString("datastore.dbfile"),
			RemoteURL: viper.GetString("datastore.remote_url"),
			APIToken:  viper.GetString("datastore.api_token"),
			Database:  viper.GetString("datastore.database"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		SearchLimit: viper.GetInt("search_limit"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive, got %s", c.Catalog.Timeout)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %d", c.Server.RateLimit)
	}
	if c.Datastore.Enabled {
		switch c.Datastore.Mode {
		case "local":
			if c.Datastore.DBFile == "" {
				return fmt.Errorf("datastore.dbfile is required in local mode")
			}
		case "remote":
			if c.Datastore.RemoteURL == "" {
				return fmt.Errorf("datastore.remote_url is required in remote mode")
			}
		default:
			return fmt.Errorf("invalid datastore mode: %q", c.Datastore.Mode)
		}
	}
	return nil
}

// TMDBConfigured reports whether movie lookups have credentials.
func (c *Config) TMDBConfigured() bool {
	return c.TMDB.APIKey != "" || c.TMDB.ReadAccessToken != ""
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %q", level)
	}
}
