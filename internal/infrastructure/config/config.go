package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tododash/core/internal/domain/entities"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Todoist   TodoistConfig   `mapstructure:"todoist"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Security  SecurityConfig  `mapstructure:"security"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// TodoistConfig holds the upstream sync API settings. The access token is
// an opaque credential passed through as a bearer header.
type TodoistConfig struct {
	APIBase       string        `mapstructure:"api_base" validate:"required,url"`
	APIVersion    string        `mapstructure:"api_version"`
	AccessToken   string        `mapstructure:"access_token" validate:"required"`
	ResourceTypes string        `mapstructure:"resource_types"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// DashboardConfig holds the view engine and renderer settings.
type DashboardConfig struct {
	UpdateInterval time.Duration          `mapstructure:"update_interval" validate:"gt=0"`
	TimeFormat     int                    `mapstructure:"time_format" validate:"oneof=12 24"`
	Language       string                 `mapstructure:"language"`
	MaxTitleLength int                    `mapstructure:"max_title_length"`
	WrapEvents     bool                   `mapstructure:"wrap_events"`
	DisplayAvatar  bool                   `mapstructure:"display_avatar"`
	HideLabelNames []string               `mapstructure:"hide_label_names"`
	Filters        []entities.FilterGroup `mapstructure:"filters" validate:"dive"`
}

// SnapshotConfig gates the optional last-good payload store.
type SnapshotConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	File   string `mapstructure:"file"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from the given file (optional), environment
// variables and defaults. Filter groups can only come from the file.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvVars()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.tododash")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "tododash")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Todoist defaults
	viper.SetDefault("todoist.api_base", "https://api.todoist.com/sync")
	viper.SetDefault("todoist.api_version", "v8")
	viper.SetDefault("todoist.resource_types", `["items", "projects", "collaborators", "user", "labels"]`)
	viper.SetDefault("todoist.timeout", "30s")

	// Dashboard defaults
	viper.SetDefault("dashboard.update_interval", "10m")
	viper.SetDefault("dashboard.time_format", 24)
	viper.SetDefault("dashboard.language", "en")
	viper.SetDefault("dashboard.max_title_length", 40)
	viper.SetDefault("dashboard.wrap_events", false)
	viper.SetDefault("dashboard.display_avatar", false)

	// Snapshot defaults
	viper.SetDefault("snapshot.enabled", false)
	viper.SetDefault("snapshot.host", "localhost")
	viper.SetDefault("snapshot.port", 5432)
	viper.SetDefault("snapshot.name", "tododash")
	viper.SetDefault("snapshot.user", "postgres")
	viper.SetDefault("snapshot.password", "")
	viper.SetDefault("snapshot.ssl_mode", "disable")
	viper.SetDefault("snapshot.max_open_conns", 5)
	viper.SetDefault("snapshot.max_idle_conns", 2)
	viper.SetDefault("snapshot.conn_max_lifetime", "5m")
	viper.SetDefault("snapshot.conn_max_idle_time", "30s")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.output", "stdout")

	// Security defaults
	viper.SetDefault("security.cors_allowed_origins", "*")
	viper.SetDefault("security.rate_limit_requests", 100)
	viper.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

func bindEnvVars() {
	// App
	viper.BindEnv("app.name", "APP_NAME")
	viper.BindEnv("app.version", "APP_VERSION")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("app.debug", "APP_DEBUG")

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")

	// Todoist
	viper.BindEnv("todoist.api_base", "TODOIST_API_BASE")
	viper.BindEnv("todoist.api_version", "TODOIST_API_VERSION")
	viper.BindEnv("todoist.access_token", "TODOIST_ACCESS_TOKEN")
	viper.BindEnv("todoist.resource_types", "TODOIST_RESOURCE_TYPES")
	viper.BindEnv("todoist.timeout", "TODOIST_TIMEOUT")

	// Dashboard
	viper.BindEnv("dashboard.update_interval", "DASHBOARD_UPDATE_INTERVAL")
	viper.BindEnv("dashboard.time_format", "DASHBOARD_TIME_FORMAT")
	viper.BindEnv("dashboard.language", "DASHBOARD_LANGUAGE")
	viper.BindEnv("dashboard.max_title_length", "DASHBOARD_MAX_TITLE_LENGTH")
	viper.BindEnv("dashboard.wrap_events", "DASHBOARD_WRAP_EVENTS")
	viper.BindEnv("dashboard.display_avatar", "DASHBOARD_DISPLAY_AVATAR")

	// Snapshot
	viper.BindEnv("snapshot.enabled", "SNAPSHOT_ENABLED")
	viper.BindEnv("snapshot.host", "SNAPSHOT_DB_HOST")
	viper.BindEnv("snapshot.port", "SNAPSHOT_DB_PORT")
	viper.BindEnv("snapshot.name", "SNAPSHOT_DB_NAME")
	viper.BindEnv("snapshot.user", "SNAPSHOT_DB_USER")
	viper.BindEnv("snapshot.password", "SNAPSHOT_DB_PASSWORD")
	viper.BindEnv("snapshot.ssl_mode", "SNAPSHOT_DB_SSL_MODE")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.format", "LOG_FORMAT")
	viper.BindEnv("logger.output", "LOG_OUTPUT")
	viper.BindEnv("logger.file", "LOG_FILE")

	// Security
	viper.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	viper.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	viper.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if len(cfg.Dashboard.Filters) == 0 {
		return fmt.Errorf("at least one filter group is required")
	}

	seen := make(map[string]struct{}, len(cfg.Dashboard.Filters))
	for _, f := range cfg.Dashboard.Filters {
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("duplicate filter group name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	if cfg.Snapshot.Enabled && cfg.Snapshot.Host == "" {
		return fmt.Errorf("snapshot database host is required when snapshots are enabled")
	}

	return nil
}

// GetDSN returns the snapshot database connection string.
func (cfg *SnapshotConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
