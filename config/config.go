package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"

	"github.com/teamsales/salesportal/logger"
)

// Config is the whole runtime configuration, read from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV" envDefault:"development"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	FirebaseProjectID         string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsBase64 string `env:"FIREBASE_CREDENTIALS_BASE64"`
	GoogleCredentialsFile     string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseAPIKey            string `env:"FIREBASE_API_KEY"`

	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`

	SMTPHost  string `env:"SMTP_HOST"`
	SMTPPort  int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser  string `env:"SMTP_USER"`
	SMTPPass  string `env:"SMTP_PASS"`
	FromEmail string `env:"FROM_EMAIL"`

	Timezone  string `env:"TIMEZONE" envDefault:"Europe/Stockholm"`
	CleanupAt string `env:"CLEANUP_AT" envDefault:"00:05"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	LogOutput     string `env:"LOG_OUTPUT" envDefault:"stdout"`
	LogPath       string `env:"LOG_PATH" envDefault:"logs"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`

	location *time.Location
}

// Load reads the optional .env files, then parses the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		logger.Get("app").WithError(err).Warn("no .env file loaded")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if _, _, err := c.CleanupClock(); err != nil {
		return err
	}
	switch c.LogOutput {
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("invalid LOG_OUTPUT %q", c.LogOutput)
	}
	return nil
}

// Location is the zone all period and date math runs in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// CleanupClock returns the hour and minute of CLEANUP_AT.
func (c *Config) CleanupClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(c.CleanupAt))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid CLEANUP_AT %q: want HH:MM", c.CleanupAt)
	}
	return t.Hour(), t.Minute(), nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// LoggerOptions maps the LOG_* settings onto the logger package.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Output:     c.LogOutput,
		Path:       c.LogPath,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}
