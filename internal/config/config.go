package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Verify   VerifyConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type SecurityConfig struct {
	SessionTTL        time.Duration
	PasswordMinLength int
	MaxLoginAttempts  int
	SeedAdminEmail    string
	SeedAdminPassword string
}

type LoggingConfig struct {
	Environment string
	Level       string
}

type DatabaseConfig struct {
	// Driver selects the store implementation: "postgres" or "memory".
	// The memory store exists for local development and tests.
	Driver          string
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type VerifyConfig struct {
	// PublicBaseURL is embedded in certificate QR codes so scanners land on
	// the public verification endpoint.
	PublicBaseURL string
}

// Load reads configuration from an optional config file and the CERTCHAIN_*
// environment, applying defaults for anything unset.
func Load(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetEnvPrefix("certchain")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Configuration{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		Security: SecurityConfig{
			SessionTTL:        v.GetDuration("security.session_ttl"),
			PasswordMinLength: v.GetInt("security.password_min_length"),
			MaxLoginAttempts:  v.GetInt("security.max_login_attempts"),
			SeedAdminEmail:    v.GetString("security.seed_admin_email"),
			SeedAdminPassword: v.GetString("security.seed_admin_password"),
		},
		Logging: LoggingConfig{
			Environment: v.GetString("logging.environment"),
			Level:       v.GetString("logging.level"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			Username:        v.GetString("database.username"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Verify: VerifyConfig{
			PublicBaseURL: v.GetString("verify.public_base_url"),
		},
	}

	applyDefaults(cfg)

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "memory" {
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	return cfg, nil
}

func applyDefaults(cfg *Configuration) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}

	if cfg.Security.SessionTTL == 0 {
		cfg.Security.SessionTTL = 24 * time.Hour
	}
	if cfg.Security.PasswordMinLength == 0 {
		cfg.Security.PasswordMinLength = 8
	}
	if cfg.Security.MaxLoginAttempts == 0 {
		cfg.Security.MaxLoginAttempts = 5
	}

	if cfg.Logging.Environment == "" {
		cfg.Logging.Environment = "development"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.Username == "" {
		cfg.Database.Username = "postgres"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "certchain"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5 * time.Minute
	}

	if cfg.Verify.PublicBaseURL == "" {
		cfg.Verify.PublicBaseURL = "http://localhost:" + cfg.Server.Port
	}
}

// LogConfig writes the effective configuration at startup with secrets
// redacted.
func LogConfig(cfg *Configuration, logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", cfg.Server.Port),
		zap.Duration("read_timeout", cfg.Server.ReadTimeout),
		zap.Duration("write_timeout", cfg.Server.WriteTimeout),
		zap.Duration("session_ttl", cfg.Security.SessionTTL),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Name),
		zap.String("verify_base_url", cfg.Verify.PublicBaseURL),
	)
}
