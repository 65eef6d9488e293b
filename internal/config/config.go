package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr            string        `mapstructure:"addr"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins"`
		MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN         string `mapstructure:"dsn"`
		MaxConns    int32  `mapstructure:"max_conns"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"postgres"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`

	Log struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"log"`

	IDGen struct {
		Node           int64  `mapstructure:"node"`
		WRPrefix       string `mapstructure:"wr_prefix"`
		ShipmentPrefix string `mapstructure:"shipment_prefix"`
	} `mapstructure:"idgen"`
}

// IsDevelopment reports whether the app runs in a local development environment.
func (c Config) IsDevelopment() bool {
	return c.App.Env == "development" || c.App.Env == "dev"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.auto_migrate", false)
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("idgen.node", 1)
	v.SetDefault("idgen.wr_prefix", "WR")
	v.SetDefault("idgen.shipment_prefix", "SHP")
}

// Load reads configuration from the YAML file at path (skipped when empty), then applies
// PROPACK_* environment overrides (e.g. PROPACK_HTTP_ADDR). DATABASE_URL and
// JWT_SECRET are honoured as well. A .env file in the working directory is
// loaded first if present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PROPACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("postgres.dsn", "PROPACK_POSTGRES_DSN", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "PROPACK_AUTH_JWT_SECRET", "JWT_SECRET")

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("failed to decode config: %w", err)
	}
	return c, nil
}

// Validate checks the settings a server cannot start without.
func (c Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn (or DATABASE_URL) is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.IDGen.Node < 0 || c.IDGen.Node > 1023 {
		return fmt.Errorf("idgen.node must be between 0 and 1023, got %d", c.IDGen.Node)
	}
	return nil
}
