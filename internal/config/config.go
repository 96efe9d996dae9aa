package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	AuthMode        string   `mapstructure:"AUTH_MODE"`
	AuthSigningKey  string   `mapstructure:"AUTH_SIGNING_KEY"`
	DemoRUT         string   `mapstructure:"DEMO_RUT"`
	DemoPassword    string   `mapstructure:"DEMO_PASSWORD"`
	TokenTTLMinutes int      `mapstructure:"TOKEN_TTL_MINUTES"`
	RoomNames       []string `mapstructure:"ROOM_NAMES"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUTH_MODE", "static")
	v.SetDefault("DEMO_RUT", "12.345.678-9")
	v.SetDefault("DEMO_PASSWORD", "admin")
	v.SetDefault("TOKEN_TTL_MINUTES", 480)
	v.SetDefault("ROOM_NAMES", "Pabellón 1,Pabellón 2,Pabellón 3,Pabellón 4,Pabellón 5")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("DEMO_RUT")
	v.BindEnv("DEMO_PASSWORD")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("ROOM_NAMES")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.RoomNames == nil {
		if rooms := v.GetString("ROOM_NAMES"); rooms != "" {
			cfg.RoomNames = splitTrim(rooms)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. The signing key is
// required for store-backed auth; the static demo account tolerates an empty
// key only in development.
func (c *Config) Validate() error {
	if c.AuthMode != "static" && c.AuthMode != "store" {
		return fmt.Errorf("AUTH_MODE must be \"static\" or \"store\", got %q", c.AuthMode)
	}
	if c.AuthSigningKey == "" && !c.IsDev() {
		return fmt.Errorf("AUTH_SIGNING_KEY is required outside development")
	}
	if len(c.RoomNames) == 0 {
		return fmt.Errorf("ROOM_NAMES must list at least one operating room")
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTLMinutes)
	}
	return nil
}
