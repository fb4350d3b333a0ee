package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port            int      `env:"PORT" envDefault:"8080"`
	MongoURI        string   `env:"MONGO_URI,required"`
	MongoDatabase   string   `env:"MONGO_DATABASE" envDefault:"personaFest"`
	RedisURL        string   `env:"REDIS_URL,required"`
	JWTSecret       string   `env:"JWT_SECRET,required"`
	SuperAdminEmail string   `env:"SUPER_ADMIN_EMAIL" envDefault:"vserva2006@gmail.com"`
	AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	StaticDir       string   `env:"STATIC_DIR" envDefault:"static"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.SuperAdminEmail != "" && !strings.Contains(c.SuperAdminEmail, "@") {
		return fmt.Errorf("SUPER_ADMIN_EMAIL must be an email address")
	}

	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}

		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		for _, origin := range c.AllowedOrigins {
			if origin == "*" {
				log.Warn().Msg("ALLOWED_ORIGINS is * in production: consider restricting to the site origin")
			}
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
