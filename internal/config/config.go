package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const MinSecretLength = 32

// shipped default secrets; refused in prod
var knownWeakSecrets = []string{
	"dev-access-secret-change-me",
	"dev-refresh-secret-change-me",
	"changeme-secret",
}

type Config struct {
	Env         string `env:"APP_ENV" envDefault:"dev"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"` // empty → in-memory store (dev only)
	Migrate     bool   `env:"APP_MIGRATE" envDefault:"true"`

	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET" envDefault:"dev-access-secret-change-me"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"dev-refresh-secret-change-me"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"hbnb-api"`
	JWTAccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	RateRPS    int `env:"RATE_RPS" envDefault:"100"`
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) Addr() string { return ":" + c.HTTPPort }

// Load reads the environment. In prod it refuses default or short JWT
// secrets and requires a database.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive"))
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if c.IsProd() {
		for name, s := range map[string]string{"JWT_ACCESS_SECRET": c.JWTAccessSecret, "JWT_REFRESH_SECRET": c.JWTRefreshSecret} {
			if err := checkSecret(name, s); err != nil {
				errs = append(errs, err)
			}
		}
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in prod"))
		}
	}
	return errors.Join(errs...)
}

func checkSecret(name, s string) error {
	for _, weak := range knownWeakSecrets {
		if s == weak {
			return fmt.Errorf("%s is a known default value and must not be used in prod", name)
		}
	}
	if len(s) < MinSecretLength {
		return fmt.Errorf("%s must be at least %d bytes long, got %d", name, MinSecretLength, len(s))
	}
	return nil
}
