package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Session struct {
	CookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	Secret     string `mapstructure:"SESSION_SECRET"`
	PublicKey  string `mapstructure:"SESSION_PUBLIC_KEY"`
}

type Identity struct {
	APIURL    string `mapstructure:"IDENTITY_API_URL"`
	SecretKey string `mapstructure:"IDENTITY_SECRET_KEY"`
	SignInURL string `mapstructure:"IDENTITY_SIGN_IN_URL"`
}

type Config struct {
	AppEnv                string   `mapstructure:"APP_ENV"`
	Port                  string   `mapstructure:"PORT"`
	PostgresURI           string   `mapstructure:"POSTGRES_URI"`
	RedisURI              string   `mapstructure:"REDIS_URI"`
	FrontendURL           string   `mapstructure:"FRONTEND_URL"`
	WebhookSecret         string   `mapstructure:"WEBHOOK_SECRET"`
	TodoQuota             int      `mapstructure:"TODO_QUOTA"`
	TodosPerPage          int      `mapstructure:"TODOS_PER_PAGE"`
	RateLimitWriteMax     int      `mapstructure:"RATE_LIMIT_WRITE_MAX"`
	SubscriptionSweepSpec string   `mapstructure:"SUBSCRIPTION_SWEEP_SPEC"`
	Session               Session  `mapstructure:",squash"`
	Identity              Identity `mapstructure:",squash"`
}

var keys = []string{
	"APP_ENV",
	"PORT",
	"POSTGRES_URI",
	"REDIS_URI",
	"FRONTEND_URL",
	"WEBHOOK_SECRET",
	"TODO_QUOTA",
	"TODOS_PER_PAGE",
	"RATE_LIMIT_WRITE_MAX",
	"SUBSCRIPTION_SWEEP_SPEC",
	"SESSION_COOKIE_NAME",
	"SESSION_SECRET",
	"SESSION_PUBLIC_KEY",
	"IDENTITY_API_URL",
	"IDENTITY_SECRET_KEY",
	"IDENTITY_SIGN_IN_URL",
}

// LoadConfig reads configuration from the environment. A .env file, if any,
// must already be loaded. A variable set to the empty string overrides its
// default, so SUBSCRIPTION_SWEEP_SPEC= turns the sweep off.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PORT", "8080")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("SESSION_COOKIE_NAME", "__session")
	v.SetDefault("IDENTITY_API_URL", "https://api.clerk.com")
	v.SetDefault("TODO_QUOTA", 3)
	v.SetDefault("TODOS_PER_PAGE", 10)
	v.SetDefault("RATE_LIMIT_WRITE_MAX", 60)
	v.SetDefault("SUBSCRIPTION_SWEEP_SPEC", "@every 1h")

	for _, k := range keys {
		v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.PostgresURI == "" {
		return nil, errors.New("POSTGRES_URI is required")
	}
	if cfg.Port == "" {
		return nil, errors.New("PORT must not be empty")
	}
	if cfg.Session.CookieName == "" {
		return nil, errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	if cfg.Identity.APIURL == "" {
		return nil, errors.New("IDENTITY_API_URL must not be empty")
	}
	if cfg.TodoQuota <= 0 {
		return nil, errors.New("TODO_QUOTA must be positive")
	}
	if cfg.TodosPerPage <= 0 {
		return nil, errors.New("TODOS_PER_PAGE must be positive")
	}

	return &cfg, nil
}

func (c *Config) Development() bool {
	return c.AppEnv == "development"
}
