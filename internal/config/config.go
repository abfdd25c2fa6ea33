package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	Env         string   `yaml:"env" env:"APP_ENV" env-default:"development"`
	Port        string   `yaml:"port" env:"PORT" env-default:"8080"`
	JWTSecret   string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	CORSOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"https://flyttman.se,https://www.flyttman.se"`

	Database `yaml:"database"`
	Stripe   `yaml:"stripe"`
	SMTP     `yaml:"smtp"`
	Kafka    `yaml:"kafka"`
	Outbox   `yaml:"outbox"`
}

type Database struct {
	URL               string `yaml:"url" env:"POSTGRES_URL" env-required:"true"`
	MigrationsEnabled bool   `yaml:"migrations_enabled" env:"MIGRATIONS_ENABLED" env-default:"true"`
	MaxOpenConns      int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
}

type Stripe struct {
	SecretKey         string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret     string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	WebhookSecretLive string `yaml:"webhook_secret_live" env:"STRIPE_WEBHOOK_SECRET_LIVE"`
}

type SMTP struct {
	Host          string `yaml:"host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port          int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username      string `yaml:"username" env:"SMTP_USERNAME"`
	Password      string `yaml:"password" env:"SMTP_PASSWORD"`
	From          string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@flyttman.se"`
	FromName      string `yaml:"from_name" env:"SMTP_FROM_NAME" env-default:"Flyttman"`
	UseSSL        bool   `yaml:"use_ssl" env:"SMTP_USE_SSL" env-default:"false"`
	AppBaseURL    string `yaml:"app_base_url" env:"APP_BASE_URL" env-default:"https://flyttman.se"`
	DefaultLocale string `yaml:"default_locale" env:"MAIL_DEFAULT_LOCALE" env-default:"sv"`
}

type Kafka struct {
	Brokers  []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	TipTopic string   `yaml:"tip_topic" env:"KAFKA_TIP_TOPIC" env-default:"tip-events"`
}

type Outbox struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"OUTBOX_POLL_INTERVAL" env-default:"5s"`
	BatchSize    int           `yaml:"batch_size" env:"OUTBOX_BATCH_SIZE" env-default:"20"`
	MaxAttempts  int           `yaml:"max_attempts" env:"OUTBOX_MAX_ATTEMPTS" env-default:"5"`
	Backoff      time.Duration `yaml:"backoff" env:"OUTBOX_BACKOFF" env-default:"30s"`
	ClaimLease   time.Duration `yaml:"claim_lease" env:"OUTBOX_CLAIM_LEASE" env-default:"2m"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// WebhookSigningSecret picks the live endpoint secret in production and the
// test-mode secret everywhere else.
func (c *Config) WebhookSigningSecret() string {
	if c.IsProduction() {
		return c.Stripe.WebhookSecretLive
	}
	return c.Stripe.WebhookSecret
}

// Load reads .env (if present), then a YAML file named by CONFIG_PATH, with
// environment variables taking precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}

	if cfg.WebhookSigningSecret() == "" {
		return nil, fmt.Errorf("webhook signing secret is not configured for env %q", cfg.Env)
	}

	return &cfg, nil
}
