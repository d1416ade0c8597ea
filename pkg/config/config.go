package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Sendgrid SendgridConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPLY_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPLY_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SHOPLY_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPLY_DB_DSN"`
	Driver string `envconfig:"SHOPLY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SHOPLY_DB_HOST"`
	Port     int    `envconfig:"SHOPLY_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOPLY_DB_USER"`
	Password string `envconfig:"SHOPLY_DB_PASSWORD"`
	Name     string `envconfig:"SHOPLY_DB_NAME"`
	SSLMode  string `envconfig:"SHOPLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPLY_REDIS_URL"`
	Address      string        `envconfig:"SHOPLY_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPLY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"SHOPLY_STRIPE_API_KEY"`
	WebhookSecret string        `envconfig:"SHOPLY_STRIPE_WEBHOOK_SECRET"`
	Env           string        `envconfig:"SHOPLY_STRIPE_ENV" default:"test"`
	Timeout       time.Duration `envconfig:"SHOPLY_STRIPE_TIMEOUT" default:"10s"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type SendgridConfig struct {
	APIKey      string `envconfig:"SHOPLY_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"SHOPLY_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"SHOPLY_SENDGRID_FROM_NAME" default:"Shoply"`
}

type CheckoutConfig struct {
	// FrontendOrigin is the SPA base URL used for settlement redirects.
	FrontendOrigin string `envconfig:"SHOPLY_FRONTEND_ORIGIN" required:"true"`
	// APIOrigin is this service's public base URL, used to build the
	// Stripe success callback.
	APIOrigin string `envconfig:"SHOPLY_API_ORIGIN" required:"true"`
	Currency  string `envconfig:"SHOPLY_CHECKOUT_CURRENCY" default:"usd"`
}

// SuccessCallbackURL is the redirect target Stripe substitutes the session id into.
func (c CheckoutConfig) SuccessCallbackURL() string {
	return strings.TrimRight(c.APIOrigin, "/") + "/api/v1/orders/success/{CHECKOUT_SESSION_ID}"
}

// CancelURL returns the SPA checkout page users land on after aborting payment.
func (c CheckoutConfig) CancelURL() string {
	return strings.TrimRight(c.FrontendOrigin, "/") + "/checkout"
}

// OrderURL returns the SPA order detail page for the given order id.
func (c CheckoutConfig) OrderURL(orderID string) string {
	return strings.TrimRight(c.FrontendOrigin, "/") + "/order/" + orderID
}

// CheckoutErrorURL returns the SPA checkout page carrying an error reason.
func (c CheckoutConfig) CheckoutErrorURL(reason string) string {
	return strings.TrimRight(c.FrontendOrigin, "/") + "/checkout?error=" + url.QueryEscape(reason)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"SHOPLY_DB_HOST": db.Host,
		"SHOPLY_DB_USER": db.User,
		"SHOPLY_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("either SHOPLY_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
