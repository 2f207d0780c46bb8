package config

import (
	"fmt"
	"time"

	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/pricing"
	"github.com/senira34/lolipop-wear/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	OrderStoreMongo    = "mongo"
	OrderStorePostgres = "postgres"
)

// Config is the full storefront configuration shared by the server and the CLI.
type Config struct {
	Env      string         `mapstructure:"env"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
	Client   ClientConfig   `mapstructure:"client"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig is optional; an empty Addr disables the catalog cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig is optional; no brokers means order events are dropped.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OrdersConfig struct {
	Store string `mapstructure:"store"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	PublishableKey string `mapstructure:"publishable_key"`
	Currency       string `mapstructure:"currency"`
}

type PricingConfig struct {
	FreeShippingThreshold float64 `mapstructure:"free_shipping_threshold"`
	FlatShippingFee       float64 `mapstructure:"flat_shipping_fee"`
	TaxRate               float64 `mapstructure:"tax_rate"`
}

type BreakerConfig struct {
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

// ClientConfig is read by the CLI only.
type ClientConfig struct {
	APIURL   string `mapstructure:"api_url"`
	CartFile string `mapstructure:"cart_file"`
	UserID   string `mapstructure:"user_id"`
}

// envBindings keeps the environment variable names the services have always used.
var envBindings = map[string]string{
	"env":                             "APP_ENV",
	"http.port":                       "HTTP_PORT",
	"mongo.uri":                       "MONGO_URI",
	"mongo.database":                  "MONGO_DB_NAME",
	"redis.addr":                      "REDIS_ADDR",
	"redis.password":                  "REDIS_PASSWORD",
	"kafka.brokers":                   "KAFKA_BROKERS",
	"kafka.topic":                     "KAFKA_TOPIC",
	"orders.store":                    "ORDERS_STORE",
	"postgres.host":                   "DB_HOST",
	"postgres.port":                   "DB_PORT",
	"postgres.user":                   "DB_USER",
	"postgres.password":               "DB_PASSWORD",
	"postgres.dbname":                 "DB_NAME",
	"postgres.migrations_path":        "MIGRATIONS_PATH",
	"stripe.secret_key":               "STRIPE_SECRET_KEY",
	"stripe.publishable_key":          "STRIPE_PUBLISHABLE_KEY",
	"stripe.currency":                 "STRIPE_CURRENCY",
	"pricing.free_shipping_threshold": "FREE_SHIPPING_THRESHOLD",
	"pricing.flat_shipping_fee":       "FLAT_SHIPPING_FEE",
	"pricing.tax_rate":                "TAX_RATE",
	"client.api_url":                  "LOLIPOP_API_URL",
	"client.cart_file":                "LOLIPOP_CART_FILE",
	"client.user_id":                  "LOLIPOP_USER_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)

	v.SetDefault("http.port", "5000")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.request_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "lolipop")
	v.SetDefault("mongo.max_pool_size", 100)
	v.SetDefault("mongo.min_pool_size", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "order-events")

	v.SetDefault("orders.store", OrderStoreMongo)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "lolipop")
	v.SetDefault("postgres.migrations_path", "./internal/repository/migrations")

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.publishable_key", "")
	v.SetDefault("stripe.currency", "usd")

	v.SetDefault("pricing.free_shipping_threshold", 6000)
	v.SetDefault("pricing.flat_shipping_fee", 500)
	v.SetDefault("pricing.tax_rate", 0)

	def := payment.DefaultBreakerConfig()
	v.SetDefault("breaker.max_requests", def.MaxRequests)
	v.SetDefault("breaker.interval", def.Interval)
	v.SetDefault("breaker.timeout", def.Timeout)
	v.SetDefault("breaker.consecutive_failures", def.ConsecutiveFailures)

	v.SetDefault("client.api_url", "http://localhost:5000")
	v.SetDefault("client.cart_file", "")
	v.SetDefault("client.user_id", "")
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Orders.Store {
	case OrderStoreMongo, OrderStorePostgres:
	default:
		return fmt.Errorf("orders.store must be %q or %q, got %q", OrderStoreMongo, OrderStorePostgres, c.Orders.Store)
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("http.port is required")
	}
	if c.Pricing.FreeShippingThreshold < 0 || c.Pricing.FlatShippingFee < 0 || c.Pricing.TaxRate < 0 {
		return fmt.Errorf("pricing values must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) PricingRules() pricing.Rules {
	return pricing.Rules{
		FreeShippingThreshold: decimal.NewFromFloat(c.Pricing.FreeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(c.Pricing.FlatShippingFee),
		TaxRate:               decimal.NewFromFloat(c.Pricing.TaxRate),
		Currency:              c.Stripe.Currency,
	}
}

func (c *Config) PaymentBreaker() payment.BreakerConfig {
	return payment.BreakerConfig{
		MaxRequests:         c.Breaker.MaxRequests,
		Interval:            c.Breaker.Interval,
		Timeout:             c.Breaker.Timeout,
		ConsecutiveFailures: c.Breaker.ConsecutiveFailures,
	}
}

func (c *Config) PostgresCredentials() *repository.Credentials {
	return &repository.Credentials{
		Host:              c.Postgres.Host,
		Port:              c.Postgres.Port,
		User:              c.Postgres.User,
		Password:          c.Postgres.Password,
		DBName:            c.Postgres.DBName,
		MigrationsDirPath: c.Postgres.MigrationsPath,
	}
}
