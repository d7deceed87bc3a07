package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "CATALOG_CONFIG_FILE"
	envPrefix         = "CATALOG"
)

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

type TopicsConfig struct {
	SalesUpdated           string `mapstructure:"sales_updated"`
	RatingUpdated          string `mapstructure:"rating_updated"`
	InventoryStatusUpdated string `mapstructure:"inventory_status_updated"`
}

type KafkaConfig struct {
	Brokers []string     `mapstructure:"brokers"`
	GroupID string       `mapstructure:"group_id"`
	Topics  TopicsConfig `mapstructure:"topics"`
}

type InventoryConfig struct {
	Target       string        `mapstructure:"target"`
	Timeout      time.Duration `mapstructure:"timeout"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

type NamespaceConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

type CacheConfig struct {
	DefaultTTL         time.Duration              `mapstructure:"default_ttl"`
	DefaultCapacity    int                        `mapstructure:"default_capacity"`
	NumShards          int                        `mapstructure:"num_shards"`
	EvictionPercentage int                        `mapstructure:"eviction_percentage"`
	Namespaces         map[string]NamespaceConfig `mapstructure:"namespaces"`
}

// Namespace returns the override configured for name, if any. Keys are
// matched case-insensitively since viper lower-cases them.
func (c CacheConfig) Namespace(name string) (NamespaceConfig, bool) {
	ns, ok := c.Namespaces[strings.ToLower(name)]
	return ns, ok
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

// FieldError reports an invalid configuration value.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

// Load reads the config file named by --config (or CATALOG_CONFIG_FILE),
// then applies CATALOG_* environment overrides.
func Load(args []string) (Config, error) {
	return LoadFile(configFilepath(args))
}

func LoadFile(path string) (Config, error) {
	const op = "config.LoadFile"

	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("postgres.dsn", "host=localhost port=5432 user=postgres password=postgres dbname=catalog sslmode=disable")
	v.SetDefault("postgres.max_open_conns", 25)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("postgres.migrations_path", "migrations")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "catalog-aggregator")
	v.SetDefault("kafka.topics.sales_updated", "order.product.sales.updated")
	v.SetDefault("kafka.topics.rating_updated", "review.product.rating.updated")
	v.SetDefault("kafka.topics.inventory_status_updated", "inventory.status.updated")

	v.SetDefault("inventory.target", "localhost:50051")
	v.SetDefault("inventory.timeout", 10*time.Second)
	v.SetDefault("inventory.batch_timeout", 15*time.Second)

	v.SetDefault("cache.default_ttl", 30*time.Minute)
	v.SetDefault("cache.default_capacity", 500)
	v.SetDefault("cache.num_shards", 10)
	v.SetDefault("cache.eviction_percentage", 10)
	v.SetDefault("cache.namespaces", map[string]any{})

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return &FieldError{Field: "http.addr", Message: "is required"}
	}
	if c.Postgres.DSN == "" {
		return &FieldError{Field: "postgres.dsn", Message: "is required"}
	}
	if len(c.Kafka.Brokers) == 0 {
		return &FieldError{Field: "kafka.brokers", Message: "must list at least one broker"}
	}
	if c.Inventory.Timeout <= 0 || c.Inventory.BatchTimeout <= 0 {
		return &FieldError{Field: "inventory.timeout", Message: "must be positive"}
	}
	if c.Cache.DefaultTTL <= 0 {
		return &FieldError{Field: "cache.default_ttl", Message: "must be positive"}
	}
	if c.Cache.DefaultCapacity <= 0 {
		return &FieldError{Field: "cache.default_capacity", Message: "must be positive"}
	}
	if c.Cache.NumShards <= 0 {
		return &FieldError{Field: "cache.num_shards", Message: "must be positive"}
	}
	if c.Cache.EvictionPercentage < 0 || c.Cache.EvictionPercentage > 100 {
		return &FieldError{Field: "cache.eviction_percentage", Message: "must be between 0 and 100"}
	}
	for name, ns := range c.Cache.Namespaces {
		if ns.TTL < 0 || ns.Capacity < 0 {
			return &FieldError{Field: "cache.namespaces." + name, Message: "must not be negative"}
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &FieldError{Field: "log_level", Message: err.Error()}
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func configFilepath(args []string) string {
	cmdLine := pflag.NewFlagSet("catalog", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(args)
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}
	return *arg
}
