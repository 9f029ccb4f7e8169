package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "STOREFRONT"

type Config struct {
	HTTP                HTTPConfig      `mapstructure:"http"`
	Log                 LogConfig       `mapstructure:"log"`
	Assistant           AssistantConfig `mapstructure:"assistant"`
	Mock                MockConfig      `mapstructure:"mock"`
	CollaboratorTimeout time.Duration   `mapstructure:"collaborator_timeout"`
	Orders              OrdersConfig    `mapstructure:"orders"`
	Redis               RedisConfig     `mapstructure:"redis"`
	Session             SessionConfig   `mapstructure:"session"`
	Kafka               KafkaConfig     `mapstructure:"kafka"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SecureCookie    bool          `mapstructure:"secure_cookie"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type AssistantConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	Temperature  float32       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
	BaseURL      string        `mapstructure:"base_url"`
	HistoryTurns int           `mapstructure:"history_turns"`
}

// MockConfig holds the artificial latency of the mock collaborators.
type MockConfig struct {
	SignInDelay  time.Duration `mapstructure:"signin_delay"`
	SignOutDelay time.Duration `mapstructure:"signout_delay"`
	SaveDelay    time.Duration `mapstructure:"save_delay"`
}

// OrdersConfig selects the order store. Driver is "memory" or "postgres".
type OrdersConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// RedisConfig enables the session cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// KafkaConfig enables order events when Brokers is not empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 40*time.Second)
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.secure_cookie", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("assistant.api_key", "")
	v.SetDefault("assistant.model", "gemini-2.5-flash")
	v.SetDefault("assistant.temperature", 0.7)
	v.SetDefault("assistant.timeout", 20*time.Second)
	v.SetDefault("assistant.base_url", "")
	v.SetDefault("assistant.history_turns", 0)

	v.SetDefault("mock.signin_delay", time.Second)
	v.SetDefault("mock.signout_delay", 500*time.Millisecond)
	v.SetDefault("mock.save_delay", 1500*time.Millisecond)

	v.SetDefault("collaborator_timeout", 10*time.Second)

	v.SetDefault("orders.driver", "memory")
	v.SetDefault("orders.host", "localhost")
	v.SetDefault("orders.port", 5432)
	v.SetDefault("orders.user", "storefront")
	v.SetDefault("orders.password", "")
	v.SetDefault("orders.dbname", "storefront")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.idle_timeout", 30*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "storefront.orders")
}

// Load reads configuration from defaults, an optional config file and the environment.
// An empty path searches for config.yaml in the working directory and /etc/storefront/.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("/etc/storefront/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Gemini key is commonly exported without a prefix
	if err := v.BindEnv("assistant.api_key", envPrefix+"_ASSISTANT_API_KEY", "API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Orders.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown orders driver %q", c.Orders.Driver)
	}
	if c.Assistant.HistoryTurns < 0 {
		return fmt.Errorf("assistant.history_turns must not be negative")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	return nil
}
