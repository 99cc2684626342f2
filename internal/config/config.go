package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type CategoryConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type Config struct {
	Port          string
	StorageDriver string
	JWTSecret     string
	Category      CategoryConfig
	Kafka         KafkaConfig
}

var envBindings = map[string]string{
	"port":               "PORT",
	"storage.driver":     "STORAGE_DRIVER",
	"database.host":      "DATABASE_HOST",
	"database.port":      "DATABASE_PORT",
	"database.user":      "DATABASE_USER",
	"database.password":  "DATABASE_PASSWORD",
	"database.name":      "DATABASE_NAME",
	"database.ssl_mode":  "DATABASE_SSL_MODE",
	"redis.host":         "REDIS_HOST",
	"redis.port":         "REDIS_PORT",
	"redis.password":     "REDIS_PASSWORD",
	"redis.db":           "REDIS_DB",
	"category.base_url":  "CATEGORY_BASE_URL",
	"category.timeout":   "CATEGORY_TIMEOUT",
	"category.cache_ttl": "CATEGORY_CACHE_TTL",
	"jwt.secret_key":     "JWT_SECRET_KEY",
	"kafka.brokers":      "KAFKA_BROKERS",
	"kafka.topic":        "KAFKA_TOPIC",
}

// Init reads .env (if present) and binds every key to its environment variable.
func Init() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	for key, env := range envBindings {
		viper.BindEnv(key, env)
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}
}

// Load returns the application configuration with defaults applied
func Load() *Config {
	viper.SetDefault("port", "8080")
	viper.SetDefault("storage.driver", "postgres")
	viper.SetDefault("category.base_url", "http://127.0.0.1:5000")
	viper.SetDefault("category.timeout", 3*time.Second)
	viper.SetDefault("category.cache_ttl", 5*time.Minute)
	viper.SetDefault("kafka.topic", "lancamentos")

	return &Config{
		Port:          viper.GetString("port"),
		StorageDriver: strings.ToLower(viper.GetString("storage.driver")),
		JWTSecret:     viper.GetString("jwt.secret_key"),
		Category: CategoryConfig{
			BaseURL:  viper.GetString("category.base_url"),
			Timeout:  viper.GetDuration("category.timeout"),
			CacheTTL: viper.GetDuration("category.cache_ttl"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("kafka.brokers")),
			Topic:   viper.GetString("kafka.topic"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
