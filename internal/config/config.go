package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/corray333/foodorder/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// MustInit loads .env and config.yaml for the named service and installs the default logger.
func MustInit(service string) {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	SetDefaults()
	viper.AutomaticEnv()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/" + service)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}

	decimal.MarshalJSONWithoutQuotes = true

	SetupLogger()
}

// SetDefaults registers fallback values for optional keys.
func SetDefaults() {
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("redis.addr", "redis:6379")
	viper.SetDefault("catalog.timeout", 3*time.Second)
	viper.SetDefault("catalog.cache_ttl", 30*time.Second)
	viper.SetDefault("payment.base_url", "https://api.mercadopago.com")
	viper.SetDefault("payment.timeout", 5*time.Second)
	viper.SetDefault("payment.currency", "BRL")
	viper.SetDefault("payment.notification_url", "")
	viper.SetDefault("payment.back_urls.success", "")
	viper.SetDefault("payment.back_urls.failure", "")
	viper.SetDefault("payment.back_urls.pending", "")
	viper.SetDefault("orders.initial_status", "pendente")
	viper.SetDefault("orders.strict_transitions", true)
	viper.SetDefault("orders.update_retries", 3)
	viper.SetDefault("rabbitmq.exchange", "orders.events")
	viper.SetDefault("rabbitmq.audit_queue", "orders.audit")
	viper.SetDefault("rabbitmq.consumer_tag", "audit-consumer")
	viper.SetDefault("rabbitmq.prefetch", 50)
	viper.SetDefault("rabbitmq.outbox.max_retries", 8)
	viper.SetDefault("realtime.send_buffer", 32)
	viper.SetDefault("realtime.write_timeout", 10*time.Second)
	viper.SetDefault("otel.service_name", "order-svc")
	viper.SetDefault("otel.jaeger_endpoint", "http://jaeger:14268/api/traces")
	viper.SetDefault("otel.jaeger_agent_host", "jaeger")
	viper.SetDefault("otel.jaeger_agent_port", "6831")
}

func SetupLogger() {
	level := slog.LevelInfo
	if viper.GetBool("log.debug") {
		level = slog.LevelDebug
	}

	handler := logger.NewHandler(&slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
}
