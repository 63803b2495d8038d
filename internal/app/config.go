package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/service/payment"
)

// InventoryDriver определяет backend склада.
type InventoryDriver string

const (
	InventoryDriverMemory InventoryDriver = "memory"
	InventoryDriverRedis  InventoryDriver = "redis"
)

// Переменные окружения конфигурации.
const (
	EnvMetricsAddr     = "CHECKOUT_METRICS_ADDR"
	EnvKeepServing     = "CHECKOUT_KEEP_SERVING"
	EnvPaymentLatency  = "CHECKOUT_PAYMENT_LATENCY"
	EnvPaymentAttempts = "CHECKOUT_PAYMENT_MAX_ATTEMPTS"
	EnvInventoryDriver = "CHECKOUT_INVENTORY_DRIVER"
	EnvRedisAddr       = "CHECKOUT_REDIS_ADDR"
	EnvRedisPrefix     = "CHECKOUT_REDIS_PREFIX"
	EnvKafkaBrokers    = "CHECKOUT_KAFKA_BROKERS"
	EnvKafkaTopic      = "CHECKOUT_KAFKA_TOPIC"
	EnvLogLevel        = "CHECKOUT_LOG_LEVEL"
)

// Config описывает настройки запуска демо-приложения.
type Config struct {
	// MetricsAddr задаёт адрес HTTP-сервера /metrics и /healthz. Пустой адрес отключает сервер.
	MetricsAddr string
	// KeepServing оставляет HTTP-сервер работать после сценариев до сигнала остановки.
	KeepServing bool

	PaymentLatency time.Duration
	// PaymentMaxAttempts ограничивает попытки списания при временных сбоях шлюза. Отказ по карте не повторяется.
	PaymentMaxAttempts int

	InventoryDriver InventoryDriver
	RedisAddr       string
	RedisPrefix     string

	// Пустой KafkaBrokers означает уведомления через лог.
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel log.Level
}

// DefaultConfig возвращает конфигурацию, повторяющую исходный сценарий: склад в памяти, задержка оплаты 1 с.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:        "",
		PaymentLatency:     payment.DefaultLatency,
		PaymentMaxAttempts: payment.DefaultRetryConfig().MaxAttempts,
		InventoryDriver:    InventoryDriverMemory,
		RedisAddr:          "localhost:6379",
		RedisPrefix:        "checkout:item:",
		KafkaTopic:         kafka.TopicOrderConfirmations,
		LogLevel:           log.InfoLevel,
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.InventoryDriver {
	case InventoryDriverMemory:
	case InventoryDriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%s is required for redis inventory", EnvRedisAddr)
		}
	default:
		return fmt.Errorf("unsupported inventory driver %q", c.InventoryDriver)
	}
	if c.PaymentLatency < 0 {
		return fmt.Errorf("payment latency must be non-negative, got %s", c.PaymentLatency)
	}
	if c.PaymentMaxAttempts < 1 {
		return fmt.Errorf("payment max attempts must be positive, got %d", c.PaymentMaxAttempts)
	}
	if c.KeepServing && c.MetricsAddr == "" {
		return fmt.Errorf("%s requires %s", EnvKeepServing, EnvMetricsAddr)
	}
	return nil
}

// ReadConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения пропускаются, описание проблемы попадает в warnings.
func ReadConfigFromEnv(lookup func(string) (string, bool)) (Config, []string) {
	cfg := DefaultConfig()
	var warnings []string

	if v, ok := lookupNonEmpty(lookup, EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupNonEmpty(lookup, EnvKeepServing); ok {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			cfg.KeepServing = true
		case "0", "false", "no":
			cfg.KeepServing = false
		default:
			warnings = append(warnings, fmt.Sprintf("%s: invalid boolean %q", EnvKeepServing, v))
		}
	}
	if v, ok := lookupNonEmpty(lookup, EnvPaymentLatency); ok {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s: %v", EnvPaymentLatency, err))
		case d < 0:
			warnings = append(warnings, fmt.Sprintf("%s: negative duration %s", EnvPaymentLatency, v))
		default:
			cfg.PaymentLatency = d
		}
	}
	if v, ok := lookupNonEmpty(lookup, EnvPaymentAttempts); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			warnings = append(warnings, fmt.Sprintf("%s: expected positive integer, got %q", EnvPaymentAttempts, v))
		} else {
			cfg.PaymentMaxAttempts = n
		}
	}
	if v, ok := lookupNonEmpty(lookup, EnvInventoryDriver); ok {
		driver := InventoryDriver(strings.ToLower(v))
		switch driver {
		case InventoryDriverMemory, InventoryDriverRedis:
			cfg.InventoryDriver = driver
		default:
			warnings = append(warnings, fmt.Sprintf("%s: unsupported driver %q", EnvInventoryDriver, v))
		}
	}
	if v, ok := lookupNonEmpty(lookup, EnvRedisAddr); ok {
		cfg.RedisAddr = v
	}
	if v, ok := lookupNonEmpty(lookup, EnvRedisPrefix); ok {
		cfg.RedisPrefix = v
	}
	if v, ok := lookupNonEmpty(lookup, EnvKafkaBrokers); ok {
		cfg.KafkaBrokers = splitList(v)
	}
	if v, ok := lookupNonEmpty(lookup, EnvKafkaTopic); ok {
		cfg.KafkaTopic = v
	}
	if v, ok := lookupNonEmpty(lookup, EnvLogLevel); ok {
		level, err := log.ParseLevel(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", EnvLogLevel, err))
		} else {
			cfg.LogLevel = level
		}
	}

	return cfg, warnings
}

func lookupNonEmpty(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
