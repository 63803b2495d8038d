package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
	redisinv "github.com/vladislavdragonenkov/checkout/internal/storage/redis"
)

// inventoryRuntime — склад и ресурсы, которые нужно освободить при остановке.
type inventoryRuntime struct {
	inventory domain.Inventory
	checkers  map[string]health.Checker
	close     func() error
}

// initInventory создаёт склад по выбранному driver и засевает его каталогом.
func initInventory(ctx context.Context, cfg Config, seed []domain.Item, logger *log.Entry) (*inventoryRuntime, error) {
	switch cfg.InventoryDriver {
	case InventoryDriverMemory, "":
		inv, err := memory.NewInventory(seed)
		if err != nil {
			return nil, fmt.Errorf("init memory inventory: %w", err)
		}
		logger.Info("using in-memory inventory")
		return &inventoryRuntime{
			inventory: inv,
			checkers:  map[string]health.Checker{"inventory": health.NewInventoryChecker(inv)},
			close:     func() error { return nil },
		}, nil

	case InventoryDriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is required for %s driver", InventoryDriverRedis)
		}
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		inv, err := redisinv.NewInventory(ctx, client, cfg.RedisPrefix, seed)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("init redis inventory: %w", err)
		}
		logger.WithField("redis_addr", cfg.RedisAddr).Info("using redis inventory")
		return &inventoryRuntime{
			inventory: inv,
			checkers: map[string]health.Checker{
				"inventory": health.NewInventoryChecker(inv),
				"redis":     health.NewSimpleChecker("redis", inv.Ping),
			},
			close: client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported inventory driver %q", cfg.InventoryDriver)
	}
}
