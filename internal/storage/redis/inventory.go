package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

const (
	stockKeySuffix    = ":stock"
	reservedKeySuffix = ":reserved"

	scriptOK           = 1
	scriptInsufficient = 0
	scriptMissing      = -1
)

// reserveScript атомарно проверяет доступный остаток и увеличивает резерв.
// Возвращает {статус, доступно}.
var reserveScript = goredis.NewScript(`
local stock = redis.call('GET', KEYS[1])
if not stock then
	return {-1, 0}
end
local reserved = tonumber(redis.call('GET', KEYS[2]) or '0')
local available = tonumber(stock) - reserved
local qty = tonumber(ARGV[1])
if available < qty then
	return {0, available}
end
redis.call('INCRBY', KEYS[2], qty)
return {1, available - qty}
`)

// releaseScript снимает резерв по парам ключей (stock, reserved); резерв не уходит ниже нуля.
var releaseScript = goredis.NewScript(`
for i = 1, #ARGV do
	if not redis.call('GET', KEYS[2*i-1]) then
		return -1
	end
end
for i = 1, #ARGV do
	local reserved = tonumber(redis.call('GET', KEYS[2*i]) or '0')
	local qty = math.min(tonumber(ARGV[i]), reserved)
	if qty > 0 then
		redis.call('DECRBY', KEYS[2*i], qty)
	end
end
return 1
`)

// commitScript списывает остаток по всем позициям или не меняет ничего.
var commitScript = goredis.NewScript(`
for i = 1, #ARGV do
	local stock = redis.call('GET', KEYS[2*i-1])
	if not stock then
		return -1
	end
	if tonumber(stock) < tonumber(ARGV[i]) then
		return 0
	end
end
for i = 1, #ARGV do
	local qty = tonumber(ARGV[i])
	redis.call('DECRBY', KEYS[2*i-1], qty)
	local reserved = tonumber(redis.call('GET', KEYS[2*i]) or '0')
	local release = math.min(qty, reserved)
	if release > 0 then
		redis.call('DECRBY', KEYS[2*i], release)
	end
end
return 1
`)

// Inventory хранит остатки и резервы в Redis. Справочник товаров с названиями и ценами лежит в памяти.
// Атомарность изменений обеспечивают Lua-скрипты.
type Inventory struct {
	client  *goredis.Client
	prefix  string
	catalog map[string]domain.Item
}

// NewInventory записывает начальные остатки в Redis и возвращает склад.
func NewInventory(ctx context.Context, client *goredis.Client, prefix string, seed []domain.Item) (*Inventory, error) {
	if prefix == "" {
		prefix = "checkout:item:"
	}
	inv := &Inventory{
		client:  client,
		prefix:  prefix,
		catalog: make(map[string]domain.Item, len(seed)),
	}

	pipe := client.TxPipeline()
	for _, item := range seed {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, exists := inv.catalog[item.Code]; exists {
			return nil, fmt.Errorf("duplicate item code %s", item.Code)
		}
		inv.catalog[item.Code] = domain.Item{Code: item.Code, Name: item.Name, UnitPrice: item.UnitPrice}
		pipe.Set(ctx, inv.stockKey(item.Code), item.Stock, 0)
		pipe.Set(ctx, inv.reservedKey(item.Code), item.Reserved, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("seed inventory: %w", err)
	}
	return inv, nil
}

// Ping проверяет доступность Redis (для health check).
func (r *Inventory) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// FindItem возвращает карточку с актуальными остатками.
func (r *Inventory) FindItem(ctx context.Context, code string) (domain.Item, error) {
	items, err := r.load(ctx, []string{code})
	if err != nil {
		return domain.Item{}, err
	}
	return items[0], nil
}

// Reserve удерживает qty единиц скриптом reserveScript.
func (r *Inventory) Reserve(ctx context.Context, _ string, code string, qty int) error {
	if qty <= 0 {
		return domain.ErrQuantityInvalid
	}
	meta, ok := r.catalog[code]
	if !ok {
		return fmt.Errorf("item %s: %w", code, domain.ErrItemNotFound)
	}

	res, err := reserveScript.Run(ctx, r.client, []string{r.stockKey(code), r.reservedKey(code)}, qty).Int64Slice()
	if err != nil {
		return fmt.Errorf("reserve %s: %w", code, err)
	}
	if len(res) != 2 {
		return fmt.Errorf("reserve %s: unexpected script result %v", code, res)
	}
	switch res[0] {
	case scriptOK:
		return nil
	case scriptInsufficient:
		return &domain.InsufficientStockError{
			Code:      code,
			Name:      meta.Name,
			Available: int(res[1]),
			Requested: qty,
		}
	default:
		return fmt.Errorf("item %s: %w", code, domain.ErrItemNotFound)
	}
}

// Release снимает резерв по позициям заказа.
func (r *Inventory) Release(ctx context.Context, orderID string, lines []domain.CartLine) error {
	keys, args := r.scriptArgs(lines)
	if len(args) == 0 {
		return nil
	}
	res, err := releaseScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("release order %s: %w", orderID, err)
	}
	if res == scriptMissing {
		return fmt.Errorf("release order %s: %w", orderID, domain.ErrInventoryInconsistency)
	}
	return nil
}

// Commit списывает остаток по позициям оплаченного заказа.
func (r *Inventory) Commit(ctx context.Context, orderID string, lines []domain.CartLine) error {
	keys, args := r.scriptArgs(lines)
	if len(args) == 0 {
		return nil
	}
	res, err := commitScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("commit order %s: %w", orderID, err)
	}
	if res != scriptOK {
		return fmt.Errorf("commit order %s (code %d): %w", orderID, res, domain.ErrInventoryInconsistency)
	}
	return nil
}

// Items возвращает снимок склада, отсортированный по коду.
func (r *Inventory) Items(ctx context.Context) ([]domain.Item, error) {
	codes := make([]string, 0, len(r.catalog))
	for code := range r.catalog {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	if len(codes) == 0 {
		return nil, nil
	}
	return r.load(ctx, codes)
}

func (r *Inventory) load(ctx context.Context, codes []string) ([]domain.Item, error) {
	keys := make([]string, 0, 2*len(codes))
	for _, code := range codes {
		if _, ok := r.catalog[code]; !ok {
			return nil, fmt.Errorf("item %s: %w", code, domain.ErrItemNotFound)
		}
		keys = append(keys, r.stockKey(code), r.reservedKey(code))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	items := make([]domain.Item, 0, len(codes))
	for i, code := range codes {
		stock, err := parseCounter(values[2*i])
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", code, err)
		}
		reserved, err := parseCounter(values[2*i+1])
		if err != nil && !errors.Is(err, errMissingCounter) {
			return nil, fmt.Errorf("item %s: %w", code, err)
		}
		item := r.catalog[code]
		item.Stock = stock
		item.Reserved = reserved
		items = append(items, item)
	}
	return items, nil
}

// scriptArgs раскладывает позиции в пары ключей и количества в порядке кодов.
func (r *Inventory) scriptArgs(lines []domain.CartLine) ([]string, []interface{}) {
	quantities := domain.QuantitiesByCode(lines)
	codes := make([]string, 0, len(quantities))
	for code := range quantities {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	keys := make([]string, 0, 2*len(codes))
	args := make([]interface{}, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, r.stockKey(code), r.reservedKey(code))
		args = append(args, quantities[code])
	}
	return keys, args
}

func (r *Inventory) stockKey(code string) string {
	return r.prefix + code + stockKeySuffix
}

func (r *Inventory) reservedKey(code string) string {
	return r.prefix + code + reservedKeySuffix
}

var errMissingCounter = errors.New("counter is missing")

func parseCounter(v interface{}) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: %w", domain.ErrItemNotFound, errMissingCounter)
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("parse counter %q: %w", val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
}

var _ domain.Inventory = (*Inventory)(nil)
