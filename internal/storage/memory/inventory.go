package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// inventoryInMemory — склад в памяти процесса. Все изменения идут под одним мьютексом,
// поэтому резервирование и списание не пересекаются между заказами.
type inventoryInMemory struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

// NewInventory создаёт склад с начальным набором товаров.
func NewInventory(seed []domain.Item) (domain.Inventory, error) {
	inv := &inventoryInMemory{items: make(map[string]*domain.Item, len(seed))}
	for _, item := range seed {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, exists := inv.items[item.Code]; exists {
			return nil, fmt.Errorf("duplicate item code %s", item.Code)
		}
		cp := item
		inv.items[item.Code] = &cp
	}
	return inv, nil
}

// FindItem возвращает копию карточки или ErrItemNotFound.
func (r *inventoryInMemory) FindItem(_ context.Context, code string) (domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[code]
	if !ok {
		return domain.Item{}, fmt.Errorf("item %s: %w", code, domain.ErrItemNotFound)
	}
	return *item, nil
}

// Reserve удерживает qty единиц, если их хватает.
func (r *inventoryInMemory) Reserve(_ context.Context, _ string, code string, qty int) error {
	if qty <= 0 {
		return domain.ErrQuantityInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[code]
	if !ok {
		return fmt.Errorf("item %s: %w", code, domain.ErrItemNotFound)
	}
	if item.Available() < qty {
		return &domain.InsufficientStockError{
			Code:      item.Code,
			Name:      item.Name,
			Available: item.Available(),
			Requested: qty,
		}
	}
	item.Reserved += qty
	return nil
}

// Release снимает резерв. Резерв не опускается ниже нуля.
func (r *inventoryInMemory) Release(_ context.Context, orderID string, lines []domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quantities := domain.QuantitiesByCode(lines)
	for _, code := range sortedCodes(quantities) {
		if _, ok := r.items[code]; !ok {
			return fmt.Errorf("release order %s: item %s: %w", orderID, code, domain.ErrInventoryInconsistency)
		}
	}
	for code, qty := range quantities {
		item := r.items[code]
		item.Reserved -= min(qty, item.Reserved)
	}
	return nil
}

// Commit списывает остаток целиком или не меняет ничего.
func (r *inventoryInMemory) Commit(_ context.Context, orderID string, lines []domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quantities := domain.QuantitiesByCode(lines)
	// Сначала проверяем все позиции, чтобы не списать склад частично.
	for _, code := range sortedCodes(quantities) {
		item, ok := r.items[code]
		if !ok {
			return fmt.Errorf("commit order %s: item %s: %w", orderID, code, domain.ErrInventoryInconsistency)
		}
		if item.Stock < quantities[code] {
			return fmt.Errorf("commit order %s: item %s has stock %d, need %d: %w",
				orderID, code, item.Stock, quantities[code], domain.ErrInventoryInconsistency)
		}
	}
	for code, qty := range quantities {
		item := r.items[code]
		item.Stock -= qty
		item.Reserved -= min(qty, item.Reserved)
	}
	return nil
}

// Items возвращает снимок склада, отсортированный по коду.
func (r *inventoryInMemory) Items(_ context.Context) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Item, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result, nil
}

func sortedCodes(quantities map[string]int) []string {
	codes := make([]string, 0, len(quantities))
	for code := range quantities {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

var _ domain.Inventory = (*inventoryInMemory)(nil)
