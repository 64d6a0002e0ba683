package warehouse

import (
	"maps"
	"sync"

	"github.com/rs/zerolog/log"
)

// Warehouse is the per-location inventory, keyed by owner then item type.
type Warehouse struct {
	name string

	mu        sync.RWMutex
	inventory map[string]map[string]uint64
}

func New(name string) *Warehouse {
	return &Warehouse{
		name:      name,
		inventory: make(map[string]map[string]uint64),
	}
}

func (w *Warehouse) Name() string { return w.name }

func (w *Warehouse) GetItem(owner, item string) uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.inventory[owner][item]
}

func (w *Warehouse) AddItem(owner, item string, qty uint64) {
	if qty == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	items, ok := w.inventory[owner]
	if !ok {
		items = make(map[string]uint64)
		w.inventory[owner] = items
	}
	items[item] += qty
}

// RemoveItem takes qty units out of the owner's inventory. It reports false,
// changing nothing, when the owner holds fewer than qty units.
func (w *Warehouse) RemoveItem(owner, item string, qty uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	have := w.inventory[owner][item]
	if have < qty {
		log.Warn().
			Str("warehouse", w.name).
			Str("owner", owner).
			Str("item", item).
			Uint64("have", have).
			Uint64("want", qty).
			Msg("not enough items to remove")
		return false
	}

	have -= qty
	if have == 0 {
		delete(w.inventory[owner], item)
	} else {
		w.inventory[owner][item] = have
	}
	return true
}

// Inventory returns a copy of everything the owner holds here.
func (w *Warehouse) Inventory(owner string) map[string]uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[string]uint64, len(w.inventory[owner]))
	maps.Copy(out, w.inventory[owner])
	return out
}
