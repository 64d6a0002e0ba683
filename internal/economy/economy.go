package economy

import (
	"sort"
	"sync"

	"vanir/internal/clock"
	"vanir/internal/common"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPeriod      = 5000
	DefaultHistorySize = 100
)

// PriceReference resolves the base unit price of an item type.
type PriceReference interface {
	BasePrice(item string) float64
}

// Sink receives every pushed transaction, usually a journal.
type Sink interface {
	SaveTransaction(tx common.Transaction) error
}

type Config struct {
	Period      uint64 // turns of history that feed the price index
	HistorySize int    // transactions kept per item type
}

func DefaultConfig() Config {
	return Config{Period: DefaultPeriod, HistorySize: DefaultHistorySize}
}

// ring is a fixed capacity buffer that overwrites its oldest entry.
type ring struct {
	buf   []common.Transaction
	start int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]common.Transaction, capacity)}
}

func (r *ring) push(tx common.Transaction) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = tx
		r.size++
		return
	}
	r.buf[r.start] = tx
	r.start = (r.start + 1) % len(r.buf)
}

// items returns the buffered transactions oldest first.
func (r *ring) items() []common.Transaction {
	out := make([]common.Transaction, r.size)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Aggregator keeps a bounded trade history per item type and derives the
// galactic price index from it.
type Aggregator struct {
	cfg    Config
	clock  clock.Clock
	prices PriceReference
	sink   Sink

	mu                sync.RWMutex
	history           map[string]*ring
	totalTransactions uint64
	totalRevenue      float64
	priceIndex        float64
}

func New(cfg Config, clk clock.Clock, prices PriceReference) *Aggregator {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	return &Aggregator{
		cfg:        cfg,
		clock:      clk,
		prices:     prices,
		history:    make(map[string]*ring),
		priceIndex: 1,
	}
}

// SetSink attaches a sink that is handed every subsequent transaction.
func (a *Aggregator) SetSink(sink Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = sink
}

// PushTransaction records a settled trade. A failing sink is logged and
// never blocks the trade from being counted.
func (a *Aggregator) PushTransaction(tx common.Transaction) {
	a.mu.Lock()
	sink := a.sink
	a.record(tx)
	a.mu.Unlock()

	if sink == nil {
		return
	}
	if err := sink.SaveTransaction(tx); err != nil {
		log.Error().Err(err).Str("id", tx.ID).Str("item", tx.ItemType).Msg("unable to journal transaction")
	}
}

// Restore replays historical transactions without forwarding them to the
// sink. Used to warm the aggregator from a journal on start.
func (a *Aggregator) Restore(txs []common.Transaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, tx := range txs {
		a.record(tx)
	}
}

func (a *Aggregator) record(tx common.Transaction) {
	r, ok := a.history[tx.ItemType]
	if !ok {
		r = newRing(a.cfg.HistorySize)
		a.history[tx.ItemType] = r
	}
	r.push(tx)
	a.totalTransactions++
	a.totalRevenue += tx.Notional()
}

// RecomputeIndex averages, over item types traded within the last Period
// turns, each item's quantity weighted ratio of trade price to base price.
// The index is 1 when nothing qualifies.
func (a *Aggregator) RecomputeIndex() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	turn := a.clock.Turn()
	var sum float64
	var traded int
	for item, r := range a.history {
		base := a.prices.BasePrice(item)
		var weighted float64
		var qty uint64
		for _, tx := range r.items() {
			if tx.Turn+a.cfg.Period < turn {
				continue
			}
			weighted += tx.Price / base * float64(tx.Quantity)
			qty += tx.Quantity
		}
		if qty == 0 {
			continue
		}
		sum += weighted / float64(qty)
		traded++
	}

	a.priceIndex = 1
	if traded > 0 {
		a.priceIndex = sum / float64(traded)
	}
	log.Debug().Uint64("turn", turn).Int("items", traded).Float64("index", a.priceIndex).Msg("price index recomputed")
	return a.priceIndex
}

// PriceIndex is the value of the last RecomputeIndex.
func (a *Aggregator) PriceIndex() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.priceIndex
}

// Transactions returns the buffered history of an item, oldest first.
func (a *Aggregator) Transactions(item string) []common.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if r, ok := a.history[item]; ok {
		return r.items()
	}
	return nil
}

// Items lists the item types with any history, sorted.
func (a *Aggregator) Items() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	items := make([]string, 0, len(a.history))
	for item := range a.history {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

func (a *Aggregator) TotalTransactions() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.totalTransactions
}

func (a *Aggregator) TotalRevenue() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.totalRevenue
}
