package player

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Player holds the per-entity economic state the exchange touches.
type Player struct {
	Name                 string
	Wallet               float64
	TotalInvestment      float64
	ProfitCollected      float64
	TransactionCompleted uint64
	TradingSkill         int
	TurnEarning          float64 // credited since the last ResetTurnEarnings
}

// SkillLevel derives the trading skill from the number of completed
// transactions: floor(log(n) / log(sqrt(2))).
func SkillLevel(completed uint64) int {
	if completed == 0 {
		return 0
	}
	// log(n)/log(sqrt(2)) == 2*log2(n); Log2 is exact on powers of two.
	return int(math.Floor(2 * math.Log2(float64(completed))))
}

// Registry is the explicitly constructed replacement for a process-wide
// player table. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Player

	totalSpending float64
	totalEarning  float64
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*Player),
	}
}

// Register adds a player with starting funds.
func (r *Registry) Register(name string, funds float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[name]; exists {
		return fmt.Errorf("player %s already exists", name)
	}
	r.players[name] = &Player{Name: name, Wallet: funds}
	return nil
}

// Get returns a copy of the player's state.
func (r *Registry) Get(name string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[name]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Names lists registered players, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.players))
	for name := range r.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Balance(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.players[name]; ok {
		return p.Wallet
	}
	return 0
}

// Spend debits the wallet. Callers check the balance first.
func (r *Registry) Spend(name string, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.lookup(name)
	if !ok {
		return
	}
	p.Wallet -= amount
	r.totalSpending += amount
}

// Unspend refunds a previous Spend.
func (r *Registry) Unspend(name string, amount float64) {
	r.Spend(name, -amount)
}

func (r *Registry) Earn(name string, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.lookup(name)
	if !ok {
		return
	}
	p.Wallet += amount
	p.TurnEarning += amount
	r.totalEarning += amount
}

// ResetTurnEarnings zeroes every player's TurnEarning at the start of a turn.
func (r *Registry) ResetTurnEarnings() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		p.TurnEarning = 0
	}
}

func (r *Registry) RecordInvestment(name string, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.lookup(name); ok {
		p.TotalInvestment += amount
	}
}

func (r *Registry) RecordProfit(name string, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.lookup(name); ok {
		p.ProfitCollected += amount
	}
}

// RecordTransaction counts a completed trade and returns the new skill level.
func (r *Registry) RecordTransaction(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.lookup(name)
	if !ok {
		return 0
	}
	p.TransactionCompleted++
	p.TradingSkill = SkillLevel(p.TransactionCompleted)
	return p.TradingSkill
}

func (r *Registry) TradingSkill(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.players[name]; ok {
		return p.TradingSkill
	}
	return 0
}

// Totals returns the cumulative spending and earning across all players.
func (r *Registry) Totals() (spending, earning float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalSpending, r.totalEarning
}

// lookup assumes the lock is held.
func (r *Registry) lookup(name string) (*Player, bool) {
	p, ok := r.players[name]
	if !ok {
		log.Warn().Str("player", name).Msg("unknown player")
	}
	return p, ok
}
