package building

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultHull       = 1_000_000
	DefaultSelfRepair = 100
)

// Building is the structural part of a venue: a hull that repairs itself
// every turn and a cooldown during which the venue refuses business.
type Building struct {
	name       string
	maxHull    uint64
	selfRepair uint64

	mu       sync.Mutex
	hull     uint64
	cooldown uint64
}

func New(name string, maxHull, selfRepair uint64) *Building {
	return &Building{
		name:       name,
		maxHull:    maxHull,
		selfRepair: selfRepair,
		hull:       maxHull,
	}
}

func (b *Building) Name() string { return b.name }

// Repair runs once per turn.
func (b *Building) Repair() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hull = min(b.hull+b.selfRepair, b.maxHull)
	if b.cooldown > 0 {
		b.cooldown--
	}
}

// damage lowers the hull and reports whether it reached zero. Destruction
// restores the hull and starts the cooldown.
func (b *Building) damage(amount, resetCooldown uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cooldown > 0 {
		log.Warn().Str("building", b.name).Msg("still in cooldown")
		return false
	}
	if amount < b.hull {
		b.hull -= amount
		return false
	}
	b.hull = b.maxHull
	b.cooldown = resetCooldown
	log.Warn().Str("building", b.name).Uint64("cooldown", b.cooldown).Msg("building destroyed")
	return true
}

func (b *Building) InCooldown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cooldown > 0
}

func (b *Building) Cooldown() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cooldown
}

func (b *Building) Hull() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hull
}
