package ledger

import (
	"fmt"
	"maps"
	"math"
	"sync"

	"vanir/internal/common"
	"vanir/internal/leaderboard"

	"github.com/rs/zerolog/log"
)

const (
	MonopolyThreshold = 0.995
	MonopolyScore     = 1000
)

// Accounts is the slice of the player registry the ledger moves money through.
type Accounts interface {
	Balance(name string) float64
	Spend(name string, amount float64)
	Earn(name string, amount float64)
	RecordInvestment(name string, amount float64)
	RecordProfit(name string, amount float64)
}

// Achievements receives monopoly gains and losses. Fire and forget.
type Achievements interface {
	LogAchievement(entity, kind string, delta float64, overwrite bool)
}

// Cooldown reports whether the owning entity is out of service.
type Cooldown interface {
	InCooldown() bool
}

// Investable is the capability an entity exposes when it offers equity.
type Investable interface {
	Invest(investor string, amount float64) error
	Profit(investor string) (float64, error)
	DistributeEarnings(amount float64) error
}

// Ledger is the proportional-ownership book of one entity. Equities only
// grow, so the sum of all equities always equals the total investment.
type Ledger struct {
	name         string
	cooldown     Cooldown
	accounts     Accounts
	achievements Achievements

	mu                   sync.Mutex
	level                int
	investment           float64
	undistributedEarning float64
	equities             map[string]float64
	earnings             map[string]float64
	monopoly             bool
	owner                string
	ownerInvestment      float64
}

var _ Investable = (*Ledger)(nil)

func New(name string, cooldown Cooldown, accounts Accounts, achievements Achievements) *Ledger {
	return &Ledger{
		name:         name,
		cooldown:     cooldown,
		accounts:     accounts,
		achievements: achievements,
		equities:     make(map[string]float64),
		earnings:     make(map[string]float64),
	}
}

// calculateLevel is floor(log10(investment)), never below 0.
func calculateLevel(investment float64) int {
	if investment <= 0 {
		return 0
	}
	return max(int(math.Floor(math.Log10(investment))), 0)
}

// Invest moves amount from the investor's wallet into equity.
func (l *Ledger) Invest(investor string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: investment %f", common.ErrInvalidQuantity, amount)
	}
	if l.inCooldown() {
		return common.ErrEntityInCooldown
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.accounts.Balance(investor) < amount {
		log.Warn().
			Str("investor", investor).
			Str("entity", l.name).
			Float64("amount", amount).
			Msg("not enough funds to invest")
		return common.ErrInsufficientFunds
	}

	beforeMonopoly := l.monopoly
	beforeOwner := l.owner

	l.accounts.Spend(investor, amount)
	l.accounts.RecordInvestment(investor, amount)
	l.equities[investor] += amount
	l.investment += amount
	l.level = calculateLevel(l.investment)

	l.updateMonopoly(investor, beforeMonopoly, beforeOwner)
	return nil
}

// updateMonopoly assumes the lock is held.
func (l *Ledger) updateMonopoly(investor string, beforeMonopoly bool, beforeOwner string) {
	ratio := l.equities[investor] / l.investment

	switch {
	case ratio >= MonopolyThreshold:
		// Re-investment by the standing owner keeps the score unchanged.
		if !beforeMonopoly || beforeOwner != investor {
			l.achievements.LogAchievement(investor, leaderboard.Monopoly, MonopolyScore, false)
			log.Warn().Str("investor", investor).Str("entity", l.name).Msg("gained monopoly")
			if beforeMonopoly {
				l.loseMonopoly(beforeOwner)
			}
		}
		l.owner = investor
		l.ownerInvestment = l.equities[investor]
		l.monopoly = true

	case l.owner != "" && l.ownerInvestment/l.investment >= MonopolyThreshold:
		l.monopoly = true

	default:
		l.clearMonopoly(beforeMonopoly, beforeOwner)
	}
}

func (l *Ledger) clearMonopoly(beforeMonopoly bool, beforeOwner string) {
	l.monopoly = false
	l.owner = ""
	l.ownerInvestment = 0
	if beforeMonopoly && beforeOwner != "" {
		l.loseMonopoly(beforeOwner)
	}
}

func (l *Ledger) loseMonopoly(owner string) {
	l.achievements.LogAchievement(owner, leaderboard.Monopoly, -MonopolyScore, false)
	log.Warn().Str("investor", owner).Str("entity", l.name).Msg("lost monopoly")
}

// DistributeEarnings adds amount to the pool and, when anyone holds equity,
// flushes the whole pool pro rata into the investors' collectible earnings.
// While the entity is in cooldown the pool only accumulates.
func (l *Ledger) DistributeEarnings(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: earnings %f", common.ErrInvalidQuantity, amount)
	}

	cooling := l.inCooldown()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.undistributedEarning += amount
	if cooling || l.investment <= 0 || !l.hasEquity() {
		return nil
	}

	for investor, equity := range l.equities {
		ratio := equity / l.investment
		l.earnings[investor] += max(l.undistributedEarning*ratio, 0)
	}
	log.Debug().
		Str("entity", l.name).
		Float64("amount", amount).
		Float64("flushed", l.undistributedEarning).
		Msg("earnings distributed")
	l.undistributedEarning = 0
	return nil
}

// hasEquity assumes the lock is held.
func (l *Ledger) hasEquity() bool {
	var total float64
	for _, equity := range l.equities {
		total += equity
	}
	return total > 0
}

// Profit pays out and zeroes the investor's collectible earnings.
func (l *Ledger) Profit(investor string) (float64, error) {
	if l.inCooldown() {
		return 0, common.ErrEntityInCooldown
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payout := l.earnings[investor]
	if payout > 0 {
		l.accounts.Earn(investor, payout)
		l.accounts.RecordProfit(investor, payout)
		l.earnings[investor] = 0
	}
	return payout, nil
}

// Destroy wipes ownership: equities, earnings, investment and monopoly. A
// standing monopoly owner is penalised. The undistributed pool survives and
// goes to whoever invests next.
func (l *Ledger) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clearMonopoly(l.monopoly, l.owner)
	l.level = 0
	l.investment = 0
	l.equities = make(map[string]float64)
	l.earnings = make(map[string]float64)
}

func (l *Ledger) inCooldown() bool {
	return l.cooldown != nil && l.cooldown.InCooldown()
}

func (l *Ledger) Name() string { return l.name }

func (l *Ledger) Level() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Ledger) Investment() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.investment
}

func (l *Ledger) UndistributedEarning() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.undistributedEarning
}

func (l *Ledger) Equity(investor string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.equities[investor]
}

// Equities returns a copy of every investor's equity.
func (l *Ledger) Equities() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]float64, len(l.equities))
	maps.Copy(out, l.equities)
	return out
}

// Earnings is the investor's collectible balance.
func (l *Ledger) Earnings(investor string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.earnings[investor]
}

// Monopoly reports whether one investor controls the entity, and who.
func (l *Ledger) Monopoly() (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.monopoly, l.owner
}
