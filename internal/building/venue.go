package building

import (
	"fmt"

	"vanir/internal/common"
	"vanir/internal/engine"
	"vanir/internal/ledger"

	"github.com/rs/zerolog/log"
)

type Kind int

const (
	MarketplaceKind Kind = iota
	FactoryKind
	DrydockKind
)

func (k Kind) String() string {
	switch k {
	case MarketplaceKind:
		return "marketplace"
	case FactoryKind:
		return "factory"
	case DrydockKind:
		return "drydock"
	default:
		return "unknown"
	}
}

const (
	MarketplaceResetCooldown = 10000
	BaseEarningRatio         = 0.5
)

// resetCooldown is the number of turns a destroyed venue stays closed.
func (k Kind) resetCooldown(maxHull, selfRepair uint64) uint64 {
	if k == MarketplaceKind || selfRepair == 0 {
		return MarketplaceResetCooldown
	}
	return maxHull / selfRepair
}

// Venue is a building that carries an equity ledger.
type Venue struct {
	*Building
	kind     Kind
	ledger   *ledger.Ledger
	accounts ledger.Accounts
}

var _ ledger.Investable = (*Venue)(nil)

func NewVenue(kind Kind, name string, maxHull, selfRepair uint64, accounts ledger.Accounts, achievements ledger.Achievements) *Venue {
	b := New(name, maxHull, selfRepair)
	return &Venue{
		Building: b,
		kind:     kind,
		ledger:   ledger.New(name, b, accounts, achievements),
		accounts: accounts,
	}
}

func (v *Venue) Kind() Kind { return v.kind }

func (v *Venue) Ledger() *ledger.Ledger { return v.ledger }

func (v *Venue) Invest(investor string, amount float64) error {
	return v.ledger.Invest(investor, amount)
}

func (v *Venue) Profit(investor string) (float64, error) {
	return v.ledger.Profit(investor)
}

func (v *Venue) DistributeEarnings(amount float64) error {
	return v.ledger.DistributeEarnings(amount)
}

// earningRatio is the share of a service charge that reaches the
// shareholders, growing 1% per ledger level up to the whole charge.
func earningRatio(level int) float64 {
	return min(BaseEarningRatio*(1+float64(level)*0.01), 1)
}

// Charge bills payer for a service, such as a factory job or a drydock
// repair, and routes the shareholders' part into the ledger.
func (v *Venue) Charge(payer string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: charge %f", common.ErrInvalidQuantity, amount)
	}
	if v.InCooldown() {
		return common.ErrEntityInCooldown
	}
	if v.accounts.Balance(payer) < amount {
		return common.ErrInsufficientFunds
	}

	v.accounts.Spend(payer, amount)
	earning := amount * earningRatio(v.ledger.Level())
	if err := v.ledger.DistributeEarnings(earning); err != nil {
		return err
	}
	log.Debug().Str("venue", v.Name()).Str("payer", payer).Float64("amount", amount).Float64("earning", earning).Msg("service charged")
	return nil
}

// Damage hits the hull. When it gives way the ownership is wiped and the
// venue closes for its reset cooldown.
func (v *Venue) Damage(amount uint64) bool {
	if !v.damage(amount, v.kind.resetCooldown(v.maxHull, v.selfRepair)) {
		return false
	}
	v.ledger.Destroy()
	return true
}

// Marketplace is the venue that runs the order books of its location. Its
// fees go to the venue's shareholders.
type Marketplace struct {
	*Venue
	engine *engine.Engine
}

// NewMarketplace wires the venue in as the books' fee sink and cooldown.
func NewMarketplace(venue *Venue, origin string, cfg engine.Config, deps engine.Deps) *Marketplace {
	deps.Fees = venue
	deps.Cooldown = venue
	return &Marketplace{
		Venue:  venue,
		engine: engine.New(origin, cfg, deps),
	}
}

func (m *Marketplace) Engine() *engine.Engine { return m.engine }
