package engine

import "vanir/internal/common"

// Wallets moves funds for a named entity. Spend at placement, Unspend for
// refunds, Earn for sale proceeds.
type Wallets interface {
	Balance(name string) float64
	Spend(name string, amount float64)
	Unspend(name string, amount float64)
	Earn(name string, amount float64)
}

// Traders tracks completed trades, which drive the fee discount.
type Traders interface {
	TradingSkill(name string) int
	RecordTransaction(name string) int
}

// Storage is the inventory at the marketplace's location.
type Storage interface {
	GetItem(owner, item string) uint64
	AddItem(owner, item string, qty uint64)
	RemoveItem(owner, item string, qty uint64) bool
}

// FeeSink receives every fee the book charges. Usually the marketplace's
// equity ledger.
type FeeSink interface {
	DistributeEarnings(amount float64) error
}

// TransactionLog receives every settled trade.
type TransactionLog interface {
	PushTransaction(tx common.Transaction)
}

type Cooldown interface {
	InCooldown() bool
}

type Config struct {
	BaseFeeRatio  float64 // charged to the buyer on placement
	TradeFeeRatio float64 // charged to the seller on settlement
	OrderLifetime uint64  // turns an order rests when no expiry is given
}

func DefaultConfig() Config {
	return Config{
		BaseFeeRatio:  0.01,
		TradeFeeRatio: 0.01,
		OrderLifetime: 100,
	}
}
