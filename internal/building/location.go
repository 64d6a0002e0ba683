package building

import (
	"errors"

	"vanir/internal/common"
	"vanir/internal/ledger"
	"vanir/internal/warehouse"

	"github.com/rs/zerolog/log"
)

// Location is a place in the universe with a shared warehouse and whichever
// venues were built there. Capabilities are fixed at construction; a nil
// handle means the location does not offer it.
type Location struct {
	name        string
	storage     *warehouse.Warehouse
	marketplace *Marketplace
	factory     *Venue
	drydock     *Venue
}

func NewLocation(name string, storage *warehouse.Warehouse, marketplace *Marketplace, factory, drydock *Venue) *Location {
	return &Location{
		name:        name,
		storage:     storage,
		marketplace: marketplace,
		factory:     factory,
		drydock:     drydock,
	}
}

func (l *Location) Name() string { return l.name }
func (l *Location) Storage() *warehouse.Warehouse { return l.storage }
func (l *Location) Marketplace() *Marketplace { return l.marketplace }
func (l *Location) Factory() *Venue { return l.factory }
func (l *Location) Drydock() *Venue { return l.drydock }

// Venues lists the venues present, marketplace first.
func (l *Location) Venues() []*Venue {
	var venues []*Venue
	if l.marketplace != nil {
		venues = append(venues, l.marketplace.Venue)
	}
	if l.factory != nil {
		venues = append(venues, l.factory)
	}
	if l.drydock != nil {
		venues = append(venues, l.drydock)
	}
	return venues
}

// Investables lists every venue here that accepts investment.
func (l *Location) Investables() []ledger.Investable {
	venues := l.Venues()
	out := make([]ledger.Investable, len(venues))
	for i, v := range venues {
		out[i] = v
	}
	return out
}

// Collect takes the investor's profit from every venue here that is open.
func (l *Location) Collect(investor string) float64 {
	var total float64
	for _, v := range l.Venues() {
		payout, err := v.Profit(investor)
		if err != nil {
			if !errors.Is(err, common.ErrEntityInCooldown) {
				log.Warn().Err(err).Str("venue", v.Name()).Str("investor", investor).Msg("unable to collect profit")
			}
			continue
		}
		total += payout
	}
	return total
}

// Repair runs the per-turn self repair of every venue.
func (l *Location) Repair() {
	for _, v := range l.Venues() {
		v.Repair()
	}
}
