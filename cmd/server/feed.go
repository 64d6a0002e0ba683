package main

import (
	"context"
	"math/rand"

	"vanir/internal/common"
	"vanir/internal/sim"

	"github.com/rs/zerolog/log"
)

// randomFeed stands in for the trading actors: every turn it places a batch
// of random bids and asks around the current fair price, and now and then
// invests in, collects from, or pays for services at a venue.
type randomFeed struct {
	rng    *rand.Rand
	orders int
}

func newRandomFeed(rng *rand.Rand, orders int) *randomFeed {
	return &randomFeed{rng: rng, orders: orders}
}

func (f *randomFeed) next(ctx context.Context, u *sim.Universe, turn uint64) {
	players := u.Players.Names()
	locations := u.Locations()
	items := u.Prices.Items()
	if len(players) == 0 || len(locations) == 0 || len(items) == 0 {
		return
	}
	index := u.Economy.PriceIndex()

	for range f.orders {
		if ctx.Err() != nil {
			return
		}

		name := players[f.rng.Intn(len(players))]
		loc := locations[f.rng.Intn(len(locations))]
		item := items[f.rng.Intn(len(items))]
		fair := u.Prices.BasePrice(item) * index

		var err error
		switch f.rng.Intn(20) {
		case 0:
			venues := loc.Venues()
			if len(venues) == 0 {
				continue
			}
			err = venues[f.rng.Intn(len(venues))].Invest(name, fair*10)
		case 1:
			if payout := loc.Collect(name); payout > 0 {
				log.Debug().Str("player", name).Str("location", loc.Name()).Float64("payout", payout).Msg("profit collected")
			}
		case 2:
			if factory := loc.Factory(); factory != nil {
				err = factory.Charge(name, fair)
			}
		default:
			market := loc.Marketplace()
			if market == nil {
				continue
			}
			expiry := turn + uint64(10+f.rng.Intn(50))
			qty := uint64(1 + f.rng.Intn(5))

			if f.rng.Intn(2) == 0 {
				_, err = market.Engine().PlaceBid(common.BidOrder{
					Buyer:      name,
					ItemType:   item,
					Quantity:   qty,
					Price:      fair * (0.8 + 0.4*f.rng.Float64()),
					ExpiryTurn: expiry,
				})
				break
			}

			held := loc.Storage().GetItem(name, item)
			if held == 0 {
				continue
			}
			minPrice := fair * (0.7 + 0.3*f.rng.Float64())
			_, err = market.Engine().PlaceAsk(common.AskOrder{
				Seller:      name,
				ItemType:    item,
				Quantity:    min(qty, held),
				MinPrice:    minPrice,
				BuyoutPrice: minPrice * (1 + 0.5*f.rng.Float64()),
				ExpiryTurn:  expiry,
			})
		}
		if err != nil {
			log.Debug().Err(err).Str("player", name).Str("location", loc.Name()).Msg("action rejected")
		}
	}
}
