package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"vanir/internal/building"
	"vanir/internal/clock"
	"vanir/internal/common"
	"vanir/internal/economy"
	"vanir/internal/engine"
	"vanir/internal/leaderboard"
	"vanir/internal/player"
	"vanir/internal/pricing"
	"vanir/internal/warehouse"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

var ErrImproperConversion = errors.New("improper type conversion")

type Config struct {
	Market        engine.Config
	Economy       economy.Config
	IndexInterval uint64        // turns between price index updates
	Turns         uint64        // 0 runs until the context ends
	TurnInterval  time.Duration // pause between turns
	Workers       int
}

// Feed submits the actors' orders for a turn, before settlement.
type Feed func(ctx context.Context, u *Universe, turn uint64)

// Report summarises one turn.
type Report struct {
	Turn         uint64
	Trades       int
	CanceledBids int
	CanceledAsks int
	PriceIndex   float64
}

// Universe owns every service of one simulation instance.
type Universe struct {
	cfg Config

	Clock   *clock.TurnClock
	Players *player.Registry
	Board   *leaderboard.Board
	Economy *economy.Aggregator
	Prices  *pricing.Table
	Feed    Feed

	mu        sync.RWMutex
	locations map[string]*building.Location

	pool *WorkerPool
}

func New(cfg Config, prices *pricing.Table) *Universe {
	clk := clock.New()
	u := &Universe{
		cfg:       cfg,
		Clock:     clk,
		Players:   player.NewRegistry(),
		Board:     leaderboard.New(),
		Economy:   economy.New(cfg.Economy, clk, prices),
		Prices:    prices,
		locations: make(map[string]*building.Location),
	}
	u.pool = NewWorkerPool(cfg.Workers, u.settle)
	return u
}

// AddLocation builds a location with the given venues. Every venue gets the
// default hull.
func (u *Universe) AddLocation(name string, kinds ...building.Kind) (*building.Location, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.locations[name]; exists {
		return nil, fmt.Errorf("location %s already exists", name)
	}

	storage := warehouse.New(name)
	var market *building.Marketplace
	var factory, drydock *building.Venue
	for _, kind := range kinds {
		venue := building.NewVenue(kind, fmt.Sprintf("%s %s", name, kind), building.DefaultHull, building.DefaultSelfRepair, u.Players, u.Board)
		switch kind {
		case building.MarketplaceKind:
			market = building.NewMarketplace(venue, name, u.cfg.Market, engine.Deps{
				Clock:   u.Clock,
				Wallets: u.Players,
				Traders: u.Players,
				Storage: storage,
				Log:     u.Economy,
			})
		case building.FactoryKind:
			factory = venue
		case building.DrydockKind:
			drydock = venue
		}
	}

	loc := building.NewLocation(name, storage, market, factory, drydock)
	u.locations[name] = loc
	return loc, nil
}

func (u *Universe) Location(name string) (*building.Location, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	loc, ok := u.locations[name]
	return loc, ok
}

// Locations lists every location sorted by name.
func (u *Universe) Locations() []*building.Location {
	u.mu.RLock()
	defer u.mu.RUnlock()

	locs := make([]*building.Location, 0, len(u.locations))
	for _, loc := range u.locations {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Name() < locs[j].Name() })
	return locs
}

// Restore warms the aggregator with journaled transactions and resumes the
// clock one turn past the newest of them, so new trades always sort after
// the restored history.
func (u *Universe) Restore(txs []common.Transaction) {
	var last uint64
	for _, tx := range txs {
		last = max(last, tx.Turn)
	}
	u.Economy.Restore(txs)
	if len(txs) > 0 {
		u.Clock.Resume(last + 1)
	}
	u.Economy.RecomputeIndex()
}

// DestroyScore is credited to whoever brings a venue down.
const DestroyScore = 10000

// Attack damages a venue at a location and reports whether it was destroyed.
func (u *Universe) Attack(attacker, location string, kind building.Kind, damage uint64) (bool, error) {
	loc, ok := u.Location(location)
	if !ok {
		return false, fmt.Errorf("unknown location %s", location)
	}
	for _, venue := range loc.Venues() {
		if venue.Kind() != kind {
			continue
		}
		destroyed := venue.Damage(damage)
		if destroyed {
			u.Board.LogAchievement(attacker, leaderboard.Destroy, DestroyScore, false)
		}
		return destroyed, nil
	}
	return false, fmt.Errorf("no %s at %s", kind, location)
}

// settlement is the unit of work handed to the pool: one location's books
// for one turn.
type settlement struct {
	market *building.Marketplace
	turn   uint64

	trades []common.Transaction
	sweep  engine.SweepResult
}

func (u *Universe) settle(t *tomb.Tomb, task any) error {
	s, ok := task.(*settlement)
	if !ok {
		return ErrImproperConversion
	}

	eng := s.market.Engine()
	s.trades = eng.Match()
	s.sweep = eng.CleanUp(s.turn)

	u.logTrades(s.trades)
	u.logTrades(s.sweep.Transactions)
	return nil
}

func (u *Universe) logTrades(txs []common.Transaction) {
	for _, tx := range txs {
		u.Board.LogAchievement(tx.Buyer, leaderboard.Transaction, 1, false)
		u.Board.LogAchievement(tx.Seller, leaderboard.Transaction, 1, false)
	}
}

// Step runs one turn. Turn earnings reset and venues repair, then the feed
// places orders and every marketplace matches and sweeps expired orders.
// The price index is refreshed on its interval before the clock ticks.
func (u *Universe) Step(ctx context.Context) (Report, error) {
	turn := u.Clock.Turn()
	locs := u.Locations()

	u.Players.ResetTurnEarnings()

	for _, loc := range locs {
		loc.Repair()
	}

	if u.Feed != nil {
		u.Feed(ctx, u, turn)
	}

	var tasks []any
	var settlements []*settlement
	for _, loc := range locs {
		if market := loc.Marketplace(); market != nil {
			s := &settlement{market: market, turn: turn}
			settlements = append(settlements, s)
			tasks = append(tasks, s)
		}
	}

	t, _ := tomb.WithContext(ctx)
	if err := u.pool.Process(t, tasks); err != nil {
		return Report{Turn: turn}, fmt.Errorf("settle turn %d: %w", turn, err)
	}

	report := Report{Turn: turn}
	for _, s := range settlements {
		report.Trades += len(s.trades) + len(s.sweep.Transactions)
		report.CanceledBids += len(s.sweep.CanceledBids)
		report.CanceledAsks += len(s.sweep.CanceledAsks)
	}

	if u.cfg.IndexInterval > 0 && turn%u.cfg.IndexInterval == 0 {
		u.Economy.RecomputeIndex()
	}
	report.PriceIndex = u.Economy.PriceIndex()

	u.Clock.Tick()
	return report, nil
}

// Run steps the universe until ctx ends or the configured number of turns
// has been played.
func (u *Universe) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	t.Go(func() error {
		for played := uint64(0); u.cfg.Turns == 0 || played < u.cfg.Turns; played++ {
			select {
			case <-t.Dying():
				return nil
			default:
			}

			report, err := u.Step(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if report.Trades > 0 || report.Turn%100 == 0 {
				log.Info().
					Uint64("turn", report.Turn).
					Int("trades", report.Trades).
					Int("canceled bids", report.CanceledBids).
					Int("canceled asks", report.CanceledAsks).
					Float64("index", report.PriceIndex).
					Msg("turn settled")
			}

			if u.cfg.TurnInterval > 0 {
				select {
				case <-t.Dying():
					return nil
				case <-time.After(u.cfg.TurnInterval):
				}
			}
		}
		return nil
	})

	err := t.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
