package sim

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"vanir/internal/building"
	"vanir/internal/common"
	"vanir/internal/economy"
	"vanir/internal/engine"
	"vanir/internal/journal"
	"vanir/internal/leaderboard"
	"vanir/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tomb "gopkg.in/tomb.v2"
)

// --- Setup & Helpers --------------------------------------------------------

func testConfig() Config {
	market := engine.DefaultConfig()
	market.BaseFeeRatio = 0
	market.TradeFeeRatio = 0
	return Config{
		Market:        market,
		Economy:       economy.DefaultConfig(),
		IndexInterval: 1,
		Workers:       2,
	}
}

func newTestUniverse(t *testing.T, locations ...string) *Universe {
	t.Helper()
	u := New(testConfig(), pricing.Default())
	for _, name := range locations {
		_, err := u.AddLocation(name, building.MarketplaceKind, building.FactoryKind)
		require.NoError(t, err)
	}
	require.NoError(t, u.Players.Register("alice", 1000))
	require.NoError(t, u.Players.Register("bob", 0))
	return u
}

// crossingFeed places one crossing pair of orders for iron at every
// location on the first turn.
func crossingFeed(t *testing.T) Feed {
	return func(ctx context.Context, u *Universe, turn uint64) {
		if turn != 1 {
			return
		}
		for _, loc := range u.Locations() {
			loc.Storage().AddItem("bob", "iron", 10)
			eng := loc.Marketplace().Engine()
			_, err := eng.PlaceAsk(common.AskOrder{Seller: "bob", ItemType: "iron", Quantity: 10, MinPrice: 1, BuyoutPrice: 2})
			require.NoError(t, err)
			_, err = eng.PlaceBid(common.BidOrder{Buyer: "alice", ItemType: "iron", Quantity: 10, Price: 3})
			require.NoError(t, err)
		}
	}
}

// --- Tests ------------------------------------------------------------------

func TestAddLocation(t *testing.T) {
	u := newTestUniverse(t, "mars", "earth")

	_, err := u.AddLocation("earth")
	assert.Error(t, err)

	locs := u.Locations()
	require.Len(t, locs, 2)
	assert.Equal(t, "earth", locs[0].Name())
	assert.NotNil(t, locs[0].Marketplace())
	assert.NotNil(t, locs[0].Factory())
	assert.Nil(t, locs[0].Drydock())

	bare, err := u.AddLocation("belt")
	require.NoError(t, err)
	assert.Nil(t, bare.Marketplace())
	assert.Empty(t, bare.Investables())
}

func TestStep(t *testing.T) {
	u := newTestUniverse(t, "earth", "mars")
	u.Feed = crossingFeed(t)

	report, err := u.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), report.Turn)
	assert.Equal(t, 2, report.Trades)
	assert.Equal(t, uint64(2), u.Clock.Turn())
	assert.Equal(t, uint64(2), u.Economy.TotalTransactions())
	// iron has base price 1 and traded at 2.
	assert.InDelta(t, 2, report.PriceIndex, 1e-9)

	assert.Equal(t, 1000-40.0, u.Players.Balance("alice"))
	assert.Equal(t, 40.0, u.Players.Balance("bob"))
	for _, loc := range u.Locations() {
		assert.Equal(t, uint64(10), loc.Storage().GetItem("alice", "iron"))
	}
	assert.Equal(t, 2.0, u.Board.Score("alice", leaderboard.Transaction))

	bob, _ := u.Players.Get("bob")
	assert.Equal(t, 40.0, bob.TurnEarning)

	// Nothing trades on the next turn, so the sale proceeds do not carry over.
	_, err = u.Step(context.Background())
	require.NoError(t, err)
	bob, _ = u.Players.Get("bob")
	assert.Zero(t, bob.TurnEarning)
	assert.Equal(t, 40.0, bob.Wallet)
}

func TestStep_ExpirySweep(t *testing.T) {
	u := newTestUniverse(t, "earth")
	loc, _ := u.Location("earth")

	_, err := loc.Marketplace().Engine().PlaceBid(common.BidOrder{Buyer: "alice", ItemType: "iron", Quantity: 5, Price: 2, ExpiryTurn: 2})
	require.NoError(t, err)

	report, err := u.Step(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.CanceledBids)

	report, err = u.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.CanceledBids)
	assert.Equal(t, 1000.0, u.Players.Balance("alice"))
}

func TestAttack(t *testing.T) {
	u := newTestUniverse(t, "earth")
	require.NoError(t, u.Players.Register("carol", 10000))
	loc, _ := u.Location("earth")
	require.NoError(t, loc.Factory().Invest("carol", 5000))

	destroyed, err := u.Attack("bob", "earth", building.FactoryKind, 10)
	require.NoError(t, err)
	assert.False(t, destroyed)

	destroyed, err = u.Attack("bob", "earth", building.FactoryKind, building.DefaultHull)
	require.NoError(t, err)
	assert.True(t, destroyed)
	assert.Equal(t, float64(DestroyScore), u.Board.Score("bob", leaderboard.Destroy))
	assert.Zero(t, loc.Factory().Ledger().Investment())
	// The monopoly gained on investing is lost again.
	assert.Zero(t, u.Board.Score("carol", leaderboard.Monopoly))

	_, err = u.Attack("bob", "earth", building.DrydockKind, 10)
	assert.Error(t, err)
	_, err = u.Attack("bob", "pluto", building.FactoryKind, 10)
	assert.Error(t, err)
}

func TestRestore_ResumesClock(t *testing.T) {
	dir := t.TempDir()
	j, err := journal.Open(dir)
	require.NoError(t, err)
	require.NoError(t, j.SaveTransaction(common.Transaction{ID: "old", ItemType: "iron", Quantity: 1, Price: 9, Turn: 9000}))
	require.NoError(t, j.Close())

	// Restart.
	j, err = journal.Open(dir)
	require.NoError(t, err)
	txs, err := j.LoadAll()
	require.NoError(t, err)

	u := newTestUniverse(t)
	u.Restore(txs)
	u.Economy.SetSink(j)
	assert.Equal(t, uint64(9001), u.Clock.Turn())
	assert.InDelta(t, 9, u.Economy.PriceIndex(), 1e-9)

	u.Economy.PushTransaction(common.Transaction{ID: "new", ItemType: "iron", Quantity: 1, Price: 2, Turn: u.Clock.Turn()})

	recent, err := j.LoadRecent("iron", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].ID)

	// Once the old run falls out of the window only the new trade counts.
	u.Clock.Resume(9001 + economy.DefaultPeriod)
	assert.InDelta(t, 2, u.Economy.RecomputeIndex(), 1e-9)
	require.NoError(t, j.Close())

	// The next restart replays both runs in turn order.
	j, err = journal.Open(dir)
	require.NoError(t, err)
	defer j.Close()
	txs, err = j.LoadAll()
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, []string{"old", "new"}, []string{txs[0].ID, txs[1].ID})
}

func TestRestore_Empty(t *testing.T) {
	u := newTestUniverse(t)
	u.Restore(nil)
	assert.Equal(t, uint64(1), u.Clock.Turn())
	assert.Equal(t, 1.0, u.Economy.PriceIndex())
}

func TestRun(t *testing.T) {
	cfg := testConfig()
	cfg.Turns = 5
	u := New(cfg, pricing.Default())
	_, err := u.AddLocation("earth", building.MarketplaceKind)
	require.NoError(t, err)

	var fed atomic.Int32
	u.Feed = func(ctx context.Context, u *Universe, turn uint64) { fed.Add(1) }

	require.NoError(t, u.Run(context.Background()))
	assert.Equal(t, int32(5), fed.Load())
	assert.Equal(t, uint64(6), u.Clock.Turn())
}

func TestRun_Canceled(t *testing.T) {
	u := newTestUniverse(t, "earth")
	ctx, cancel := context.WithCancel(context.Background())

	u.Feed = func(_ context.Context, u *Universe, turn uint64) {
		if turn == 3 {
			cancel()
		}
	}

	require.NoError(t, u.Run(ctx))
	assert.GreaterOrEqual(t, u.Clock.Turn(), uint64(3))
}

func TestWorkerPool(t *testing.T) {
	var worked atomic.Int32
	pool := NewWorkerPool(3, func(t *tomb.Tomb, task any) error {
		worked.Add(int32(task.(int)))
		return nil
	})

	tasks := []any{1, 2, 3, 4, 5}
	require.NoError(t, pool.Process(new(tomb.Tomb), tasks))
	assert.Equal(t, int32(15), worked.Load())

	// An empty batch still returns.
	require.NoError(t, pool.Process(new(tomb.Tomb), nil))
}

func TestWorkerPool_Failure(t *testing.T) {
	boom := errors.New("boom")
	pool := NewWorkerPool(2, func(t *tomb.Tomb, task any) error {
		if task.(int) == 3 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, pool.Process(new(tomb.Tomb), []any{1, 2, 3, 4}), boom)
}
