package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"vanir/internal/building"
	"vanir/internal/config"
	"vanir/internal/journal"
	"vanir/internal/leaderboard"
	"vanir/internal/pricing"
	"vanir/internal/sim"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	envPath := flag.String("env", "", "path to a .env file (defaults to ./.env)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*envPath)
	setupLogging(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("simulation stopped")
		stop()
		os.Exit(1)
	}
}

func setupLogging(cfg config.Log) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func run(ctx context.Context, cfg config.Config) error {
	prices := pricing.Default()
	if cfg.Storage.PriceTablePath != "" {
		table, err := pricing.LoadTable(cfg.Storage.PriceTablePath)
		if err != nil {
			return err
		}
		prices = table
	}

	u := sim.New(sim.Config{
		Market:        cfg.Market,
		Economy:       cfg.Economy,
		IndexInterval: cfg.IndexInterval,
		Turns:         cfg.Sim.Turns,
		TurnInterval:  cfg.Sim.TurnInterval,
		Workers:       cfg.Sim.Workers,
	}, prices)

	// Warm the price index from the journal, then keep journaling.
	if cfg.Storage.JournalPath != "" {
		j, err := journal.Open(cfg.Storage.JournalPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				log.Error().Err(err).Msg("unable to close journal")
			}
		}()

		txs, err := j.LoadAll()
		if err != nil {
			return err
		}
		u.Restore(txs)
		u.Economy.SetSink(j)
		log.Info().
			Int("transactions", len(txs)).
			Uint64("turn", u.Clock.Turn()).
			Str("path", cfg.Storage.JournalPath).
			Msg("journal restored")
	}

	rng := rand.New(rand.NewSource(cfg.Sim.Seed))
	if err := populate(u, cfg.Sim, rng); err != nil {
		return err
	}
	u.Feed = newRandomFeed(rng, cfg.Sim.OrdersPerTurn).next

	log.Info().
		Int("locations", cfg.Sim.Locations).
		Int("players", cfg.Sim.Players).
		Uint64("turns", cfg.Sim.Turns).
		Msg("simulation running")

	if err := u.Run(ctx); err != nil {
		return err
	}
	summarise(u)
	return nil
}

// populate builds the stations and traders. Every trader starts with some
// stock of each material at every station.
func populate(u *sim.Universe, cfg config.Sim, rng *rand.Rand) error {
	for i := range cfg.Locations {
		_, err := u.AddLocation(
			fmt.Sprintf("station-%d", i),
			building.MarketplaceKind,
			building.FactoryKind,
			building.DrydockKind,
		)
		if err != nil {
			return err
		}
	}

	materials := u.Prices.MaterialsUpTo(pricing.MaxRarity)
	for i := range cfg.Players {
		name := fmt.Sprintf("trader-%d", i)
		if err := u.Players.Register(name, cfg.StartingFunds); err != nil {
			return err
		}
		for _, loc := range u.Locations() {
			for _, item := range materials {
				if qty := rng.Intn(u.Prices.TargetQuantity(item) + 1); qty > 0 {
					loc.Storage().AddItem(name, item, uint64(qty))
				}
			}
		}
	}
	return nil
}

func summarise(u *sim.Universe) {
	spending, earning := u.Players.Totals()
	log.Info().
		Uint64("turn", u.Clock.Turn()).
		Uint64("transactions", u.Economy.TotalTransactions()).
		Float64("revenue", u.Economy.TotalRevenue()).
		Float64("index", u.Economy.PriceIndex()).
		Float64("spending", spending).
		Float64("earning", earning).
		Msg("simulation finished")

	for _, kind := range []string{leaderboard.Transaction, leaderboard.Monopoly} {
		for rank, leader := range u.Board.Top(kind, 3) {
			log.Info().
				Str("kind", kind).
				Int("rank", rank+1).
				Str("entity", leader.Entity).
				Float64("score", leader.Score).
				Msg("leader")
		}
	}
}
