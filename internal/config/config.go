package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"vanir/internal/economy"
	"vanir/internal/engine"

	"github.com/joho/godotenv"
)

type Sim struct {
	Turns         uint64        // 0 runs until stopped
	TurnInterval  time.Duration // pause between turns
	Workers       int           // settlement workers
	Locations     int
	Players       int
	StartingFunds float64
	Seed          int64
	OrdersPerTurn int // orders the random feed submits every turn
}

type Storage struct {
	JournalPath    string // empty disables the journal
	PriceTablePath string // empty uses the built-in table
}

type Log struct {
	Level  string
	Pretty bool
}

type Config struct {
	Market  engine.Config
	Economy economy.Config
	// IndexInterval is how many turns pass between price index updates.
	IndexInterval uint64
	Sim           Sim
	Storage       Storage
	Log           Log
}

func Default() Config {
	return Config{
		Market:        engine.DefaultConfig(),
		Economy:       economy.DefaultConfig(),
		IndexInterval: 10,
		Sim: Sim{
			Workers:       4,
			Locations:     3,
			Players:       10,
			StartingFunds: 10000,
			Seed:          1,
			OrdersPerTurn: 20,
		},
		Log: Log{Level: "info"},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	setFloat("MARKET_BASE_FEE_RATIO", &cfg.Market.BaseFeeRatio)
	setFloat("MARKET_TRADE_FEE_RATIO", &cfg.Market.TradeFeeRatio)
	setUint("MARKET_ORDER_LIFETIME", &cfg.Market.OrderLifetime)

	setUint("ECONOMY_PERIOD", &cfg.Economy.Period)
	setInt("ECONOMY_HISTORY_SIZE", &cfg.Economy.HistorySize)
	setUint("ECONOMY_INDEX_INTERVAL", &cfg.IndexInterval)

	setUint("SIM_TURNS", &cfg.Sim.Turns)
	if ms := os.Getenv("SIM_TURN_INTERVAL_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			cfg.Sim.TurnInterval = time.Duration(v) * time.Millisecond
		}
	}
	setInt("SIM_WORKERS", &cfg.Sim.Workers)
	setInt("SIM_LOCATIONS", &cfg.Sim.Locations)
	setInt("SIM_PLAYERS", &cfg.Sim.Players)
	setFloat("SIM_STARTING_FUNDS", &cfg.Sim.StartingFunds)
	setInt("SIM_ORDERS_PER_TURN", &cfg.Sim.OrdersPerTurn)
	if seed := os.Getenv("SIM_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Sim.Seed = v
		}
	}

	cfg.Storage.JournalPath = getEnv("JOURNAL_PATH", cfg.Storage.JournalPath)
	cfg.Storage.PriceTablePath = getEnv("PRICE_TABLE_PATH", cfg.Storage.PriceTablePath)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	if pretty := os.Getenv("LOG_PRETTY"); pretty != "" {
		cfg.Log.Pretty = pretty == "true"
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Market.BaseFeeRatio < 0 || c.Market.TradeFeeRatio < 0 {
		errs = append(errs, errors.New("fee ratios must not be negative"))
	}
	if c.Market.OrderLifetime == 0 {
		errs = append(errs, errors.New("order lifetime must be positive"))
	}
	if c.Economy.HistorySize <= 0 {
		errs = append(errs, errors.New("history size must be positive"))
	}
	if c.IndexInterval == 0 {
		errs = append(errs, errors.New("index interval must be positive"))
	}
	if c.Sim.Workers <= 0 {
		errs = append(errs, errors.New("at least one worker is required"))
	}
	if c.Sim.Locations <= 0 || c.Sim.Players <= 0 {
		errs = append(errs, errors.New("locations and players must be positive"))
	}
	return errors.Join(errs...)
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setFloat(key string, dst *float64) {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*dst = v
		}
	}
}

func setUint(key string, dst *uint64) {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseUint(s, 10, 64); err == nil {
			*dst = v
		}
	}
}

func setInt(key string, dst *int) {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			*dst = v
		}
	}
}
