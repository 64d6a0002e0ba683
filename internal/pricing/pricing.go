package pricing

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"vanir/internal/common"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	// MinUnitPrice is returned for item types that are not in the table.
	MinUnitPrice = 0.01

	MinRarity = 1
	MaxRarity = 5

	defaultTargetQuantity = 50
	shipTargetQuantity    = 5
)

// Rarity tiers 1..5 map to how many units a marketplace aims to hold.
var rarityTargetQuantity = map[int]int{
	1: 100, // Common
	2: 75,  // Uncommon
	3: 50,  // Rare
	4: 25,  // Epic
	5: 10,  // Legendary
}

// Table is the static price reference: materials priced by rarity, ship
// classes priced directly.
type Table struct {
	Materials map[string]int     `yaml:"materials"` // name -> rarity
	Ships     map[string]float64 `yaml:"ships"`     // class -> base price
}

// Default returns the built-in table.
func Default() *Table {
	return &Table{
		Materials: map[string]int{
			"carbon":     1,
			"iron":       1,
			"silicon":    1,
			"copper":     2,
			"nickel":     2,
			"titanium":   3,
			"platinum":   3,
			"iridium":    4,
			"neutronium": 5,
		},
		Ships: map[string]float64{
			"explorer":  10,
			"miner":     40,
			"courier":   60,
			"corvette":  120,
			"extractor": 400,
			"frigate":   1000,
			"destroyer": 5000,
		},
	}
}

// LoadTable reads a YAML price table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse price table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid price table: %w", err)
	}
	return &t, nil
}

// Validate checks rarities and prices. Names may not contain ':', which
// separates fields in journal keys.
func (t *Table) Validate() error {
	for name := range t.Materials {
		if name == "" || strings.Contains(name, ":") {
			return fmt.Errorf("invalid material name %q", name)
		}
	}
	for class := range t.Ships {
		if class == "" || strings.Contains(class, ":") {
			return fmt.Errorf("invalid ship class %q", class)
		}
	}
	for name, rarity := range t.Materials {
		if rarity < MinRarity || rarity > MaxRarity {
			return fmt.Errorf("material %s: rarity %d out of range", name, rarity)
		}
		if _, ok := t.Ships[name]; ok {
			return fmt.Errorf("%s listed as both material and ship", name)
		}
	}
	for class, price := range t.Ships {
		if price <= 0 {
			return fmt.Errorf("ship %s: base price must be positive", class)
		}
	}
	return nil
}

// RarityPrice is the base price of a material of the given rarity.
func RarityPrice(rarity int) float64 {
	return math.Pow(2, float64(max(rarity-1, 0)))
}

// Lookup resolves the base price of an item type.
func (t *Table) Lookup(item string) (float64, error) {
	if rarity, ok := t.Materials[item]; ok {
		return RarityPrice(rarity), nil
	}
	if price, ok := t.Ships[item]; ok {
		return price, nil
	}
	return 0, fmt.Errorf("%w: %s", common.ErrUnknownItem, item)
}

// BasePrice never fails: unknown items degrade to MinUnitPrice.
func (t *Table) BasePrice(item string) float64 {
	price, err := t.Lookup(item)
	if err != nil {
		log.Error().Str("item", item).Msg("missing price info")
		return MinUnitPrice
	}
	return price
}

// Rarity of a material, 1 for anything else.
func (t *Table) Rarity(item string) int {
	if rarity, ok := t.Materials[item]; ok {
		return rarity
	}
	return MinRarity
}

func (t *Table) IsShip(item string) bool {
	_, ok := t.Ships[item]
	return ok
}

// TargetQuantity is the stock level a marketplace aims to hold for an item.
func (t *Table) TargetQuantity(item string) int {
	if rarity, ok := t.Materials[item]; ok {
		if q, ok := rarityTargetQuantity[rarity]; ok {
			return q
		}
		return defaultTargetQuantity
	}
	if t.IsShip(item) {
		return shipTargetQuantity
	}
	return defaultTargetQuantity
}

// Items lists every known item type, sorted.
func (t *Table) Items() []string {
	items := make([]string, 0, len(t.Materials)+len(t.Ships))
	for name := range t.Materials {
		items = append(items, name)
	}
	for class := range t.Ships {
		items = append(items, class)
	}
	sort.Strings(items)
	return items
}

// MaterialsUpTo lists materials up to and including maxRarity, sorted.
func (t *Table) MaterialsUpTo(maxRarity int) []string {
	var items []string
	for name, rarity := range t.Materials {
		if rarity <= maxRarity {
			items = append(items, name)
		}
	}
	sort.Strings(items)
	return items
}
