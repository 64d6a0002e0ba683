package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"vanir/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRarityPrice(t *testing.T) {
	tests := []struct {
		rarity int
		want   float64
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 8},
		{5, 16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RarityPrice(tt.rarity), "rarity %d", tt.rarity)
	}
}

func TestBasePrice(t *testing.T) {
	table := Default()

	assert.Equal(t, 1.0, table.BasePrice("iron"))
	assert.Equal(t, 4.0, table.BasePrice("titanium"))
	assert.Equal(t, 1000.0, table.BasePrice("frigate"))

	// Unknown items degrade instead of failing.
	assert.Equal(t, MinUnitPrice, table.BasePrice("unobtainium"))

	_, err := table.Lookup("unobtainium")
	assert.ErrorIs(t, err, common.ErrUnknownItem)
}

func TestTargetQuantity(t *testing.T) {
	table := Default()
	assert.Equal(t, 100, table.TargetQuantity("iron"))
	assert.Equal(t, 10, table.TargetQuantity("neutronium"))
	assert.Equal(t, 5, table.TargetQuantity("corvette"))
	assert.Equal(t, 50, table.TargetQuantity("unobtainium"))
	assert.Equal(t, 1, table.Rarity("corvette"))
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	content := `
materials:
  ore: 2
  crystal: 5
ships:
  shuttle: 25.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, table.BasePrice("ore"))
	assert.Equal(t, 16.0, table.BasePrice("crystal"))
	assert.Equal(t, 25.5, table.BasePrice("shuttle"))
	assert.Equal(t, []string{"crystal", "ore", "shuttle"}, table.Items())
	assert.Equal(t, []string{"ore"}, table.MaterialsUpTo(3))
}

func TestLoadTable_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("materials:\n  ore: 9\n"), 0o644))

	_, err := LoadTable(path)
	assert.Error(t, err)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_Names(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"material with colon", Table{Materials: map[string]int{"ore:refined": 1}}},
		{"ship with colon", Table{Ships: map[string]float64{"miner:mk2": 40}}},
		{"empty material", Table{Materials: map[string]int{"": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.table.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
