package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddRemove(t *testing.T) {
	w := New("earth")
	w.AddItem("alice", "iron", 10)
	w.AddItem("alice", "iron", 5)
	assert.Equal(t, uint64(15), w.GetItem("alice", "iron"))

	assert.True(t, w.RemoveItem("alice", "iron", 15))
	assert.Equal(t, uint64(0), w.GetItem("alice", "iron"))
	assert.Empty(t, w.Inventory("alice"))
}

func TestRemoveInsufficient(t *testing.T) {
	w := New("earth")
	w.AddItem("alice", "iron", 3)

	assert.False(t, w.RemoveItem("alice", "iron", 4))
	assert.False(t, w.RemoveItem("bob", "iron", 1))
	assert.Equal(t, map[string]uint64{"iron": 3}, w.Inventory("alice"))
}
