package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogAchievement(t *testing.T) {
	b := New()
	b.LogAchievement("alice", Monopoly, 1000, false)
	b.LogAchievement("alice", Monopoly, -1000, false)
	b.LogAchievement("bob", Monopoly, 1000, false)

	assert.Equal(t, 0.0, b.Score("alice", Monopoly))
	assert.Equal(t, 1000.0, b.Score("bob", Monopoly))
	assert.Equal(t, 0.0, b.Score("carol", Monopoly))

	b.LogAchievement("bob", Monopoly, 5, true)
	assert.Equal(t, 5.0, b.Score("bob", Monopoly))
}

func TestTop(t *testing.T) {
	b := New()
	b.LogAchievement("carol", Transaction, 3, false)
	b.LogAchievement("alice", Transaction, 7, false)
	b.LogAchievement("bob", Transaction, 7, false)

	assert.Equal(t, []Leader{
		{Entity: "alice", Score: 7},
		{Entity: "bob", Score: 7},
	}, b.Top(Transaction, 2))
	assert.Len(t, b.Top(Transaction, 10), 3)
	assert.Empty(t, b.Top(Destroy, 10))
}
