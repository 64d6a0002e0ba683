package leaderboard

import (
	"sort"
	"sync"
)

// Achievement kinds logged by the core.
const (
	Monopoly    = "monopoly"
	Transaction = "transaction"
	Destroy     = "destroy"
)

type Leader struct {
	Entity string
	Score  float64
}

// Board accumulates achievement scores per kind and entity.
type Board struct {
	mu           sync.RWMutex
	achievements map[string]map[string]float64
}

func New() *Board {
	return &Board{
		achievements: make(map[string]map[string]float64),
	}
}

// LogAchievement adds delta to the entity's score, or replaces the score
// when overwrite is set.
func (b *Board) LogAchievement(entity, kind string, delta float64, overwrite bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	scores, ok := b.achievements[kind]
	if !ok {
		scores = make(map[string]float64)
		b.achievements[kind] = scores
	}
	if overwrite {
		scores[entity] = delta
	} else {
		scores[entity] += delta
	}
}

func (b *Board) Score(entity, kind string) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.achievements[kind][entity]
}

// Top returns the n highest scores for kind. Ties are broken by name.
func (b *Board) Top(kind string, n int) []Leader {
	b.mu.RLock()
	defer b.mu.RUnlock()

	scores := b.achievements[kind]
	leaders := make([]Leader, 0, len(scores))
	for entity, score := range scores {
		leaders = append(leaders, Leader{Entity: entity, Score: score})
	}
	sort.Slice(leaders, func(i, j int) bool {
		if leaders[i].Score == leaders[j].Score {
			return leaders[i].Entity < leaders[j].Entity
		}
		return leaders[i].Score > leaders[j].Score
	})
	if n >= 0 && len(leaders) > n {
		leaders = leaders[:n]
	}
	return leaders
}
