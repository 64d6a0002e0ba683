package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vanir/internal/common"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog/log"
)

// ErrInvalidItem is returned for item types that would break the key layout.
var ErrInvalidItem = errors.New("item type must be non-empty and free of ':'")

// keys: tx:<item>:<8-byte-turn>:<id>
const prefixTx = "tx:"

func txPrefix(item string) []byte { return []byte(prefixTx + item + ":") }

func txKey(tx common.Transaction) []byte {
	key := txPrefix(tx.ItemType)
	key = binary.BigEndian.AppendUint64(key, tx.Turn)
	key = append(key, ':')
	return append(key, tx.ID...)
}

// validItem keeps one item's prefix from matching another item's keys.
func validItem(item string) bool {
	return item != "" && !strings.Contains(item, ":")
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}

// Journal is a durable log of settled transactions, ordered by item type
// and turn.
type Journal struct {
	db *pebble.DB
}

func Open(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{Logger: newPebbleLogger(log.Logger)})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// SaveTransaction persists a transaction.
func (j *Journal) SaveTransaction(tx common.Transaction) error {
	if !validItem(tx.ItemType) {
		return fmt.Errorf("%w: %q", ErrInvalidItem, tx.ItemType)
	}
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if err := j.db.Set(txKey(tx), data, pebble.NoSync); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// LoadRecent loads up to limit transactions of an item, newest first.
func (j *Journal) LoadRecent(item string, limit int) ([]common.Transaction, error) {
	if !validItem(item) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidItem, item)
	}
	prefix := txPrefix(item)
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", item, err)
	}
	defer iter.Close()

	var txs []common.Transaction
	for iter.Last(); iter.Valid() && len(txs) < limit; iter.Prev() {
		var tx common.Transaction
		if err := json.Unmarshal(iter.Value(), &tx); err != nil {
			continue // Skip invalid entries
		}
		txs = append(txs, tx)
	}
	return txs, iter.Error()
}

// LoadAll loads every transaction, grouped by item type and oldest first
// within an item.
func (j *Journal) LoadAll() ([]common.Transaction, error) {
	prefix := []byte(prefixTx)
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal: %w", err)
	}
	defer iter.Close()

	var txs []common.Transaction
	for iter.First(); iter.Valid(); iter.Next() {
		var tx common.Transaction
		if err := json.Unmarshal(iter.Value(), &tx); err != nil {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, iter.Error()
}
