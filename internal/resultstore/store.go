// Package resultstore holds the per-visitor state the front end carries
// between pages: the last analysis result, its id, and checkout handoffs.
package resultstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("not found")

// Entry is one key/value pair of a multi-key write.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a key/value store over named keys.
//
// Set writes all entries as one unit: readers observe either none or all of
// them. GetMany reads its keys as one snapshot and returns a slice aligned
// with keys, nil where a key holds no value. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMany(ctx context.Context, keys ...string) ([][]byte, error)
	Set(ctx context.Context, entries ...Entry) error
	Clear(ctx context.Context, keys ...string) error
}
