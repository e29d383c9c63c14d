// Package kv provides the key-value persistence primitive the ledger is
// stored in. Every ledger collection lives under one key and is read and
// written as a whole document.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a minimal durable key-value namespace.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
