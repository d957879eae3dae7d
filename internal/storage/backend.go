package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrStorageQuotaExceeded = errors.New("storage quota exceeded")
	ErrCorruptedStorage     = errors.New("corrupted storage value")
	ErrInvalidKey           = errors.New("invalid storage key")
)

//go:generate mockgen -source=$GOFILE -destination=backend_mocks_test.go -package=storage_test

// Backend is durable byte storage addressed by key. Set replaces the whole
// value and must leave the previous value intact when it fails.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// entrySize is what a key/value pair counts against a quota.
func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
