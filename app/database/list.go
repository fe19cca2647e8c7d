package database

import (
	"context"
	"encoding/json"
	"fmt"
)

// StorageError is returned when a persisted list cannot be read or written.
type StorageError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SaveList writes items as a single JSON array under key, replacing any
// previous value.
func SaveList[T any](ctx context.Context, kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}

	if err := kv.Put(ctx, key, data); err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}

	return nil
}

// LoadList reads the list stored under key. An absent key yields an empty list.
func LoadList[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	data, found, err := kv.Get(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}

	items := []T{}
	if !found || len(data) == 0 {
		return items, nil
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &StorageError{Op: "load", Key: key, Err: err}
	}
	if items == nil {
		items = []T{}
	}

	return items, nil
}
