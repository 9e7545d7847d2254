// Package store defines the key-value port the roster is persisted through
// and the snapshot codec for the record list kept under StudentsKey.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Makepad-fr/roster/internal/model"
)

// StudentsKey is the fixed key the record list is stored under.
const StudentsKey = "students"

// KV is a byte-oriented key-value store scoped to one user.
// Get reports found=false, with a nil error, for a key never written.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Encode serializes records as the JSON array stored under StudentsKey.
func Encode(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses a stored value. Empty input and JSON null decode to an
// empty list. Records stored without an id, or with an id already used
// by an earlier record, get a fresh one.
func Decode(b []byte) ([]model.Record, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return []model.Record{}, nil
	}
	var records []model.Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if records == nil {
		return []model.Record{}, nil
	}
	seen := make(map[string]bool, len(records))
	for i := range records {
		if records[i].ID == "" || seen[records[i].ID] {
			records[i].ID = model.NewID()
		}
		seen[records[i].ID] = true
	}
	return records, nil
}

// LoadRecords reads the record list; an absent key is an empty list.
func LoadRecords(ctx context.Context, kv KV) ([]model.Record, error) {
	b, found, err := kv.Get(ctx, StudentsKey)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", StudentsKey, err)
	}
	if !found {
		return []model.Record{}, nil
	}
	return Decode(b)
}

// SaveRecords replaces the stored record list with records.
func SaveRecords(ctx context.Context, kv KV, records []model.Record) error {
	b, err := Encode(records)
	if err != nil {
		return err
	}
	if err := kv.Set(ctx, StudentsKey, b); err != nil {
		return fmt.Errorf("set %s: %w", StudentsKey, err)
	}
	return nil
}
