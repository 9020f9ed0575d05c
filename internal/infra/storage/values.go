package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToRecord converts a JSON-serializable struct into a Record.
func ToRecord(v any) (Record, error) {
	if rec, ok := v.(Record); ok {
		return rec, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	return rec, nil
}

// FromRecord decodes a Record into T.
func FromRecord[T any](rec Record) (T, error) {
	var out T
	data, err := json.Marshal(rec)
	if err != nil {
		return out, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// PutValue stores v in collection.
func PutValue(ctx context.Context, s Store, collection string, v any) error {
	rec, err := ToRecord(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, collection, rec)
}

// GetValue loads the record under key into T.
func GetValue[T any](ctx context.Context, s Store, collection, key string) (T, bool, error) {
	var zero T
	rec, found, err := s.Get(ctx, collection, key)
	if err != nil || !found {
		return zero, false, err
	}
	out, err := FromRecord[T](rec)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// GetAllValues loads every record of collection into a slice of T.
// Records that do not decode are skipped.
func GetAllValues[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	recs, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := FromRecord[T](rec)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
