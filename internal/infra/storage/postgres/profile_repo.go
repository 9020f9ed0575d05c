package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	getProfileSQL    = `SELECT doc FROM user_profiles WHERE uid = $1`
	upsertProfileSQL = `INSERT INTO user_profiles (uid, doc, created_at, updated_at) VALUES ($1, $2::jsonb, now(), now()) ON CONFLICT (uid) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`
	deleteProfileSQL = `DELETE FROM user_profiles WHERE uid = $1`
)

// ProfileRepo stores user profile documents.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new PostgreSQL profile repository.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetDoc retrieves a profile document. found is false when the profile doesn't exist.
func (r *ProfileRepo) GetDoc(ctx context.Context, uid string) (map[string]any, bool, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw, getProfileSQL, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get profile: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode profile: %w", err)
	}
	return doc, true, nil
}

// PutDoc creates or replaces a profile document.
func (r *ProfileRepo) PutDoc(ctx context.Context, uid string, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertProfileSQL, uid, string(data)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// DeleteDoc removes a profile document.
func (r *ProfileRepo) DeleteDoc(ctx context.Context, uid string) error {
	if _, err := r.db.ExecContext(ctx, deleteProfileSQL, uid); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
