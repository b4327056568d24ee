package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	coreerrors "github.com/lueurxax/kenter-news-bot/internal/core/errors"
)

// GetSetting decodes the JSON value stored under key into target.
// It returns coreerrors.ErrNotFound when the key is absent.
func (db *DB) GetSetting(ctx context.Context, key string, target interface{}) error {
	var raw []byte

	if err := db.Pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("setting %q: %w", key, coreerrors.ErrNotFound)
		}

		return fmt.Errorf("get setting: %w", err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode setting %q: %w", key, err)
	}

	return nil
}

// SaveSetting stores value as JSON under key.
func (db *DB) SaveSetting(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}

	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, raw); err != nil {
		return fmt.Errorf("save setting: %w", err)
	}

	return nil
}

// DeleteSetting removes key.
func (db *DB) DeleteSetting(ctx context.Context, key string) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}

	return nil
}
