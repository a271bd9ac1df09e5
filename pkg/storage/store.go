package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/device"
)

// Credentials returns a Store backed by this database. Records loaded
// through one Store are written by that Store's Save.
func (db *DB) Credentials() Store {
	return &credentialStore{db: db, loaded: make(map[string]*Settings)}
}

type credentialStore struct {
	db *DB

	mu     sync.Mutex
	loaded map[string]*Settings
}

func (s *credentialStore) Settings(ctx context.Context, cfg device.Config) (*Settings, error) {
	key := deviceKey(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if settings, ok := s.loaded[key]; ok {
		return settings, nil
	}

	// Records may have been written under another identifier of the device.
	ids := append([]string{key}, cfg.AllIdentifiers...)
	for _, id := range ids {
		if id == "" {
			continue
		}
		settings, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if settings != nil {
			s.loaded[key] = settings
			return settings, nil
		}
	}

	settings := NewSettings(key)
	s.loaded[key] = settings
	return settings, nil
}

func (s *credentialStore) load(ctx context.Context, id string) (*Settings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT protocol, credentials, password
		FROM device_settings WHERE device_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	var settings *Settings
	for rows.Next() {
		var protocol string
		var ps ProtocolSettings
		if err := rows.Scan(&protocol, &ps.Credentials, &ps.Password); err != nil {
			return nil, err
		}
		if settings == nil {
			settings = NewSettings(id)
		}
		settings.Set(device.Protocol(protocol), ps)
	}
	return settings, rows.Err()
}

func (s *credentialStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		for _, settings := range s.loaded {
			for p, ps := range settings.protocols {
				if ps.Empty() {
					if _, err := tx.ExecContext(ctx, `
						DELETE FROM device_settings WHERE device_id = ? AND protocol = ?
					`, settings.DeviceID, string(p)); err != nil {
						return fmt.Errorf("failed to delete settings: %w", err)
					}
					continue
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO device_settings (device_id, protocol, credentials, password, updated_at)
					VALUES (?, ?, ?, ?, datetime('now'))
					ON CONFLICT (device_id, protocol) DO UPDATE SET
						credentials = excluded.credentials,
						password = excluded.password,
						updated_at = excluded.updated_at
				`, settings.DeviceID, string(p), ps.Credentials, ps.Password); err != nil {
					return fmt.Errorf("failed to save settings: %w", err)
				}
			}
			log.Debug().Str("identifier", settings.DeviceID).Msg("Device settings saved")
		}
		return nil
	})
}
