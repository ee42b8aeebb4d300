package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/carereminder/internal/model"
)

// Open returns the adapter selected by cfg.Backend along with a function
// that releases it.
func Open(cfg model.StorageConfig) (Adapter, func() error, error) {
	switch cfg.Backend {
	case model.StorageKeyring:
		k, err := OpenKeyring(cfg.KeyringDir)
		if err != nil {
			return nil, nil, err
		}
		return k, func() error { return nil }, nil

	case model.StorageSQLite, "":
		if cfg.Path != ":memory:" {
			dir := filepath.Dir(cfg.Path)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
			}
		}
		s, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
