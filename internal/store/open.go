package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/roster/internal/store/jsonstore"
	"github.com/Makepad-fr/roster/internal/store/memstore"
	"github.com/Makepad-fr/roster/internal/store/sqlitestore"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// SQLiteFileName is the database file created inside the data directory.
const SQLiteFileName = "roster.db"

// Backends lists every backend Open understands.
func Backends() []string {
	return []string{BackendJSON, BackendSQLite, BackendMemory}
}

// Open returns the KV backend named by backend, rooted at dir.
func Open(ctx context.Context, backend, dir string, logger *log.Logger) (KV, error) {
	switch backend {
	case BackendJSON, "":
		return jsonstore.New(dir)
	case BackendSQLite:
		return sqlitestore.Open(ctx, filepath.Join(dir, SQLiteFileName), logger)
	case BackendMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
