// Package load persists storm aggregates into a SpatiaLite database and
// validates the result.
package load

import (
	"database/sql"
	"fmt"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// connectionPragmas are applied to every new connection: enforced foreign
// keys, write-ahead logging, balanced durability, 2MB page cache.
var connectionPragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = -2000",
}

var (
	driversMu sync.Mutex
	drivers   = map[string]string{} // spatialite library path -> registered driver name
)

// driverFor registers (once per extension path) a sqlite3 driver that loads
// the SpatiaLite extension and applies the connection PRAGMAs. database/sql
// forbids re-registering a name, hence the registry.
func driverFor(spatialitePath string) string {
	driversMu.Lock()
	defer driversMu.Unlock()

	if name, ok := drivers[spatialitePath]; ok {
		return name
	}
	name := fmt.Sprintf("spatialite_%d", len(drivers))
	sql.Register(name, &sqlite3.SQLiteDriver{
		Extensions: []string{spatialitePath},
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, pragma := range connectionPragmas {
				if _, err := conn.Exec(pragma, nil); err != nil {
					return fmt.Errorf("apply %q: %w", pragma, err)
				}
			}
			return nil
		},
	})
	drivers[spatialitePath] = name
	return name
}

// Open opens the database at path with the SpatiaLite extension loaded. The
// pool is bounded for readers; the write path assumes a single writer inside
// one transaction.
func Open(path, spatialitePath string, poolSize int) (*sql.DB, error) {
	db, err := sql.Open(driverFor(spatialitePath), path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(poolSize)

	// Force a real connection now so extension-loading failures surface
	// here rather than on the first query.
	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("connect to %s: %w", path, err)
	}
	return db, nil
}
