package storage

import "fmt"

// NewStore selects the run-archive backend. An empty kind means the
// in-memory store; the sqlite backend additionally needs the sqlite build
// tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown run-archive backend %q", kind)
	}
}

// CloseIfSupported releases backends holding external resources. The
// in-memory store has nothing to close.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
