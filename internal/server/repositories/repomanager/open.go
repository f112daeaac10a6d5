package repomanager

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Open returns the RepositoryManager for backend. For Postgres the embedded
// migrations are applied when migrate is set.
func Open(ctx context.Context, backend, dsn string, migrate bool) (RepositoryManager, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryRepositoryManager(), nil
	case BackendPostgres, "":
		db, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		m := NewPostgresRepositoryManager(db)
		if migrate {
			if err := m.RunMigrations(ctx); err != nil {
				_ = m.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}
