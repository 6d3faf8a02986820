package storage

import (
	"context"
	"fmt"
	"log"
)

// Open selects a Storage implementation by driver name.
// Supported drivers: memory, sqlite, postgres, postgrespool.
func Open(ctx context.Context, driver, dsn string, autoMigrate bool) (Storage, error) {
	switch driver {
	case "", "memory":
		log.Printf("storage: using in-memory store (data is not persisted)")
		return NewMemory(), nil
	case "sqlite", "postgres":
		s, err := NewGormStorage(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s storage: %w", driver, err)
		}
		if autoMigrate {
			if err := s.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate %s storage: %w", driver, err)
			}
		}
		log.Printf("storage: using %s via gorm", driver)
		return s, nil
	case "postgrespool":
		s, err := OpenPostgresPool(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres pool: %w", err)
		}
		log.Printf("storage: using postgres via pgxpool")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
