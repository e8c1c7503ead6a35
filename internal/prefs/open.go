package prefs

import (
	"context"
	"fmt"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the store for driver. dsn is a file path for sqlite and a
// connection string for postgres; memory ignores it.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemStore(), nil
	case DriverSQLite:
		st, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case DriverPostgres:
		st, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown prefs driver %q", driver)
	}
}
