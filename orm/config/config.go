package config

import (
	"errors"
	"fmt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver       string
	DSN          string
	AutoMigrate  bool
	MaxConns     int
	IdleConns    int
	BatchSize    int
	MigrationDir string
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER %q is invalid, must be %s or %s", c.Driver, DriverPostgres, DriverSQLite)
	}
	if c.DSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.MaxConns < 0 {
		return errors.New("DB_MAX_CONNS is invalid")
	}
	if c.IdleConns < 0 {
		return errors.New("DB_IDLE_CONNS is invalid")
	}
	if c.BatchSize < 1 {
		return errors.New("DB_BATCH_SIZE is invalid")
	}
	// no check AutoMigrate
	return nil
}
