package orm

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/glebarez/sqlite"
	sloggorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/assetkit/assetindexer/orm/config"
	"github.com/assetkit/assetindexer/orm/plugins"
	"github.com/assetkit/assetindexer/types"
)

type Database struct {
	*gorm.DB
	config *config.Config
}

// NewDatabase wraps an already opened gorm handle.
func NewDatabase(db *gorm.DB, cfg *config.Config) *Database {
	return &Database{DB: db, config: cfg}
}

func dialector(cfg *config.Config) gorm.Dialector {
	if cfg.Driver == config.DriverSQLite {
		return sqlite.Open(cfg.DSN)
	}
	return postgres.Open(cfg.DSN)
}

func OpenDB(cfg *config.Config, logger *slog.Logger) (*Database, error) {
	gormcfg := &gorm.Config{
		NamingStrategy:  schema.NamingStrategy{SingularTable: true},
		PrepareStmt:     cfg.Driver == config.DriverPostgres,
		CreateBatchSize: cfg.BatchSize,
		Logger:          sloggorm.New(sloggorm.WithHandler(logger.Handler())),
	}

	instance, err := gorm.Open(dialector(cfg), gormcfg)
	if err != nil {
		return nil, types.NewDatabaseError("open", err)
	}

	sqlDB, err := instance.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.IdleConns)
	if cfg.Driver == config.DriverSQLite {
		// a single writer connection keeps sqlite from reporting SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}

	if err := instance.Use(plugins.NewMetricsPlugin()); err != nil {
		return nil, err
	}

	return &Database{DB: instance, config: cfg}, nil
}

// Migrate applies the schema when DB_AUTO_MIGRATE is set. Postgres with a
// migration directory goes through atlas, everything else through gorm.
func (d Database) Migrate(ctx context.Context) error {
	if !d.config.AutoMigrate {
		return nil
	}
	return d.ApplySchema(ctx)
}

// ApplySchema applies the schema unconditionally.
func (d Database) ApplySchema(ctx context.Context) error {
	if d.config.Driver == config.DriverPostgres && d.config.MigrationDir != "" {
		return d.migrateAtlas(ctx)
	}
	if err := d.WithContext(ctx).AutoMigrate(types.AllTables()...); err != nil {
		return types.NewDatabaseError("auto migrate", err)
	}
	return nil
}

func (d Database) migrateAtlas(ctx context.Context) error {
	workDir, err := atlasexec.NewWorkingDir(
		atlasexec.WithMigrations(
			os.DirFS(d.config.MigrationDir),
		),
	)
	if err != nil {
		return err
	}
	defer func() { _ = workDir.Close() }()

	client, err := atlasexec.NewClient(workDir.Path(), "atlas")
	if err != nil {
		return err
	}

	if _, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		URL: d.config.DSN,
	}); err != nil {
		return types.NewDatabaseError("migrate apply", err)
	}

	return nil
}

func (d Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d Database) GetBatchSize() int {
	return d.config.BatchSize
}

// GetDBStats returns database connection pool statistics
func (d Database) GetDBStats() (*sql.DBStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, err
	}

	stats := sqlDB.Stats()
	return &stats, nil
}
