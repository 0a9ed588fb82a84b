package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/assetkit/assetindexer/orm"
	"github.com/assetkit/assetindexer/orm/config"
	"github.com/assetkit/assetindexer/types"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		NamingStrategy:  schema.NamingStrategy{SingularTable: true},
		PrepareStmt:     false,
		CreateBatchSize: 100,
		Logger:          logger.Discard,
	}
}

// NewMockDB returns a postgres dialect database backed by sqlmock.
func NewMockDB(t *testing.T) (*orm.Database, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	instance, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), gormConfig())
	require.NoError(t, err)

	return orm.NewDatabase(instance, &config.Config{Driver: config.DriverPostgres, BatchSize: 100}), mock
}

// NewSQLiteDB returns a migrated in-memory sqlite database private to the test.
func NewSQLiteDB(t *testing.T) *orm.Database {
	t.Helper()

	instance, err := gorm.Open(sqlite.Open("file::memory:"), gormConfig())
	require.NoError(t, err)

	sqlDB, err := instance.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, instance.AutoMigrate(types.AllTables()...))

	return orm.NewDatabase(instance, &config.Config{Driver: config.DriverSQLite, BatchSize: 100})
}
