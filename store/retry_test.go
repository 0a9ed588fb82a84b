package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/assetkit/assetindexer/types"
)

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("syntax error")))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))

	assert.True(t, IsRetryable(driver.ErrBadConn))
	assert.True(t, IsRetryable(fmt.Errorf("put: %w", driver.ErrBadConn)))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "08006"}))
	assert.True(t, IsRetryable(types.NewDatabaseError("put account", &pgconn.PgError{Code: "40001"})))
}
