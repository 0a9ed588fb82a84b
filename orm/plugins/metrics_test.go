package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTableFromSQL(t *testing.T) {
	cases := map[string]string{
		`SELECT * FROM "asset_balance" WHERE asset = $1`:                  "asset_balance",
		`INSERT INTO "account" ("id") VALUES ($1) ON CONFLICT DO NOTHING`: "account",
		`UPDATE "vault" SET "paused"=$1`:                                  "vault",
		`DELETE FROM "blocked_user" WHERE id = $1`:                        "blocked_user",
		`BEGIN`: "",
	}
	for sql, want := range cases {
		assert.Equal(t, want, extractTableFromSQL(sql), sql)
	}
}
