package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := "-- header\nCREATE TABLE a (x UInt8) ENGINE = Memory;\n\n-- second\nCREATE TABLE b (y String) ENGINE = Memory;\n"
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x UInt8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String) ENGINE = Memory", stmts[1])
}

func TestCheckSplittable(t *testing.T) {
	assert.NoError(t, checkSplittable("SELECT 'it''s';"))
	assert.ErrorIs(t, checkSplittable("SELECT 'a;b';"), errSemicolonInString)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/sizing")
	require.NoError(t, err)
	assert.Equal(t, "sizing", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsAreSplittable(t *testing.T) {
	names, contents, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for i, sql := range contents {
		assert.NoError(t, checkSplittable(sql), names[i])
		assert.NotEmpty(t, splitStatements(sql), names[i])
	}

	pg, err := fs.Glob(PostgresFS, "postgres/*.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, pg)
}
