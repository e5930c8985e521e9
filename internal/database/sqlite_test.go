package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "risk.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTemp(t)

	for _, table := range []string{"incidents", "venues"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, 2, applied)

	// a second run finds nothing pending
	require.NoError(t, NewMigrationManager(db).RunMigrations())
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestLoadMigrationsOrdered(t *testing.T) {
	migrations, err := NewMigrationManager(nil).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_create_incidents", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestTransactionRollsBack(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := Transaction(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO venues (id, name) VALUES ('v1', 'Venue')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM venues").Scan(&n))
	assert.Zero(t, n)

	err = Transaction(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO venues (id, name) VALUES ('v1', 'Venue')")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM venues").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDSNCarriesPragmas(t *testing.T) {
	assert.Equal(t, "file:/tmp/risk.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn("/tmp/risk.db"))
	assert.Equal(t, "file:risk.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn("file:risk.db?mode=rwc"))
}

func TestOpenAppliesPragmasToEveryConnection(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	// hold two connections at once so the pool has to open a second one
	first, err := db.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout, "connection %d", i)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode, "connection %d", i)
	}
}

func TestLoadMigrationsReportsMissingDirectory(t *testing.T) {
	m := &MigrationManager{files: fstest.MapFS{}, dir: "migrations"}
	_, err := m.LoadMigrations()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read migrations")

	m = &MigrationManager{files: fstest.MapFS{
		"migrations/002_second.sql": {Data: []byte("SELECT 2;")},
		"migrations/001_first.sql":  {Data: []byte("SELECT 1;")},
		"migrations/notes.txt":      {Data: []byte("ignored")},
		"migrations/bad_name.sql":   {Data: []byte("SELECT 0;")},
	}, dir: "migrations"}
	migrations, err := m.LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_first", migrations[0].Name)
	assert.Equal(t, "SELECT 2;", migrations[1].SQL)
}
