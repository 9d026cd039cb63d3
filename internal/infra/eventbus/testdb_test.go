package eventbus

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const sqliteOutboxSchema = `CREATE TABLE outbox_messages (
	uuid         TEXT PRIMARY KEY,
	event_name   TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload      BLOB NOT NULL,
	metadata     TEXT NOT NULL DEFAULT '{}',
	created_at   TIMESTAMP NOT NULL
)`

var dbCounter atomic.Int64

// openOutboxDB returns an isolated in-memory SQLite database with the outbox table.
func openOutboxDB(t *testing.T) (*sql.DB, *goqu.Database) {
	t.Helper()

	dsn := fmt.Sprintf("file:outbox%d?mode=memory&cache=shared", dbCounter.Add(1))
	sqlDB, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	_, err = sqlDB.Exec(sqliteOutboxSchema)
	require.NoError(t, err)

	return sqlDB, goqu.New("sqlite3", sqlDB)
}

func countOutbox(t *testing.T, db *goqu.Database) int64 {
	t.Helper()
	n, err := db.From(OutboxTable).Count()
	require.NoError(t, err)
	return n
}
