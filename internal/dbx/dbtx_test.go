package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:dbx_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY, v TEXT);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('ok')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('fail')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)

	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestIterate_LazyAndRestartable(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`DELETE FROM t`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t(v) VALUES ('a'), ('b'), ('c')`)
	require.NoError(t, err)

	scan := func(rows Scanner) (string, error) {
		var v string
		err := rows.Scan(&v)
		return v, err
	}
	seq := Iterate(context.Background(), db, scan, `SELECT v FROM t ORDER BY v`)

	var first []string
	for v, err := range seq {
		require.NoError(t, err)
		first = append(first, v)
		if len(first) == 2 {
			break
		}
	}
	require.Equal(t, []string{"a", "b"}, first)

	var all []string
	for v, err := range seq {
		require.NoError(t, err)
		all = append(all, v)
	}
	require.Equal(t, []string{"a", "b", "c"}, all)
}

func TestIterate_QueryErrorIsYielded(t *testing.T) {
	db := setupDB(t)
	scan := func(rows Scanner) (int, error) { return 0, nil }

	var gotErr error
	for _, err := range Iterate(context.Background(), db, scan, `SELECT nope FROM missing_table`) {
		gotErr = err
	}
	require.Error(t, gotErr)
}

func TestMillisRoundTrip(t *testing.T) {
	ts := time.Date(2026, 10, 18, 9, 30, 15, 123_000_000, time.UTC)
	require.Equal(t, ts, FromMillis(Millis(ts)))

	// sub-millisecond precision is dropped
	require.Equal(t, ts, FromMillis(Millis(ts.Add(999*time.Microsecond))))
}

func TestNanosRoundTrip(t *testing.T) {
	ts := time.Date(2026, 10, 18, 9, 30, 15, 123_456_789, time.UTC)
	require.Equal(t, ts, FromNanos(Nanos(ts)))
	require.Less(t, Nanos(ts), Nanos(ts.Add(time.Microsecond)))
}
