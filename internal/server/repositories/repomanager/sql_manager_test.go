package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/repositories/invites"
	"github.com/calebglawson/cecil/internal/server/repositories/roles"
	"github.com/calebglawson/cecil/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var m RepositoryManager = NewSQLRepositoryManager(goose.DialectPostgres)

	var _ users.Repository = m.Users(db)
	var _ invites.Repository = m.Invites(db)
	var _ roles.Repository = m.Roles(db)

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Invites(db))
	assert.NotNil(t, m.Roles(db))
}

func TestRunMigrations_PicksDialectDirectory(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	for _, dialect := range []goose.Dialect{goose.DialectPostgres, goose.DialectSQLite3} {
		var got goose.Dialect
		var files []string
		gooseUp = func(ctx context.Context, d goose.Dialect, db *sql.DB, fsys fs.FS) error {
			got = d
			files, _ = fs.Glob(fsys, "*.sql")
			return nil
		}

		require.NoError(t, NewSQLRepositoryManager(dialect).RunMigrations(context.Background(), nil))
		assert.Equal(t, dialect, got)
		assert.Contains(t, files, "00001_init.sql")
	}
}

func TestRunMigrations_Error(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })
	gooseUp = func(context.Context, goose.Dialect, *sql.DB, fs.FS) error { return errors.New("boom") }

	err := NewSQLRepositoryManager(goose.DialectPostgres).RunMigrations(context.Background(), nil)
	assert.ErrorContains(t, err, "boom")
}

func TestResolveDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		driver  string
		dialect goose.Dialect
		wantErr bool
	}{
		{dsn: "postgres://u:p@localhost:5432/cecil", driver: "pgx", dialect: goose.DialectPostgres},
		{dsn: "postgresql://u:p@localhost/cecil", driver: "pgx", dialect: goose.DialectPostgres},
		{dsn: "file:cecil.db", driver: "sqlite", dialect: goose.DialectSQLite3},
		{dsn: "sqlite://cecil.db", driver: "sqlite", dialect: goose.DialectSQLite3},
		{dsn: "mysql://root@localhost/cecil", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, dialect, _, err := resolveDSN(tt.dsn)
			if tt.wantErr {
				require.Error(t, err)
				assert.NotContains(t, err.Error(), "root@")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dialect, dialect)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	out := sqliteDSN("file:cecil.db")
	path, raw, ok := strings.Cut(out, "?")
	require.True(t, ok)
	assert.Equal(t, "file:cecil.db", path)

	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	assert.Equal(t, "immediate", q.Get("_txlock"))
	assert.ElementsMatch(t, []string{"busy_timeout(5000)", "foreign_keys(1)"}, q["_pragma"])

	out = sqliteDSN("file:x.db?_txlock=deferred&_pragma=busy_timeout(100)")
	_, raw, _ = strings.Cut(out, "?")
	q, err = url.ParseQuery(raw)
	require.NoError(t, err)
	assert.Equal(t, "deferred", q.Get("_txlock"))
	assert.ElementsMatch(t, []string{"busy_timeout(100)", "foreign_keys(1)"}, q["_pragma"])
}

func TestOpen_SQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "cecil.db")

	db, m, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, goose.DialectSQLite3, m.Dialect())

	require.NoError(t, m.RunMigrations(ctx, db))
	// a second run is a no-op
	require.NoError(t, m.RunMigrations(ctx, db))

	seeded, err := m.Roles(db).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", seeded[models.RoleAdmin])
	assert.Len(t, seeded, 3)

	n, err := m.Users(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnsupportedDSN(t *testing.T) {
	_, _, err := Open(context.Background(), "redis://localhost")
	require.Error(t, err)
}
