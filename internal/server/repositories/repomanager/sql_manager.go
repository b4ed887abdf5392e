// Package repomanager opens the credential store, applies its migrations
// (via goose) and vends repositories bound to a connection or transaction.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/server/migrations"
	"github.com/calebglawson/cecil/internal/server/repositories/invites"
	"github.com/calebglawson/cecil/internal/server/repositories/roles"
	"github.com/calebglawson/cecil/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends SQL-backed repositories. The dialect only
// matters for migrations; the repositories share their queries.
type SQLRepositoryManager struct {
	dialect goose.Dialect
}

func NewSQLRepositoryManager(dialect goose.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Dialect() goose.Dialect {
	return m.dialect
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// Invites returns an invites.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Invites(db dbx.DBTX) invites.Repository {
	return invites.NewSQLRepository(db)
}

// Roles returns a roles.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Roles(db dbx.DBTX) roles.Repository {
	return roles.NewSQLRepository(db)
}

// gooseUp is a seam for testing the goose provider.
var gooseUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	dir := migrations.PostgresDir
	if m.dialect == goose.DialectSQLite3 {
		dir = migrations.SQLiteDir
	}

	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return err
	}

	if err := gooseUp(ctx, m.dialect, db, fsys); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Open picks a driver from the DSN scheme, opens and pings the database.
//
//	postgres://… or postgresql://…   pgx
//	file:… or sqlite://…             modernc SQLite
//
// SQLite connections get _txlock=immediate, a busy timeout and foreign keys
// unless the DSN already sets them, so that concurrent writers queue instead
// of failing.
func Open(ctx context.Context, dsn string) (*sql.DB, *SQLRepositoryManager, error) {
	driver, dialect, dsn, err := resolveDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}

	return db, NewSQLRepositoryManager(dialect), nil
}

func resolveDSN(dsn string) (driver string, dialect goose.Dialect, out string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", goose.DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", goose.DialectSQLite3, sqliteDSN("file:" + strings.TrimPrefix(dsn, "sqlite://")), nil
	case strings.HasPrefix(dsn, "file:"):
		return "sqlite", goose.DialectSQLite3, sqliteDSN(dsn), nil
	default:
		return "", "", "", fmt.Errorf("unsupported database dsn %q", redact(dsn))
	}
}

func sqliteDSN(dsn string) string {
	path, rawQuery, _ := strings.Cut(dsn, "?")

	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dsn
	}

	if q.Get("_txlock") == "" {
		q.Set("_txlock", "immediate")
	}

	pragmas := strings.Join(q["_pragma"], ",")
	if !strings.Contains(pragmas, "busy_timeout") {
		q.Add("_pragma", "busy_timeout(5000)")
	}
	if !strings.Contains(pragmas, "foreign_keys") {
		q.Add("_pragma", "foreign_keys(1)")
	}

	return path + "?" + q.Encode()
}

// redact drops everything but the scheme so credentials never reach logs.
func redact(dsn string) string {
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		return scheme + "://…"
	}
	if len(dsn) > 8 {
		return dsn[:8] + "…"
	}
	return dsn
}
