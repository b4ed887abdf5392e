package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/server/models"
)

// SQLRepository works against PostgreSQL (pgx) and SQLite (modernc); the
// queries stick to the dialect both accept.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

const selectUser = `SELECT id, username, password_hash, role, invited_by, created_at, last_login FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.InternalUser, error) {
	var (
		u         models.InternalUser
		invitedBy sql.NullInt64
		lastLogin sql.NullTime
	)

	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &invitedBy, &u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}

	if invitedBy.Valid {
		u.InvitedBy = &invitedBy.Int64
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		u.LastLogin = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()

	return &u, nil
}

func (r *SQLRepository) Create(ctx context.Context, user *models.InternalUser) (*models.InternalUser, error) {
	query :=
		`INSERT INTO users (username, password_hash, role, invited_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	var invitedBy sql.NullInt64
	if user.InvitedBy != nil {
		invitedBy = sql.NullInt64{Int64: *user.InvitedBy, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, int(user.Role), invitedBy, user.CreatedAt.UTC()).Scan(&user.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.InternalUser, error) {
	return r.getOne(ctx, selectUser+` WHERE username = $1`, username)
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.InternalUser, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg any) (*models.InternalUser, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.InternalUser, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.InternalUser{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updateOne(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

// UpdateRole sets the role of user id. Setting the role a user already has
// succeeds.
func (r *SQLRepository) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	return r.updateOne(ctx, `UPDATE users SET role = $1 WHERE id = $2`, int(role), id)
}

func (r *SQLRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.updateOne(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), id)
}

func (r *SQLRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
