package invites

import (
	"context"
	"fmt"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, invite *models.InviteCode) (*models.InviteCode, error) {
	query :=
		`INSERT INTO invite_codes (hashed_code, created_by, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		invite.HashedCode, invite.CreatedBy, invite.CreatedAt.UTC(), invite.ExpiresAt.UTC()).Scan(&invite.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return invite, nil
}

// List returns every stored invite, expired ones included, oldest first.
func (r *SQLRepository) List(ctx context.Context) ([]models.InviteCode, error) {
	query :=
		`SELECT id, hashed_code, created_by, created_at, expires_at
		 FROM invite_codes
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.InviteCode{}
	for rows.Next() {
		var i models.InviteCode
		if err := rows.Scan(&i.ID, &i.HashedCode, &i.CreatedBy, &i.CreatedAt, &i.ExpiresAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		i.CreatedAt = i.CreatedAt.UTC()
		i.ExpiresAt = i.ExpiresAt.UTC()
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Delete removes invite id. It returns common.ErrorNotFound when no row was
// removed, which is also what a concurrent consumer of the same invite sees
// once the winner has committed.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invite_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}

	return nil
}
