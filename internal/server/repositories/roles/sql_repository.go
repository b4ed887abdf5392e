package roles

import (
	"context"
	"fmt"

	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// List returns the seeded roles keyed by id.
func (r *SQLRepository) List(ctx context.Context) (map[models.Role]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[models.Role]string)
	for rows.Next() {
		var (
			id   models.Role
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
