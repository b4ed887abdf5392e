package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`^SELECT id, name FROM roles ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(0, "deactivated").
			AddRow(1, "admin").
			AddRow(2, "non_privileged"))

	got, err := NewSQLRepository(db).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[models.Role]string{
		models.RoleDeactivated:   "deactivated",
		models.RoleAdmin:         "admin",
		models.RoleNonPrivileged: "non_privileged",
	}, got)
}

func TestList_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("boom"))

	_, err = NewSQLRepository(db).List(context.Background())
	assert.ErrorContains(t, err, "db error: boom")
}
