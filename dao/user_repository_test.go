package dao

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collab-backend/model"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE email = \?`).WithArgs("mia@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "avatar_url", "created_at"}).
			AddRow("u1", "Mia", "mia@example.com", "influencer", "", now))
	mock.ExpectQuery(`FROM users WHERE email = \?`).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	repo := NewUserRepository(db)
	u, err := repo.GetByEmail(context.Background(), "mia@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleInfluencer, u.Role)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
