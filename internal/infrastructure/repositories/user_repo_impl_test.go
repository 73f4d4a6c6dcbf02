package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "pharmapool.backend/internal/domain/errors"
)

func TestUserRepository_GetByIDAndIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "Ada")
	b := seedUser(t, db, "Bo")

	u, err := repo.GetByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Ada Test", u.FullName())

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	users, err := repo.GetByIDs(ctx, []uuid.UUID{a, b, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
