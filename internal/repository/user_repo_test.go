package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	created, err := s.users.Create(ctx, " sara ", "Sara@Example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "sara", created.Username)
	assert.Equal(t, "sara@example.com", created.Email)

	_, err = s.users.Create(ctx, "sara", "other@example.com", "hash")
	assert.ErrorIs(t, err, ErrIntegrityViolation)

	found, err := s.users.GetByUsername(ctx, "sara")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	missing, err := s.users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
