package store_test

import (
	"context"
	"testing"

	"github.com/safar/go-sql-storefront/internal/database"
	"github.com/safar/go-sql-storefront/internal/pgtest"
	"github.com/safar/go-sql-storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookupUser(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, db.DB, "admin", "hash-value", "admin@example.com", true)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := store.GetUserByUsername(ctx, db.DB, "admin")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash-value", found.PasswordHash)
	assert.True(t, found.IsAdmin)

	_, err = store.GetUserByUsername(ctx, db.DB, "nobody")
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	createUser(t, db, "ann")

	_, err := store.CreateUser(ctx, db.DB, "ann", "other", "other@example.com", false)
	assert.ErrorIs(t, err, database.ErrDuplicate)
	assert.Equal(t, 1, db.Count(t, `"User"`))
}

func TestListUsersOmitsHashes(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()

	createUser(t, db, "ann")
	createUser(t, db, "bob")

	users, err := store.ListUsers(ctx, db.DB)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ann", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}
