package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/testutil"
)

func TestUserRepo_CreateAndLogin(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	u := &model.User{Username: " Bob ", Email: "Bob@Example.com", Role: model.RoleCustomer}
	require.NoError(t, repo.Create(ctx, u, "s3cret", bcrypt.MinCost))
	assert.NotZero(t, u.ID)
	assert.Equal(t, "bob", u.Username)

	byName, err := repo.GetByLogin(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.True(t, byName.IsActive)

	byEmail, err := repo.GetByLogin(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	err = repo.Create(ctx, &model.User{Username: "bob", Email: "other@example.com", Role: model.RoleCustomer}, "x", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrUsernameExists)
	err = repo.Create(ctx, &model.User{Username: "robert", Email: "bob@example.com", Role: model.RoleCustomer}, "x", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenRepo_Lifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	uid := testutil.SeedUser(t, db, "carol", model.RoleCustomer)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.Now = func() time.Time { return now }

	require.NoError(t, repo.StoreRefresh(ctx, uid, "fam-1", "hash-a", now.Add(time.Hour)))
	require.NoError(t, repo.StoreRefresh(ctx, uid, "fam-1", "hash-b", now.Add(time.Hour)))
	require.NoError(t, repo.StoreRefresh(ctx, uid, "fam-2", "hash-c", now.Add(time.Hour)))

	gotUser, fam, err := repo.ValidateRefresh(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, uid, gotUser)
	assert.Equal(t, "fam-1", fam)

	require.NoError(t, repo.RevokeByHash(ctx, "hash-a"))
	_, _, err = repo.ValidateRefresh(ctx, "hash-a")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	require.NoError(t, repo.RevokeFamily(ctx, "fam-1"))
	_, _, err = repo.ValidateRefresh(ctx, "hash-b")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
	_, _, err = repo.ValidateRefresh(ctx, "hash-c")
	assert.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, _, err = repo.ValidateRefresh(ctx, "hash-c")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	_, _, err = repo.ValidateRefresh(ctx, "missing")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}
