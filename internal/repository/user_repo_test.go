package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minigolfeveryday/mged-site/internal/common"
)

func TestUserRepositoryFindByUsername(t *testing.T) {
	db := setupTestDB(t)
	user := seedAuthor(t, db)
	repo := NewUserRepository(db)

	found, err := repo.FindByUsername("mike")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByUsername("nobody")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestUserRepositoryRecordFailedLogin(t *testing.T) {
	db := setupTestDB(t)
	user := seedAuthor(t, db)
	repo := NewUserRepository(db)

	require.NoError(t, repo.RecordFailedLogin(user.ID, nil))
	require.NoError(t, repo.RecordFailedLogin(user.ID, nil))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.LoginAttempts)
	assert.Nil(t, found.LockedUntil)

	until := time.Now().Add(30 * time.Minute)
	require.NoError(t, repo.RecordFailedLogin(user.ID, &until))

	found, err = repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.LoginAttempts)
	require.NotNil(t, found.LockedUntil)
	assert.True(t, found.IsLocked())
}

func TestUserRepositoryResetLoginAttempts(t *testing.T) {
	db := setupTestDB(t)
	user := seedAuthor(t, db)
	repo := NewUserRepository(db)

	until := time.Now().Add(30 * time.Minute)
	require.NoError(t, repo.RecordFailedLogin(user.ID, &until))
	require.NoError(t, repo.ResetLoginAttempts(user.ID))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.LoginAttempts)
	assert.Nil(t, found.LockedUntil)
	assert.False(t, found.IsLocked())
}
