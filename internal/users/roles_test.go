package users

import (
	"testing"

	"marketplace-chat-api/internal/models"
	"marketplace-chat-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestFindUserRole(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{ID: "u1", Username: "alice", Password: "x", Role: models.RoleAdmin}).Error)

	store := NewRoleStore(db)

	role, err := store.FindUserRole("u1")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, role)
}

func TestFindUserRole_UnknownUser(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	store := NewRoleStore(db)

	_, err = store.FindUserRole("nobody")
	require.Error(t, err)
}

func TestFindUserRole_CachesAcrossRoleChange(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{ID: "u1", Username: "alice", Password: "x", Role: models.RoleBuyer}).Error)

	store := NewRoleStore(db)

	role, err := store.FindUserRole("u1")
	require.NoError(t, err)
	require.Equal(t, models.RoleBuyer, role)

	// Change the row; the cached value is served until invalidated
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "u1").Update("role", models.RoleAdmin).Error)

	role, err = store.FindUserRole("u1")
	require.NoError(t, err)
	require.Equal(t, models.RoleBuyer, role)

	store.Invalidate("u1")
	role, err = store.FindUserRole("u1")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, role)
}
