package database

import (
	"testing"

	"crm-api/internal/auth"
	"crm-api/internal/models"
	"crm-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser_Idempotent(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	require.NoError(t, EnsureAdminUser(db, "admin@example.com", "changeme123"))

	var admin models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).First(&admin).Error)
	require.Equal(t, "admin@example.com", admin.Email)
	require.True(t, auth.CheckPassword(admin.Password, "changeme123"))

	// A second call must not create another admin.
	require.NoError(t, EnsureAdminUser(db, "other@example.com", "whatever"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestEnsureAdminUser_SkipsWhenAdminAlreadyPresent(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.User{
		ID: "u-1", Name: "Existing", Email: "boss@example.com", Password: "x", Role: models.RoleAdmin,
	}).Error)

	require.NoError(t, EnsureAdminUser(db, "admin@example.com", "changeme123"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
