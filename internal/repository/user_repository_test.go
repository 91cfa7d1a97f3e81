package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukimura/org-identity-api/internal/models"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.OrganizationProjection{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func TestUserRepository_EnsureByAuthID_CreatesOnFirstSight(t *testing.T) {
	repo := NewUserRepository(setupRepoDB(t))

	user, err := repo.EnsureByAuthID("user-1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "user-1", user.AuthUserID)
	require.Nil(t, user.ActiveOrganizationID)
}

func TestUserRepository_EnsureByAuthID_IsIdempotent(t *testing.T) {
	repo := NewUserRepository(setupRepoDB(t))

	first, err := repo.EnsureByAuthID("user-1")
	require.NoError(t, err)

	second, err := repo.EnsureByAuthID("user-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestUserRepository_SetActiveOrganization(t *testing.T) {
	repo := NewUserRepository(setupRepoDB(t))

	_, err := repo.EnsureByAuthID("user-1")
	require.NoError(t, err)

	orgID := "org-1"
	require.NoError(t, repo.SetActiveOrganization("user-1", &orgID))

	user, err := repo.FindByAuthID("user-1")
	require.NoError(t, err)
	require.NotNil(t, user.ActiveOrganizationID)
	require.Equal(t, orgID, *user.ActiveOrganizationID)

	require.NoError(t, repo.SetActiveOrganization("user-1", nil))

	user, err = repo.FindByAuthID("user-1")
	require.NoError(t, err)
	require.Nil(t, user.ActiveOrganizationID)
}

func TestUserRepository_FindByAuthID_NotFound(t *testing.T) {
	repo := NewUserRepository(setupRepoDB(t))

	_, err := repo.FindByAuthID("ghost")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_SetActiveOrganization_SQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	orgID := "org-1"
	mock.ExpectExec(`UPDATE "users" SET "active_organization_id"=\$1,"updated_at"=\$2 WHERE auth_user_id = \$3`).
		WithArgs(orgID, sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepository(db)
	require.NoError(t, repo.SetActiveOrganization("user-1", &orgID))
	require.NoError(t, mock.ExpectationsWereMet())
}
