package repository

import (
	"testing"

	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserRepoTest(t *testing.T) UserRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewUserRepository(testDB)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := setupUserRepoTest(t)

	user := &model.User{
		Email:        "Casey@Example.com",
		PasswordHash: "hashed",
		Name:         "Casey",
	}
	require.NoError(t, repo.Create(user))
	require.NotZero(t, user.ID)

	// Stored lowercased
	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "casey@example.com", found.Email)
}

func TestUserRepository_FindByEmail_CaseInsensitive(t *testing.T) {
	repo := setupUserRepoTest(t)

	require.NoError(t, repo.Create(&model.User{
		Email:        "casey@example.com",
		PasswordHash: "hashed",
		Name:         "Casey",
	}))

	tests := []struct {
		name  string
		email string
	}{
		{name: "Exact match", email: "casey@example.com"},
		{name: "Mixed case", email: "Casey@Example.COM"},
		{name: "Surrounding whitespace", email: "  casey@example.com  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(tt.email)
			require.NoError(t, err)
			assert.Equal(t, "casey@example.com", found.Email)
		})
	}

	_, err := repo.FindByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	repo := setupUserRepoTest(t)

	user := &model.User{
		Email:        "rotate@example.com",
		PasswordHash: "old-hash",
		Name:         "Rotate",
	}
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.UpdatePasswordHash(user.ID, "new-hash"))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)
	assert.Equal(t, "rotate@example.com", found.Email)
}
