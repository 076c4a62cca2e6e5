package service

import (
	"testing"
	"time"

	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMovieServiceTest(t *testing.T) (MovieService, repository.MovieRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	movieRepo := repository.NewMovieRepository(testDB)
	movieService := NewMovieService(movieRepo, NewOwnershipGuard())

	return movieService, movieRepo, testDB
}

func createServiceTestUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashed-password",
		Name:         "Test User",
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestMovieService_List_ScopedToOwner(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	u1 := createServiceTestUser(t, testDB, "u1@example.com")
	u2 := createServiceTestUser(t, testDB, "u2@example.com")

	_, err := movieService.Create(u1.ID, MovieInput{MovieName: "Interstellar", Genre: "Sci-Fi", Score: 85})
	require.NoError(t, err)
	_, err = movieService.Create(u1.ID, MovieInput{MovieName: "Inception", Genre: "Sci-Fi", Score: 90})
	require.NoError(t, err)
	_, err = movieService.Create(u2.ID, MovieInput{MovieName: "Up", Genre: "Animation", Score: 95})
	require.NoError(t, err)

	result, err := movieService.List(&u1.ID, "")
	require.NoError(t, err)
	require.Len(t, result.Movies, 2)
	assert.False(t, result.NoMatches)

	// Ranked by score descending
	assert.Equal(t, "Inception", result.Movies[0].MovieName)
	assert.Equal(t, "Interstellar", result.Movies[1].MovieName)
}

func TestMovieService_List_AnonymousSeesEverything(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	u1 := createServiceTestUser(t, testDB, "u1@example.com")
	u2 := createServiceTestUser(t, testDB, "u2@example.com")

	_, err := movieService.Create(u1.ID, MovieInput{MovieName: "Heat", Genre: "Crime", Score: 88})
	require.NoError(t, err)
	_, err = movieService.Create(u2.ID, MovieInput{MovieName: "Ronin", Genre: "Crime", Score: 80})
	require.NoError(t, err)

	result, err := movieService.List(nil, "")
	require.NoError(t, err)
	assert.Len(t, result.Movies, 2)
}

func TestMovieService_List_Search(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	user := createServiceTestUser(t, testDB, "searcher@example.com")

	for _, title := range []string{"Interstellar", "Inception", "Up"} {
		_, err := movieService.Create(user.ID, MovieInput{MovieName: title, Genre: "Sci-Fi", Score: 80})
		require.NoError(t, err)
	}

	t.Run("Substring match", func(t *testing.T) {
		result, err := movieService.List(&user.ID, "stell")
		require.NoError(t, err)
		require.Len(t, result.Movies, 1)
		assert.Equal(t, "Interstellar", result.Movies[0].MovieName)
		assert.False(t, result.NoMatches)
	})

	t.Run("Query trimmed before matching", func(t *testing.T) {
		result, err := movieService.List(&user.ID, "  inception  ")
		require.NoError(t, err)
		require.Len(t, result.Movies, 1)
		assert.Equal(t, "inception", result.Query)
	})

	t.Run("No matches flagged when a query was given", func(t *testing.T) {
		result, err := movieService.List(&user.ID, "matrix")
		require.NoError(t, err)
		assert.Empty(t, result.Movies)
		assert.True(t, result.NoMatches)
	})

	t.Run("Empty list without query is not flagged", func(t *testing.T) {
		empty := createServiceTestUser(t, testDB, "empty@example.com")
		result, err := movieService.List(&empty.ID, "")
		require.NoError(t, err)
		assert.Empty(t, result.Movies)
		assert.False(t, result.NoMatches)
	})
}

func TestMovieService_Create(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	user := createServiceTestUser(t, testDB, "creator@example.com")

	movie, err := movieService.Create(user.ID, MovieInput{
		MovieName:   "  Dune  ",
		Genre:       "Sci-Fi",
		ReleaseDate: model.NewDate(2021, time.October, 22),
		Studio:      "Legendary",
		Score:       85,
	})
	require.NoError(t, err)
	require.NotZero(t, movie.ID)

	// Name trimmed, owner taken from the identity
	assert.Equal(t, "Dune", movie.MovieName)
	assert.Equal(t, user.ID, movie.UserID)
}

func TestMovieService_Create_Validation(t *testing.T) {
	movieService, movieRepo, testDB := setupMovieServiceTest(t)
	user := createServiceTestUser(t, testDB, "validator@example.com")

	tests := []struct {
		name      string
		input     MovieInput
		wantField string
	}{
		{
			name:      "Missing name",
			input:     MovieInput{Genre: "Drama", Score: 50},
			wantField: "movieName",
		},
		{
			name:      "Whitespace-only name",
			input:     MovieInput{MovieName: "   ", Genre: "Drama", Score: 50},
			wantField: "movieName",
		},
		{
			name:      "Missing genre",
			input:     MovieInput{MovieName: "Heat", Score: 50},
			wantField: "genre",
		},
		{
			name:      "Score above range",
			input:     MovieInput{MovieName: "Heat", Genre: "Crime", Score: 150},
			wantField: "score",
		},
		{
			name:      "Score below range",
			input:     MovieInput{MovieName: "Heat", Genre: "Crime", Score: -1},
			wantField: "score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movie, err := movieService.Create(user.ID, tt.input)
			assert.Nil(t, movie)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.wantField)
		})
	}

	// Nothing was persisted by the rejected inputs
	movies, err := movieRepo.FindWithFilter(repository.MovieFilter{OwnerID: &user.ID})
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMovieService_GetForOwner(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	owner := createServiceTestUser(t, testDB, "owner@example.com")
	intruder := createServiceTestUser(t, testDB, "intruder@example.com")

	created, err := movieService.Create(owner.ID, MovieInput{MovieName: "Alien", Genre: "Horror", Score: 87})
	require.NoError(t, err)

	movie, err := movieService.GetForOwner(owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alien", movie.MovieName)

	// The read-before-edit path refuses non-owners too
	_, err = movieService.GetForOwner(intruder.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = movieService.GetForOwner(owner.ID, 9999)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieService_Update(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	owner := createServiceTestUser(t, testDB, "owner@example.com")

	created, err := movieService.Create(owner.ID, MovieInput{MovieName: "Dune", Genre: "Sci-Fi", Score: 75})
	require.NoError(t, err)

	updated, err := movieService.Update(owner.ID, created.ID, MovieInput{
		MovieName: "Dune: Part Two",
		Genre:     "Sci-Fi",
		Score:     92,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune: Part Two", updated.MovieName)
	assert.Equal(t, 92, updated.Score)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, owner.ID, updated.UserID)
}

func TestMovieService_Update_RefusesNonOwner(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	owner := createServiceTestUser(t, testDB, "owner@example.com")
	intruder := createServiceTestUser(t, testDB, "intruder@example.com")

	created, err := movieService.Create(owner.ID, MovieInput{MovieName: "Alien", Genre: "Horror", Score: 87})
	require.NoError(t, err)

	_, err = movieService.Update(intruder.ID, created.ID, MovieInput{
		MovieName: "Hijacked",
		Genre:     "Horror",
		Score:     1,
	})
	assert.ErrorIs(t, err, ErrNotOwner)

	// The record is untouched
	reloaded, err := movieService.GetForOwner(owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alien", reloaded.MovieName)
	assert.Equal(t, 87, reloaded.Score)
}

func TestMovieService_Delete(t *testing.T) {
	movieService, _, testDB := setupMovieServiceTest(t)
	owner := createServiceTestUser(t, testDB, "owner@example.com")
	intruder := createServiceTestUser(t, testDB, "intruder@example.com")

	created, err := movieService.Create(owner.ID, MovieInput{MovieName: "Jaws", Genre: "Thriller", Score: 88})
	require.NoError(t, err)

	// Non-owner cannot delete
	err = movieService.Delete(intruder.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = movieService.GetForOwner(owner.ID, created.ID)
	require.NoError(t, err)

	// Owner can
	require.NoError(t, movieService.Delete(owner.ID, created.ID))

	_, err = movieService.GetForOwner(owner.ID, created.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	err = movieService.Delete(owner.ID, created.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}
