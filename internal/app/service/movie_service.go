package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrMovieNotFound = errors.New("movie not found")

// ValidationError carries per-field messages for malformed movie input
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid movie input: %d field(s)", len(e.Fields))
}

// MovieInput is the client-supplied portion of a movie. The owner is never
// part of it; it is always taken from the authenticated identity.
type MovieInput struct {
	MovieName   string
	Genre       string
	ReleaseDate model.Date
	Studio      string
	Score       int
	PosterURL   string
}

// ListResult distinguishes "you have no movies" from "your search matched
// nothing" so the caller can render the right notice.
type ListResult struct {
	Movies    []model.Movie
	Query     string
	NoMatches bool // a query was supplied and nothing matched
}

type MovieService interface {
	List(actingUserID *uint, query string) (*ListResult, error)
	Create(ownerID uint, input MovieInput) (*model.Movie, error)
	GetForOwner(actingUserID, id uint) (*model.Movie, error)
	Update(actingUserID, id uint, input MovieInput) (*model.Movie, error)
	Delete(actingUserID, id uint) error
}

type movieService struct {
	movieRepo repository.MovieRepository
	guard     *OwnershipGuard
}

func NewMovieService(movieRepo repository.MovieRepository, guard *OwnershipGuard) MovieService {
	return &movieService{
		movieRepo: movieRepo,
		guard:     guard,
	}
}

func (s *movieService) List(actingUserID *uint, query string) (*ListResult, error) {
	query = strings.TrimSpace(query)

	logger.Debug("Listing movies", map[string]interface{}{
		"acting_user_id": actingUserID,
		"query":          query,
	})

	movies, err := s.movieRepo.FindWithFilter(repository.MovieFilter{
		OwnerID: actingUserID,
		Search:  query,
	})
	if err != nil {
		logger.Error("Failed to list movies", err, map[string]interface{}{
			"acting_user_id": actingUserID,
			"query":          query,
		})
		return nil, err
	}

	return &ListResult{
		Movies:    movies,
		Query:     query,
		NoMatches: query != "" && len(movies) == 0,
	}, nil
}

func (s *movieService) Create(ownerID uint, input MovieInput) (*model.Movie, error) {
	logger.Info("Creating movie", map[string]interface{}{
		"name":     input.MovieName,
		"owner_id": ownerID,
	})

	input = trimInput(input)
	if err := validateInput(input); err != nil {
		logger.Warn("Movie creation rejected: invalid input", map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}

	// Owner comes from the authenticated identity only; nothing in the input
	// can set it
	movie := &model.Movie{
		MovieName:   input.MovieName,
		Genre:       input.Genre,
		ReleaseDate: input.ReleaseDate,
		Studio:      input.Studio,
		Score:       input.Score,
		PosterURL:   input.PosterURL,
		UserID:      ownerID,
	}

	if err := s.movieRepo.Create(movie); err != nil {
		logger.Error("Failed to create movie", err, map[string]interface{}{
			"name":     input.MovieName,
			"owner_id": ownerID,
		})
		return nil, err
	}

	logger.Info("Movie created", map[string]interface{}{
		"movie_id": movie.ID,
		"owner_id": ownerID,
	})
	return movie, nil
}

// GetForOwner fetches a single movie for its owner, typically to populate an
// edit form. The ownership check runs here as well as on the write path;
// the two can race under concurrent requests with stale identifiers.
func (s *movieService) GetForOwner(actingUserID, id uint) (*model.Movie, error) {
	movie, err := s.findMovie(id)
	if err != nil {
		return nil, err
	}

	if err := s.guard.Authorize(actingUserID, movie.UserID); err != nil {
		logger.Warn("Blocked read of another user's movie", map[string]interface{}{
			"movie_id":       id,
			"acting_user_id": actingUserID,
		})
		return nil, err
	}

	return movie, nil
}

func (s *movieService) Update(actingUserID, id uint, input MovieInput) (*model.Movie, error) {
	logger.Info("Updating movie", map[string]interface{}{
		"movie_id":       id,
		"acting_user_id": actingUserID,
	})

	movie, err := s.findMovie(id)
	if err != nil {
		return nil, err
	}

	if err := s.guard.Authorize(actingUserID, movie.UserID); err != nil {
		logger.Warn("Blocked edit of another user's movie", map[string]interface{}{
			"movie_id":       id,
			"acting_user_id": actingUserID,
			"owner_id":       movie.UserID,
		})
		return nil, err
	}

	input = trimInput(input)
	if err := validateInput(input); err != nil {
		logger.Warn("Movie update rejected: invalid input", map[string]interface{}{
			"movie_id": id,
		})
		return nil, err
	}

	// Only the mutable fields change; ID and owner stay as stored
	movie.MovieName = input.MovieName
	movie.Genre = input.Genre
	movie.ReleaseDate = input.ReleaseDate
	movie.Studio = input.Studio
	movie.Score = input.Score
	movie.PosterURL = input.PosterURL

	if err := s.movieRepo.Update(movie); err != nil {
		logger.Error("Failed to update movie", err, map[string]interface{}{
			"movie_id": id,
		})
		return nil, err
	}

	logger.Info("Movie updated", map[string]interface{}{
		"movie_id": movie.ID,
	})
	return movie, nil
}

func (s *movieService) Delete(actingUserID, id uint) error {
	logger.Info("Deleting movie", map[string]interface{}{
		"movie_id":       id,
		"acting_user_id": actingUserID,
	})

	movie, err := s.findMovie(id)
	if err != nil {
		return err
	}

	if err := s.guard.Authorize(actingUserID, movie.UserID); err != nil {
		logger.Warn("Blocked delete of another user's movie", map[string]interface{}{
			"movie_id":       id,
			"acting_user_id": actingUserID,
			"owner_id":       movie.UserID,
		})
		return err
	}

	if err := s.movieRepo.Delete(id); err != nil {
		logger.Error("Failed to delete movie", err, map[string]interface{}{
			"movie_id": id,
		})
		return err
	}

	logger.Info("Movie deleted", map[string]interface{}{
		"movie_id": id,
	})
	return nil
}

func (s *movieService) findMovie(id uint) (*model.Movie, error) {
	movie, err := s.movieRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}

func trimInput(input MovieInput) MovieInput {
	input.MovieName = strings.TrimSpace(input.MovieName)
	input.Genre = strings.TrimSpace(input.Genre)
	input.Studio = strings.TrimSpace(input.Studio)
	return input
}

func validateInput(input MovieInput) error {
	fields := make(map[string]string)

	if input.MovieName == "" {
		fields["movieName"] = "Movie name is required"
	}
	if input.Genre == "" {
		fields["genre"] = "Genre is required"
	}
	if input.Score < model.MinScore || input.Score > model.MaxScore {
		fields["score"] = fmt.Sprintf("Score must be between %d and %d", model.MinScore, model.MaxScore)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
