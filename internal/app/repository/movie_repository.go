package repository

import (
	"strings"

	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/pkg/logger"
	"gorm.io/gorm"
)

// MovieFilter narrows the ranked list. OwnerID nil means every user's movies
// (the anonymous aggregate view); Search matches a case-insensitive substring
// of the movie name only.
type MovieFilter struct {
	OwnerID *uint
	Search  string
}

type MovieRepository interface {
	Create(movie *model.Movie) error
	BulkCreate(movies []model.Movie, batchSize int) error
	FindWithFilter(filter MovieFilter) ([]model.Movie, error)
	FindByID(id uint) (*model.Movie, error)
	Update(movie *model.Movie) error
	Delete(id uint) error
}

type movieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

func (r *movieRepository) Create(movie *model.Movie) error {
	logger.Debug("Creating movie in database", map[string]interface{}{
		"name":     movie.MovieName,
		"genre":    movie.Genre,
		"score":    movie.Score,
		"owner_id": movie.UserID,
	})

	if err := r.db.Create(movie).Error; err != nil {
		logger.Error("Failed to create movie in database", err, map[string]interface{}{
			"name":     movie.MovieName,
			"owner_id": movie.UserID,
		})
		return err
	}

	logger.Debug("Movie created in database", map[string]interface{}{
		"movie_id": movie.ID,
		"name":     movie.MovieName,
		"owner_id": movie.UserID,
	})
	return nil
}

// BulkCreate inserts movies in batches, used by the seed command
func (r *movieRepository) BulkCreate(movies []model.Movie, batchSize int) error {
	logger.Info("Bulk creating movies", map[string]interface{}{
		"count":      len(movies),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(movies, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create movies", err, map[string]interface{}{
			"count": len(movies),
		})
		return err
	}

	return nil
}

func (r *movieRepository) FindWithFilter(filter MovieFilter) ([]model.Movie, error) {
	logger.Debug("Finding movies with filter", map[string]interface{}{
		"owner_id": filter.OwnerID,
		"search":   filter.Search,
	})

	query := r.db.Model(&model.Movie{})

	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}

	if filter.Search != "" {
		// LOWER on both sides keeps the match case-insensitive on Postgres
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(movie_name) LIKE ?", like)
	}

	// Ranked order: best score first, insertion order breaks ties
	query = query.Order("score DESC").Order("id ASC")

	var movies []model.Movie
	if err := query.Find(&movies).Error; err != nil {
		logger.Error("Failed to find movies with filter", err, map[string]interface{}{
			"owner_id": filter.OwnerID,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Movies found with filter", map[string]interface{}{
		"count": len(movies),
	})
	return movies, nil
}

func (r *movieRepository) FindByID(id uint) (*model.Movie, error) {
	logger.Debug("Finding movie by ID in database", map[string]interface{}{
		"movie_id": id,
	})

	var movie model.Movie
	if err := r.db.First(&movie, id).Error; err != nil {
		logger.Error("Failed to find movie by ID in database", err, map[string]interface{}{
			"movie_id": id,
		})
		return nil, err
	}

	return &movie, nil
}

func (r *movieRepository) Update(movie *model.Movie) error {
	logger.Debug("Updating movie in database", map[string]interface{}{
		"movie_id": movie.ID,
		"owner_id": movie.UserID,
	})

	if err := r.db.Save(movie).Error; err != nil {
		logger.Error("Failed to update movie in database", err, map[string]interface{}{
			"movie_id": movie.ID,
		})
		return err
	}

	return nil
}

func (r *movieRepository) Delete(id uint) error {
	logger.Debug("Deleting movie from database", map[string]interface{}{
		"movie_id": id,
	})

	if err := r.db.Delete(&model.Movie{}, id).Error; err != nil {
		logger.Error("Failed to delete movie from database", err, map[string]interface{}{
			"movie_id": id,
		})
		return err
	}

	return nil
}
