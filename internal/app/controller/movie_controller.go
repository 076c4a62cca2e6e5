package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/internal/app/service"
	apperrors "github.com/movieranker/movieranker-backend/internal/errors"
	"github.com/movieranker/movieranker-backend/internal/middleware"
)

type MovieController struct {
	movieService service.MovieService
}

func NewMovieController(movieService service.MovieService) *MovieController {
	return &MovieController{
		movieService: movieService,
	}
}

// MovieRequest mirrors the external movie shape minus the server-assigned
// fields. Any owner value a client smuggles in is ignored; the owner is the
// authenticated identity.
type MovieRequest struct {
	MovieName   string     `json:"movieName"`
	Genre       string     `json:"genre"`
	ReleaseDate model.Date `json:"releaseDate"`
	Studio      string     `json:"studio"`
	Score       int        `json:"score"`
	PosterURL   string     `json:"posterUrl"`
}

func (r MovieRequest) toInput() service.MovieInput {
	return service.MovieInput{
		MovieName:   r.MovieName,
		Genre:       r.Genre,
		ReleaseDate: r.ReleaseDate,
		Studio:      r.Studio,
		Score:       r.Score,
		PosterURL:   r.PosterURL,
	}
}

// ListMovies returns the ranked list: an authenticated caller sees their own
// movies, an anonymous caller sees everyone's. Both support ?search=.
// GET /api/v1/movies
func (ctrl *MovieController) ListMovies(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var actingUserID *uint
	if userID, ok := middleware.GetUserID(c); ok {
		actingUserID = &userID
	}
	search := c.Query("search")

	result, err := ctrl.movieService.List(actingUserID, search)
	if err != nil {
		log.Error("Failed to list movies", err, map[string]interface{}{
			"search": search,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list movies")
		return
	}

	response := gin.H{
		"movies": result.Movies,
		"count":  len(result.Movies),
	}
	// Lets the client tell "no search results" apart from "no movies yet"
	if result.NoMatches {
		response["notice"] = "No movies found. Press search again to go back"
	}

	c.JSON(http.StatusOK, response)
}

// CreateMovie adds a movie to the acting user's list
// POST /api/v1/movies
func (ctrl *MovieController) CreateMovie(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create movie request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Request body is invalid")
		return
	}

	movie, err := ctrl.movieService.Create(userID, req.toInput())
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			apperrors.RespondWithValidationError(c, validationErr.Fields)
			return
		}
		log.Error("Failed to create movie", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create movie")
		return
	}

	log.Info("Movie created", map[string]interface{}{
		"movie_id": movie.ID,
		"user_id":  userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Movie created successfully",
		"movie":   movie,
	})
}

// GetMovie returns one of the acting user's movies, e.g. to fill an edit form
// GET /api/v1/movies/:id
func (ctrl *MovieController) GetMovie(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseMovieID(c)
	if !ok {
		return
	}

	movie, err := ctrl.movieService.GetForOwner(userID, id)
	if err != nil {
		ctrl.respondMovieError(c, err, "get movie")
		return
	}

	log.Debug("Movie fetched", map[string]interface{}{
		"movie_id": movie.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"movie": movie,
	})
}

// UpdateMovie edits one of the acting user's movies
// PUT /api/v1/movies/:id
func (ctrl *MovieController) UpdateMovie(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseMovieID(c)
	if !ok {
		return
	}

	var req MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update movie request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Request body is invalid")
		return
	}

	movie, err := ctrl.movieService.Update(userID, id, req.toInput())
	if err != nil {
		ctrl.respondMovieError(c, err, "update movie")
		return
	}

	log.Info("Movie updated", map[string]interface{}{
		"movie_id": movie.ID,
		"user_id":  userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Movie has been edited successfully",
		"movie":   movie,
	})
}

// DeleteMovie removes one of the acting user's movies
// DELETE /api/v1/movies/:id
func (ctrl *MovieController) DeleteMovie(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseMovieID(c)
	if !ok {
		return
	}

	if err := ctrl.movieService.Delete(userID, id); err != nil {
		ctrl.respondMovieError(c, err, "delete movie")
		return
	}

	log.Info("Movie deleted", map[string]interface{}{
		"movie_id": id,
		"user_id":  userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Movie has been deleted successfully",
	})
}

func (ctrl *MovieController) respondMovieError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	var validationErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrMovieNotFound):
		apperrors.NotFound(c, apperrors.MovieNotFound, "Movie not found")
	case errors.Is(err, service.ErrNotOwner):
		// Recoverable notice, never a hard failure
		apperrors.Forbidden(c, apperrors.AuthzOwnerOnly, "You are not authorized to modify this movie. Sign in to your movies")
	case errors.As(err, &validationErr):
		apperrors.RespondWithValidationError(c, validationErr.Fields)
	default:
		log.Error("Movie operation failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

func parseMovieID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid movie id")
		return 0, false
	}
	return uint(id), true
}
