package controller

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/movieranker/movieranker-backend/internal/app/service"
	apperrors "github.com/movieranker/movieranker-backend/internal/errors"
	"github.com/movieranker/movieranker-backend/internal/middleware"
	"github.com/movieranker/movieranker-backend/pkg/mailer"
)

type ShareController struct {
	shareService service.ShareService
}

func NewShareController(shareService service.ShareService) *ShareController {
	return &ShareController{
		shareService: shareService,
	}
}

type ShareRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ShareMovies emails the acting user's ranked list to a recipient
// POST /api/v1/movies/share
func (ctrl *ShareController) ShareMovies(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid share request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid email address")
		return
	}

	if err := ctrl.shareService.ShareToEmail(userID, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrNoMoviesToShare):
			apperrors.BadRequest(c, apperrors.ShareNoMovies, "You have no movies to share")
		case errors.Is(err, mailer.ErrDelivery):
			// The list itself is fine; only the transport failed
			log.Error("Share email delivery failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.ShareDeliveryError, "Your list could not be emailed right now. Please try again later")
		default:
			log.Error("Failed to share movie list", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "share movies")
		}
		return
	}

	log.Info("Movie list shared", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Movies shared successfully",
	})
}

// PreviewShare returns the share document without sending it
// GET /api/v1/movies/share/preview
func (ctrl *ShareController) PreviewShare(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	doc, err := ctrl.shareService.BuildShareDocument(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoMoviesToShare) {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<p>You have no movies to share</p>"))
			return
		}
		log.Error("Failed to build share preview", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "share preview")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.BodyHTML))
}

// ExportShare downloads the ranked list as an XLSX workbook
// GET /api/v1/movies/share/export
func (ctrl *ShareController) ExportShare(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	workbook, err := ctrl.shareService.BuildShareWorkbook(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoMoviesToShare) {
			apperrors.BadRequest(c, apperrors.ShareNoMovies, "You have no movies to export")
			return
		}
		log.Error("Failed to build share workbook", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "share export")
		return
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		log.Error("Failed to serialize share workbook", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="my-movies.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
