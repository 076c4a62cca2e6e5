package controller

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/internal/app/service"
	"github.com/movieranker/movieranker-backend/internal/db"
	"github.com/movieranker/movieranker-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupShareControllerTest(t *testing.T) (*ShareController, *recordingSender, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	sender := &recordingSender{}
	shareService := service.NewShareService(repository.NewMovieRepository(testDB), sender)

	return NewShareController(shareService), sender, testDB
}

func newShareRouter(ctrl *ShareController, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})

	router.POST("/movies/share", ctrl.ShareMovies)
	router.GET("/movies/share/preview", ctrl.PreviewShare)
	router.GET("/movies/share/export", ctrl.ExportShare)

	return router
}

func TestShareController_ShareMovies(t *testing.T) {
	ctrl, sender, testDB := setupShareControllerTest(t)
	user := createControllerTestUser(t, testDB, "sharer@example.com")
	createControllerTestMovie(t, testDB, user.ID, "Inception", 90)

	router := newShareRouter(ctrl, user.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/movies/share",
		bytes.NewBufferString(`{"email":"friend@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	mail, ok := sender.last()
	require.True(t, ok)
	assert.Equal(t, "friend@example.com", mail.To)
	assert.Contains(t, mail.Body, "Inception")
}

func TestShareController_ShareMovies_EmptyList(t *testing.T) {
	ctrl, sender, testDB := setupShareControllerTest(t)
	user := createControllerTestUser(t, testDB, "empty@example.com")

	router := newShareRouter(ctrl, user.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/movies/share",
		bytes.NewBufferString(`{"email":"friend@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "SHARE_NO_MOVIES")

	_, ok := sender.last()
	assert.False(t, ok)
}

func TestShareController_ShareMovies_InvalidRecipient(t *testing.T) {
	ctrl, _, testDB := setupShareControllerTest(t)
	user := createControllerTestUser(t, testDB, "sharer@example.com")
	createControllerTestMovie(t, testDB, user.ID, "Inception", 90)

	router := newShareRouter(ctrl, user.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/movies/share",
		bytes.NewBufferString(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareController_PreviewShare(t *testing.T) {
	ctrl, _, testDB := setupShareControllerTest(t)
	user := createControllerTestUser(t, testDB, "previewer@example.com")
	createControllerTestMovie(t, testDB, user.ID, "Interstellar", 85)

	router := newShareRouter(ctrl, user.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/movies/share/preview", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Interstellar")
}

func TestShareController_ExportShare(t *testing.T) {
	ctrl, _, testDB := setupShareControllerTest(t)
	user := createControllerTestUser(t, testDB, "exporter@example.com")
	createControllerTestMovie(t, testDB, user.ID, "Inception", 90)
	createControllerTestMovie(t, testDB, user.ID, "Tenet", 70)

	router := newShareRouter(ctrl, user.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/movies/share/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "my-movies.xlsx")

	// The payload is a readable workbook with the ranked rows
	workbook, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows(workbook.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Inception", rows[1][0])
	assert.Equal(t, "Tenet", rows[2][0])
}
