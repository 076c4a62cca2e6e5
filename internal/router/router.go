package router

import (
	"github.com/gin-gonic/gin"
	"github.com/movieranker/movieranker-backend/config"
	"github.com/movieranker/movieranker-backend/internal/app/controller"
	"github.com/movieranker/movieranker-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	movieController  *controller.MovieController
	shareController  *controller.ShareController
	uploadController *controller.UploadController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	movieController *controller.MovieController,
	shareController *controller.ShareController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		movieController:  movieController,
		shareController:  shareController,
		uploadController: uploadController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "MovieRanker API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		movies := v1.Group("/movies")
		{
			// Listing works for guests too; signed-in users see only their own list
			movies.GET("", r.authMiddleware.OptionalAuthenticate(), r.movieController.ListMovies)

			movies.POST("", r.authMiddleware.Authenticate(), r.movieController.CreateMovie)
			movies.GET("/:id", r.authMiddleware.Authenticate(), r.movieController.GetMovie)
			movies.PUT("/:id", r.authMiddleware.Authenticate(), r.movieController.UpdateMovie)
			movies.DELETE("/:id", r.authMiddleware.Authenticate(), r.movieController.DeleteMovie)

			share := movies.Group("/share")
			share.Use(r.authMiddleware.Authenticate())
			{
				share.POST("", r.shareController.ShareMovies)
				share.GET("/preview", r.shareController.PreviewShare)
				share.GET("/export", r.shareController.ExportShare)
			}
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
