package server

import (
	"time"

	"job-board/domain/repository"
	"job-board/infrastructure/metrics"
	"job-board/infrastructure/realtime"
	httpHandler "job-board/interfaces/http"
	"job-board/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "https://localhost:3000"}

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	listingHandler httpHandler.IListingHandler,
	descriptionHandler httpHandler.IDescriptionHandler,
	healthHandler httpHandler.IHealthHandler,
	userRepository repository.IUser,
	listingHub *realtime.Hub,
	recorder *metrics.Recorder,
	secretKey string,
	allowedOrigins []string,
) *gin.Engine {
	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultAllowedOrigins
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics(recorder))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	router.GET("/jobs", listingHandler.ListPublic)
	router.GET("/jobs/:id", listingHandler.GetByID)

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository, secretKey))
	{
		jobs := api.Group("/jobs")
		jobs.GET("", listingHandler.ListOwned)
		jobs.POST("", listingHandler.Create)
		jobs.PUT("/:id", listingHandler.Update)
		jobs.DELETE("/:id", listingHandler.Delete)
		jobs.PATCH("/:id/status", listingHandler.ToggleStatus)
		jobs.POST("/description", descriptionHandler.Generate)
		if listingHub != nil {
			jobs.GET("/stream", listingHub.Serve)
		}
	}

	return router
}
