// Package api exposes the services over a JSON HTTP interface.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vladimiradmaev/macro-tracker/internal/config"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/interfaces"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/realtime"
)

// Dependencies holds everything the handlers need
type Dependencies struct {
	Auth      interfaces.AuthServiceInterface
	Users     interfaces.UserServiceInterface
	Meals     interfaces.MealServiceInterface
	Analytics interfaces.AnalyticsServiceInterface
	Identify  interfaces.IdentifyServiceInterface
	Hub       *realtime.Hub
}

type handler struct {
	deps   Dependencies
	errors *apperrors.Handler
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg config.HTTPConfig, deps Dependencies) *gin.Engine {
	h := &handler{deps: deps, errors: apperrors.NewHandler(logger.GetLogger())}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
	}

	protected := api.Group("")
	protected.Use(AuthMiddleware(deps.Auth))
	{
		protected.GET("/profile", h.getProfile)
		protected.PUT("/profile", h.updateProfile)
		protected.PUT("/profile/goals", h.updateGoals)

		protected.GET("/weights", h.listWeights)
		protected.POST("/weights", h.addWeight)

		protected.GET("/meals", h.dailySummary)
		protected.POST("/meals", h.createMeal)
		protected.GET("/meals/:id", h.getMeal)
		protected.PUT("/meals/:id", h.updateMeal)
		protected.DELETE("/meals/:id", h.deleteMeal)

		protected.GET("/analytics/weekly", h.weeklyTrend)

		protected.POST("/foods/lookup", h.lookupFood)

		protected.POST("/identify", h.startIdentify)
		protected.GET("/identify", h.currentIdentify)
		protected.DELETE("/identify", h.resetIdentify)
		protected.POST("/identify/save", h.saveIdentify)
		protected.GET("/identify/ws", h.identifyUpdates)
	}

	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, apperrors.NewNotFoundError("route"))
	})

	return r
}

// NewServer wraps the router in an http.Server with the configured timeouts
func NewServer(cfg config.HTTPConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}
}
