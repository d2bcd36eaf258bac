package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-lookup-service/internal/services"
)

// NewRouter sets up the Gin engine with all routes.
func NewRouter(svc services.WeatherService, db Pinger, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	router.GET("/", WeatherHandler(svc, logger))
	router.GET("/healthz", HealthHandler(db, logger))

	return router
}
