package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-lookup-service/internal/services"
)

// Client-facing messages. Server-side causes are logged, not returned.
const (
	msgMissingCity     = "Please provide a city name"
	msgCityNotFound    = "City not found"
	msgProviderFailure = "Error fetching data from the Weatherstack API"
	msgStorageFailure  = "Error saving weather data"
	msgInternal        = "Internal server error"
)

// weatherRequest defines the expected query parameter for GET /
type weatherRequest struct {
	City string `form:"city" binding:"required"`
}

// weatherResponse is the body of a successful lookup
type weatherResponse struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
}

// WeatherHandler returns a Gin handler for GET /
func WeatherHandler(svc services.WeatherService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1) Bind and validate the 'city' query parameter
		var req weatherRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			// 400 Missing city
			c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingCity})
			return
		}

		// 2) Fetch, store and reply
		rec, err := svc.Lookup(c.Request.Context(), req.City)
		switch {
		case err == nil:
			// 200 Successful operation
			c.JSON(http.StatusOK, weatherResponse{
				City:        rec.City,
				Temperature: rec.Temperature,
				Description: rec.Description,
			})
		case errors.Is(err, services.ErrMissingParameter):
			// 400 Missing city
			c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingCity})
		case errors.Is(err, services.ErrCityNotFound):
			// 404 City not found
			c.JSON(http.StatusNotFound, gin.H{"error": msgCityNotFound})
		case errors.Is(err, services.ErrProviderUnavailable):
			logger.Error("weather lookup failed", zap.String("city", req.City), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgProviderFailure})
		case errors.Is(err, services.ErrPersistence):
			logger.Error("weather lookup failed", zap.String("city", req.City), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgStorageFailure})
		default:
			logger.Error("weather lookup failed", zap.String("city", req.City), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		}
	}
}
