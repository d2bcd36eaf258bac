// Package logging builds the zap logger shared by the api and scheduler binaries.
package logging

import (
	"go.uber.org/zap"

	"github.com/namefreezers/weather-lookup-service/internal/config"
)

// New returns a development logger when LOG_DEVELOPMENT is set and a
// production (JSON, info level) logger otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
