package weather

import (
	"context"

	"github.com/namefreezers/weather-lookup-service/internal/weather/types"
)

// Fetcher returns the current weather for a city. Implementations report an
// unknown city with types.ErrCityNotFound and everything else as a plain error.
type Fetcher interface {
	FetchCurrent(ctx context.Context, city string) (types.Weather, error)
}
