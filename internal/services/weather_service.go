package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/namefreezers/weather-lookup-service/internal/repository"
	"github.com/namefreezers/weather-lookup-service/internal/weather"
	"github.com/namefreezers/weather-lookup-service/internal/weather/types"

	"go.uber.org/zap"
)

// Sentinel errors for the HTTP handlers to inspect:
var (
	// no city given; no collaborator was contacted
	ErrMissingParameter = errors.New("city name is required")

	// the provider answered but did not recognise the city
	ErrCityNotFound = errors.New("city not found")

	// the provider call failed or returned something unusable
	ErrProviderUnavailable = errors.New("weather provider unavailable")

	// the weather was fetched but could not be stored
	ErrPersistence = errors.New("failed to store weather record")
)

// errNoDescription marks a payload without any condition text.
var errNoDescription = errors.New("no weather description in provider response")

// WeatherService defines the lookup operations.
type WeatherService interface {
	// Lookup fetches the current weather for city, stores it under the
	// provider's canonical name and returns the stored record.
	Lookup(ctx context.Context, city string) (repository.WeatherRecord, error)
	// RefreshAll repeats Lookup for every stored city.
	RefreshAll(ctx context.Context) (RefreshReport, error)
}

// RefreshReport summarises one RefreshAll run.
type RefreshReport struct {
	Total     int
	Refreshed int
	Failed    int
}

type weatherService struct {
	repo    repository.WeatherRepository
	fetcher weather.Fetcher
	logger  *zap.Logger
}

// NewWeatherService wires up service dependencies.
func NewWeatherService(
	repo repository.WeatherRepository,
	fetcher weather.Fetcher,
	logger *zap.Logger,
) WeatherService {
	return &weatherService{repo, fetcher, logger}
}

// Lookup runs validate -> fetch -> upsert strictly in that order. The record
// is only returned once it has been stored.
func (s *weatherService) Lookup(ctx context.Context, city string) (repository.WeatherRecord, error) {
	if city == "" {
		return repository.WeatherRecord{}, ErrMissingParameter
	}

	w, err := s.fetcher.FetchCurrent(ctx, city)
	if err != nil {
		if errors.Is(err, types.ErrCityNotFound) {
			s.logger.Info("city not found by provider", zap.String("city", city), zap.Error(err))
			return repository.WeatherRecord{}, ErrCityNotFound
		}
		s.logger.Warn("weather fetch failed", zap.String("city", city), zap.Error(err))
		return repository.WeatherRecord{}, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	desc, ok := w.FirstDescription()
	if !ok {
		s.logger.Warn("weather fetch returned no description", zap.String("city", city))
		return repository.WeatherRecord{}, fmt.Errorf("%w: %w", ErrProviderUnavailable, errNoDescription)
	}

	rec := repository.WeatherRecord{
		City:        w.City,
		Temperature: w.Temp,
		Description: desc,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return repository.WeatherRecord{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("weather stored",
		zap.String("query", city),
		zap.String("city", rec.City),
		zap.Float64("temperature", rec.Temperature),
		zap.String("description", rec.Description),
	)
	return rec, nil
}

// RefreshAll looks up every stored city one after another. A failing city is
// logged and counted; only failing to list the cities aborts the run.
func (s *weatherService) RefreshAll(ctx context.Context) (RefreshReport, error) {
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return RefreshReport{}, fmt.Errorf("repo.ListCities: %w", err)
	}

	report := RefreshReport{Total: len(cities)}
	for _, city := range cities {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := s.Lookup(ctx, city); err != nil {
			report.Failed++
			s.logger.Error("refresh failed", zap.String("city", city), zap.Error(err))
			continue
		}
		report.Refreshed++
	}

	s.logger.Info("refresh finished",
		zap.Int("total", report.Total),
		zap.Int("refreshed", report.Refreshed),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}
