package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// WeatherRecord is the latest observation stored for one city.
type WeatherRecord struct {
	City        string  `db:"city"`
	Temperature float64 `db:"temperature"`
	Description string  `db:"description"`
}

// WeatherRepository persists at most one WeatherRecord per city.
type WeatherRepository interface {
	// Upsert inserts rec or replaces the row with the same city in one statement.
	Upsert(ctx context.Context, rec WeatherRecord) error
	// ListCities returns every stored city name, sorted.
	ListCities(ctx context.Context) ([]string, error)
}

type sqlRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewWeatherRepository(db *sqlx.DB, logger *zap.Logger) WeatherRepository {
	return &sqlRepo{db: db, logger: logger}
}

func (r *sqlRepo) Upsert(ctx context.Context, rec WeatherRecord) error {
	// ON CONFLICT ... DO UPDATE is understood by both SQLite and Postgres.
	q := r.db.Rebind(`
        INSERT INTO weather (city, temperature, description)
        VALUES (?, ?, ?)
        ON CONFLICT (city) DO UPDATE
        SET temperature = excluded.temperature,
            description = excluded.description;
    `)
	if _, err := r.db.ExecContext(ctx, q, rec.City, rec.Temperature, rec.Description); err != nil {
		r.logger.Error("failed to upsert weather record",
			zap.String("city", rec.City),
			zap.Float64("temperature", rec.Temperature),
			zap.String("description", rec.Description),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("weather record upserted",
		zap.String("city", rec.City),
		zap.Float64("temperature", rec.Temperature),
		zap.String("description", rec.Description),
	)
	return nil
}

func (r *sqlRepo) ListCities(ctx context.Context) ([]string, error) {
	const q = `SELECT city FROM weather ORDER BY city;`
	var cities []string
	if err := r.db.SelectContext(ctx, &cities, q); err != nil {
		r.logger.Error("failed to list stored cities", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("listed stored cities", zap.Int("count", len(cities)))
	return cities, nil
}
