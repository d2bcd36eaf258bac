package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-lookup-service/internal/repository"
	"github.com/namefreezers/weather-lookup-service/internal/weather/types"
)

type fakeFetcher struct {
	calls   []string
	results map[string]types.Weather
	err     error
}

func (f *fakeFetcher) FetchCurrent(ctx context.Context, city string) (types.Weather, error) {
	f.calls = append(f.calls, city)
	if f.err != nil {
		return types.Weather{}, f.err
	}
	w, ok := f.results[city]
	if !ok {
		return types.Weather{}, types.ErrCityNotFound
	}
	return w, nil
}

type fakeRepo struct {
	rows      map[string]repository.WeatherRecord
	upserts   int
	upsertErr error
	listErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]repository.WeatherRecord{}}
}

func (r *fakeRepo) Upsert(ctx context.Context, rec repository.WeatherRecord) error {
	r.upserts++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.rows[rec.City] = rec
	return nil
}

func (r *fakeRepo) ListCities(ctx context.Context) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []string
	for c := range r.rows {
		out = append(out, c)
	}
	return out, nil
}

func london() types.Weather {
	return types.Weather{City: "London", Temp: 15, Descriptions: []string{"Cloudy", "Mist"}}
}

func TestLookup_MissingCity(t *testing.T) {
	f := &fakeFetcher{}
	repo := newFakeRepo()
	svc := NewWeatherService(repo, f, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "")
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("Lookup() error = %v, want ErrMissingParameter", err)
	}
	if len(f.calls) != 0 || repo.upserts != 0 {
		t.Errorf("collaborators contacted: fetch=%d upsert=%d, want 0/0", len(f.calls), repo.upserts)
	}
}

func TestLookup_Success(t *testing.T) {
	f := &fakeFetcher{results: map[string]types.Weather{"london": london()}}
	repo := newFakeRepo()
	svc := NewWeatherService(repo, f, zap.NewNop())

	rec, err := svc.Lookup(context.Background(), "london")
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}

	want := repository.WeatherRecord{City: "London", Temperature: 15, Description: "Cloudy"}
	if rec != want {
		t.Errorf("Lookup() = %+v, want %+v", rec, want)
	}
	if len(f.calls) != 1 || f.calls[0] != "london" {
		t.Errorf("fetch calls = %v, want the verbatim input", f.calls)
	}
	if got, ok := repo.rows["London"]; !ok || got != want || len(repo.rows) != 1 {
		t.Errorf("stored rows = %+v, want only %+v under the canonical name", repo.rows, want)
	}
}

func TestLookup_CityNotFound(t *testing.T) {
	f := &fakeFetcher{results: map[string]types.Weather{}}
	repo := newFakeRepo()
	svc := NewWeatherService(repo, f, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "Atlantis")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrCityNotFound", err)
	}
	if repo.upserts != 0 {
		t.Errorf("upserts = %d, want 0", repo.upserts)
	}
}

func TestLookup_ProviderFailure(t *testing.T) {
	cause := errors.New("weatherstack: HTTP request failed: connection refused")
	f := &fakeFetcher{err: cause}
	repo := newFakeRepo()
	svc := NewWeatherService(repo, f, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "London")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("Lookup() error = %v, want ErrProviderUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Lookup() error = %v, want it to wrap the cause", err)
	}
	if repo.upserts != 0 {
		t.Errorf("upserts = %d, want 0", repo.upserts)
	}
}

func TestLookup_NoDescription(t *testing.T) {
	f := &fakeFetcher{results: map[string]types.Weather{"London": {City: "London", Temp: 15}}}
	repo := newFakeRepo()
	svc := NewWeatherService(repo, f, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "London")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("Lookup() error = %v, want ErrProviderUnavailable", err)
	}
	if repo.upserts != 0 {
		t.Errorf("upserts = %d, want 0", repo.upserts)
	}
}

func TestLookup_PersistenceFailure(t *testing.T) {
	f := &fakeFetcher{results: map[string]types.Weather{"London": london()}}
	repo := newFakeRepo()
	repo.upsertErr = sql.ErrConnDone
	svc := NewWeatherService(repo, f, zap.NewNop())

	rec, err := svc.Lookup(context.Background(), "London")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Lookup() error = %v, want ErrPersistence", err)
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("Lookup() error = %v, want it to wrap sql.ErrConnDone", err)
	}
	if rec != (repository.WeatherRecord{}) {
		t.Errorf("Lookup() returned %+v alongside a persistence error", rec)
	}
}

func TestLookup_RepeatedKeepsOneRow(t *testing.T) {
	f := &fakeFetcher{results: map[string]types.Weather{"London": london()}}
	repo := newFakeRepo()
	svc := NewWeatherService(repo, f, zap.NewNop())

	for i := 0; i < 2; i++ {
		if _, err := svc.Lookup(context.Background(), "London"); err != nil {
			t.Fatalf("Lookup() #%d unexpected error: %v", i, err)
		}
	}
	if len(repo.rows) != 1 || repo.upserts != 2 {
		t.Errorf("rows=%d upserts=%d, want 1/2", len(repo.rows), repo.upserts)
	}
}

func TestRefreshAll(t *testing.T) {
	f := &fakeFetcher{results: map[string]types.Weather{
		"London": {City: "London", Temp: 12, Descriptions: []string{"Rain"}},
	}}
	repo := newFakeRepo()
	repo.rows["London"] = repository.WeatherRecord{City: "London", Temperature: 15, Description: "Cloudy"}
	repo.rows["Gone"] = repository.WeatherRecord{City: "Gone", Temperature: 1, Description: "Fog"}
	svc := NewWeatherService(repo, f, zap.NewNop())

	report, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll() unexpected error: %v", err)
	}
	if report != (RefreshReport{Total: 2, Refreshed: 1, Failed: 1}) {
		t.Errorf("RefreshAll() report = %+v, want 2/1/1", report)
	}
	if got := repo.rows["London"]; got.Temperature != 12 || got.Description != "Rain" {
		t.Errorf("London row = %+v, want refreshed values", got)
	}
	if got := repo.rows["Gone"]; got.Description != "Fog" {
		t.Errorf("Gone row = %+v, want it untouched", got)
	}
}

func TestRefreshAll_ListError(t *testing.T) {
	repo := newFakeRepo()
	repo.listErr = sql.ErrConnDone
	svc := NewWeatherService(repo, &fakeFetcher{}, zap.NewNop())

	if _, err := svc.RefreshAll(context.Background()); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("RefreshAll() error = %v, want sql.ErrConnDone", err)
	}
}

func TestRefreshAll_StopsOnCancel(t *testing.T) {
	f := &fakeFetcher{results: map[string]types.Weather{"London": london()}}
	repo := newFakeRepo()
	repo.rows["London"] = repository.WeatherRecord{City: "London"}
	svc := NewWeatherService(repo, f, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.RefreshAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("RefreshAll() error = %v, want context.Canceled", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("fetch calls = %v, want none after cancel", f.calls)
	}
}
