package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/forecast"
	"github.com/lox/skyglass/internal/imagegen"
	"github.com/lox/skyglass/internal/metrics"
	"github.com/lox/skyglass/internal/models"
)

// ErrStaleResult is returned by Refresh when its result was discarded because
// a newer cycle was already applied or the location changed meanwhile.
var ErrStaleResult = errors.New("refresh result superseded")

// Fetcher is the forecast source used by the scheduler.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*models.WeatherData, error)
}

// Snapshot is the latest applied refresh result. Weather is nil when the last
// cycle failed (Err set) or before the first cycle completes.
type Snapshot struct {
	Location  models.Location
	Weather   *models.WeatherData
	Err       error
	FetchedAt time.Time
	Seq       uint64
}

// Ready reports whether any cycle has been applied.
func (s Snapshot) Ready() bool {
	return s.Seq > 0
}

type Scheduler struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger

	mu       sync.RWMutex
	location models.Location
	snap     Snapshot
	seq      atomic.Uint64

	imageGen   *imagegen.Generator
	imageCache *imagegen.Cache
	imageGenMu *sync.Mutex // Shared with server to prevent duplicate API calls
}

func NewScheduler(fetcher Fetcher, loc models.Location, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger.Named("scheduler"),
		location: loc,
	}
}

// SetImageGenerator configures the scheduler to pre-generate the banner for
// the current gradient after each successful refresh. The mutex should be
// shared with the HTTP server.
func (s *Scheduler) SetImageGenerator(gen *imagegen.Generator, cache *imagegen.Cache, mu *sync.Mutex) {
	s.imageGen = gen
	s.imageCache = cache
	s.imageGenMu = mu
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Location returns the currently selected location, which may be newer than
// the snapshot's.
func (s *Scheduler) Location() models.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// Snapshot returns a copy of the latest applied result.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Run refreshes immediately and then every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(s.interval), ctx))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down")
			return
		case _, ok := <-ticker.C:
			if !ok {
				s.logger.Info("shutting down")
				return
			}
			if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleResult) {
				s.logger.Warn("refresh failed", zap.Error(err))
			}
		}
	}
}

// SetLocation selects a new location and refreshes immediately.
func (s *Scheduler) SetLocation(ctx context.Context, loc models.Location) error {
	s.mu.Lock()
	s.location = loc
	s.mu.Unlock()

	s.logger.Info("location changed",
		zap.String("name", loc.Name),
		zap.Float64("lat", loc.Latitude),
		zap.Float64("lon", loc.Longitude))
	return s.Refresh(ctx)
}

// Refresh runs one fetch cycle. Cycles may overlap; a result is applied only
// if it is newer than the applied one and was fetched for the location that
// is still selected.
func (s *Scheduler) Refresh(ctx context.Context) error {
	loc := s.Location()
	seq := s.seq.Add(1)

	data, err := s.fetcher.Fetch(ctx, loc.Latitude, loc.Longitude)

	s.mu.Lock()
	if seq <= s.snap.Seq || s.location != loc {
		s.mu.Unlock()
		metrics.StaleResultsDiscarded.Inc()
		s.logger.Debug("discarding stale refresh", zap.Uint64("seq", seq))
		return ErrStaleResult
	}
	s.snap = Snapshot{
		Location:  loc,
		Weather:   data,
		Err:       err,
		FetchedAt: time.Now(),
		Seq:       seq,
	}
	s.mu.Unlock()

	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RefreshesTotal.WithLabelValues("success").Inc()
	s.logger.Info("forecast refreshed",
		zap.String("location", loc.Name),
		zap.Float64("temp", data.Current.Temperature),
		zap.Bool("air_quality", data.AirQuality != nil))

	s.ensureWeatherImage(forecast.SelectGradient(data.Current.WeatherCode, data.Current.IsDaytime()))
	return nil
}

// ensureWeatherImage pre-generates the banner for a gradient in the background.
func (s *Scheduler) ensureWeatherImage(g forecast.Gradient) {
	if s.imageGen == nil || s.imageCache == nil {
		return
	}
	if _, ok := s.imageCache.Get(g); ok {
		return
	}

	go func() {
		if s.imageGenMu != nil {
			s.imageGenMu.Lock()
			defer s.imageGenMu.Unlock()
		}
		// Re-check after acquiring the lock
		if _, ok := s.imageCache.Get(g); ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		s.logger.Info("pre-generating weather image", zap.String("gradient", string(g)))
		data, err := s.imageGen.Generate(ctx, g)
		if err != nil {
			s.logger.Warn("image generation failed", zap.Error(err))
			return
		}
		if err := s.imageCache.Set(g, data); err != nil {
			s.logger.Warn("failed to cache image", zap.Error(err))
		}
	}()
}
