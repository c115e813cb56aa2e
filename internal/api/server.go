package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/forecast"
	"github.com/lox/skyglass/internal/geocode"
	"github.com/lox/skyglass/internal/imagegen"
	"github.com/lox/skyglass/internal/ingest"
	"github.com/lox/skyglass/internal/models"
)

// WeatherSource is the refresh scheduler as seen by the HTTP layer.
type WeatherSource interface {
	Snapshot() ingest.Snapshot
	Location() models.Location
	SetLocation(ctx context.Context, loc models.Location) error
	Interval() time.Duration
}

// PlaceFinder resolves place names and coordinates.
type PlaceFinder interface {
	Search(ctx context.Context, query string) ([]models.Place, error)
	Reverse(ctx context.Context, lat, lon float64) (geocode.Address, error)
}

// ThemeStore persists the theme preference.
type ThemeStore interface {
	SaveTheme(forecast.Theme) error
}

type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	Theme           forecast.Theme
	DefaultLocation models.Location // startup location; zero means the source's location at construction
	ImageGen        *imagegen.Generator // nil disables banner generation
	ImageCache      *imagegen.Cache     // nil disables the banner endpoint
	OGCacheTTL      time.Duration
	Logger          *zap.Logger
}

// locationTimeout bounds the refresh triggered by a location change.
const locationTimeout = 45 * time.Second

type Server struct {
	weather WeatherSource
	places  PlaceFinder
	themes  ThemeStore

	addr            string
	shutdownTimeout time.Duration
	defaultLocation models.Location
	logger          *zap.Logger
	tmpl            *template.Template
	notices         *Notices

	themeMu sync.RWMutex
	theme   forecast.Theme

	imageCache   *imagegen.Cache
	imageGen     *imagegen.Generator
	genMu        sync.Mutex // Prevents concurrent generation of same image
	ogImageCache *imagegen.OGImageCache
}

func NewServer(weather WeatherSource, places PlaceFinder, themes ThemeStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := opts.Theme
	if _, err := forecast.ParseTheme(string(theme)); err != nil {
		theme = forecast.DefaultTheme
	}
	if opts.DefaultLocation == (models.Location{}) {
		opts.DefaultLocation = weather.Location()
	}
	if opts.OGCacheTTL <= 0 {
		opts.OGCacheTTL = 5 * time.Minute
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	return &Server{
		weather:         weather,
		places:          places,
		themes:          themes,
		addr:            opts.Addr,
		defaultLocation: opts.DefaultLocation,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger.Named("api"),
		tmpl:            newTemplates(),
		notices:         NewNotices(NoticeTTL),
		theme:           theme,
		imageCache:      opts.ImageCache,
		imageGen:        opts.ImageGen,
		ogImageCache:    imagegen.NewOGImageCache(opts.OGCacheTTL),
	}
}

// ImageGenMutex returns the image generation mutex, shared with the scheduler
// so the same banner is not generated twice.
func (s *Server) ImageGenMutex() *sync.Mutex {
	return &s.genMu
}

// Theme returns the current theme preference.
func (s *Server) Theme() forecast.Theme {
	s.themeMu.RLock()
	defer s.themeMu.RUnlock()
	return s.theme
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/og-image.png", s.handleOGImage)
	r.Get("/weather-image", s.handleWeatherImage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/weather", s.handleAPIWeather)
		r.Get("/search", s.handleAPISearch)
		r.Post("/location", s.handleAPILocation)
		r.Post("/geolocate", s.handleAPIGeolocate)
		r.Get("/theme", s.handleAPIGetTheme)
		r.Post("/theme", s.handleAPISetTheme)
	})
	return r
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// render executes a template into a buffer so a failing template never
// produces a partial page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}
