package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/api"
	"github.com/lox/skyglass/internal/geocode"
	"github.com/lox/skyglass/internal/imagegen"
	"github.com/lox/skyglass/internal/ingest"
	"github.com/lox/skyglass/internal/models"
	"github.com/lox/skyglass/internal/store"
)

type ServeCmd struct {
	Host      string `env:"SKYGLASS_HOST" help:"Host address to bind to."`
	Port      int    `env:"SKYGLASS_PORT" help:"HTTP server port."`
	DB        string `env:"SKYGLASS_DB" type:"path" help:"Path to SQLite preferences database."`
	NoPoll    bool   `help:"Disable periodic refresh (server only, for local dev)."`
	OpenAIKey string `name:"openai-api-key" env:"OPENAI_API_KEY" help:"OpenAI API key for banner images."`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.DB != "" {
		cfg.Storage.DBPath = c.DB
	}

	st, err := store.Open(cfg.Storage.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	theme, err := st.LoadTheme()
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	fetcher := ingest.NewForecastClient(cfg.Endpoints.ForecastURL, cfg.Endpoints.AirQualityURL, cfg.RequestTimeout(), logger)
	geocoder := geocode.NewClient(cfg.Endpoints.GeocodeURL, cfg.Geocode.UserAgent,
		cfg.Geocode.RequestsPerSecond, cfg.Geocode.Burst, cfg.RequestTimeout(), logger)

	loc := models.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Name:      cfg.Location.Name,
	}
	scheduler := ingest.NewScheduler(fetcher, loc, cfg.RefreshInterval(), logger)

	opts := api.Options{
		Addr:            cfg.Addr(),
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
		Theme:           theme,
		DefaultLocation: loc,
		OGCacheTTL:      time.Duration(cfg.Images.OGCacheMinutes) * time.Minute,
		Logger:          logger,
	}

	cache, err := imagegen.NewCache(cfg.Images.CacheDir, time.Duration(cfg.Images.BannerMaxAgeHours)*time.Hour)
	if err != nil {
		logger.Warn("banner cache unavailable", zap.Error(err))
	} else {
		opts.ImageCache = cache
		gen, err := imagegen.NewGenerator(c.OpenAIKey, logger)
		switch {
		case errors.Is(err, imagegen.ErrNoAPIKey):
			logger.Info("OPENAI_API_KEY not set, serving cached banners only")
		case err != nil:
			logger.Warn("banner generator unavailable", zap.Error(err))
		default:
			opts.ImageGen = gen
		}
	}

	server := api.NewServer(scheduler, geocoder, st, opts)
	if opts.ImageGen != nil {
		scheduler.SetImageGenerator(opts.ImageGen, opts.ImageCache, server.ImageGenMutex())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if c.NoPoll {
		logger.Info("polling disabled, fetching once")
		if err := scheduler.Refresh(ctx); err != nil {
			logger.Warn("initial fetch failed", zap.Error(err))
		}
	} else {
		go scheduler.Run(ctx)
	}

	err = server.Run(ctx)

	if saveErr := st.SaveTheme(server.Theme()); saveErr != nil {
		logger.Warn("save theme on shutdown", zap.Error(saveErr))
	}
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

type FetchCmd struct {
	NoAirQuality bool `help:"Omit the air quality block from the output."`
}

func (c *FetchCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := ingest.NewForecastClient(cfg.Endpoints.ForecastURL, cfg.Endpoints.AirQualityURL, cfg.RequestTimeout(), logger)
	data, err := fetcher.Fetch(ctx, cfg.Location.Latitude, cfg.Location.Longitude)
	if err != nil {
		return err
	}
	if c.NoAirQuality {
		data.AirQuality = nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

type SearchCmd struct {
	Query string `arg:"" help:"Place name to search for."`
}

func (c *SearchCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	geocoder := geocode.NewClient(cfg.Endpoints.GeocodeURL, cfg.Geocode.UserAgent,
		cfg.Geocode.RequestsPerSecond, cfg.Geocode.Burst, cfg.RequestTimeout(), logger)
	places, err := geocoder.Search(ctx, c.Query)
	if err != nil {
		return err
	}
	if len(places) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, p := range places {
		fmt.Printf("%-40s %9.4f %9.4f  %s\n", geocode.SelectionLabel(p), p.Latitude, p.Longitude, p.DisplayName)
	}
	return nil
}
