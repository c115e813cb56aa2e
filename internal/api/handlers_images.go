package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/forecast"
	"github.com/lox/skyglass/internal/imagegen"
)

// currentGradient is the gradient of the latest record, or clear when there
// is none.
func (s *Server) currentGradient() forecast.Gradient {
	snap := s.weather.Snapshot()
	if snap.Weather == nil {
		return forecast.GradientClear
	}
	cur := snap.Weather.Current
	return forecast.SelectGradient(cur.WeatherCode, cur.IsDaytime())
}

// handleWeatherImage serves the banner for the current gradient. The
// ?gradient= query parameter selects a specific one.
func (s *Server) handleWeatherImage(w http.ResponseWriter, r *http.Request) {
	if s.imageCache == nil {
		http.Error(w, "Weather image service unavailable", http.StatusServiceUnavailable)
		return
	}

	gradient := s.currentGradient()
	hasOverride := false
	if override := r.URL.Query().Get("gradient"); override != "" {
		gradient = forecast.Gradient(override)
		hasOverride = true
		if !knownGradient(gradient) {
			http.Error(w, "unknown gradient", http.StatusBadRequest)
			return
		}
	}

	if data, ok := s.imageCache.Get(gradient); ok {
		s.serveBannerImage(w, data)
		return
	}

	// Any cached banner is better than none (but not when a gradient was requested)
	if !hasOverride {
		if data, ok := s.imageCache.GetAny(); ok {
			go s.generateAndCache(gradient)
			s.serveBannerImage(w, data)
			return
		}
	}

	if s.imageGen != nil {
		s.genMu.Lock()
		defer s.genMu.Unlock()

		if data, ok := s.imageCache.Get(gradient); ok {
			s.serveBannerImage(w, data)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		data, err := s.imageGen.Generate(ctx, gradient)
		if err != nil {
			s.logger.Warn("banner generation failed", zap.Error(err))
			http.Error(w, "Image generation failed", http.StatusServiceUnavailable)
			return
		}
		if err := s.imageCache.Set(gradient, data); err != nil {
			s.logger.Warn("failed to cache banner", zap.Error(err))
		}
		s.serveBannerImage(w, data)
		return
	}

	http.Error(w, "Weather image service unavailable", http.StatusServiceUnavailable)
}

func knownGradient(g forecast.Gradient) bool {
	for _, known := range forecast.Gradients() {
		if g == known {
			return true
		}
	}
	return false
}

func (s *Server) serveBannerImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func (s *Server) generateAndCache(gradient forecast.Gradient) {
	if s.imageGen == nil {
		return
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	if _, ok := s.imageCache.Get(gradient); ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data, err := s.imageGen.Generate(ctx, gradient)
	if err != nil {
		s.logger.Warn("background banner generation failed", zap.Error(err))
		return
	}
	if err := s.imageCache.Set(gradient, data); err != nil {
		s.logger.Warn("failed to cache banner", zap.Error(err))
	}
}

// handleOGImage serves a dynamic Open Graph image with the current
// temperature and condition.
func (s *Server) handleOGImage(w http.ResponseWriter, r *http.Request) {
	if data, ok := s.ogImageCache.Get(); ok {
		s.serveOGImage(w, data)
		return
	}

	snap := s.weather.Snapshot()
	if snap.Weather == nil {
		http.Error(w, "weather data not yet available", http.StatusServiceUnavailable)
		return
	}

	cur := snap.Weather.Current
	gradient := forecast.SelectGradient(cur.WeatherCode, cur.IsDaytime())
	ogData := imagegen.OGImageData{
		Temperature: cur.Temperature,
		Condition:   forecast.DescribeCode(cur.WeatherCode).Description,
		Location:    snap.Location.Name,
		Gradient:    gradient,
	}

	var (
		img []byte
		err error
	)
	if banner, ok := s.banner(gradient); ok {
		img, err = imagegen.GenerateOGImage(banner, ogData)
	} else {
		img, err = imagegen.GenerateFallbackOGImage(ogData)
	}
	if err != nil {
		s.logger.Error("og-image: failed to generate", zap.Error(err))
		http.Error(w, "Failed to generate OG image", http.StatusInternalServerError)
		return
	}

	s.ogImageCache.Set(img)
	s.serveOGImage(w, img)
}

func (s *Server) banner(g forecast.Gradient) ([]byte, bool) {
	if s.imageCache == nil {
		return nil, false
	}
	if data, ok := s.imageCache.Get(g); ok {
		return data, true
	}
	return s.imageCache.GetAny()
}

func (s *Server) serveOGImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}
