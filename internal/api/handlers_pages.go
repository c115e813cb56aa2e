package api

import (
	"net/http"
	"time"

	"github.com/lox/skyglass/internal/forecast"
)

type statusPage struct {
	Palette forecast.Palette
	Theme   forecast.Theme
	Message string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.weather.Snapshot()
	theme := s.Theme()
	fallback := forecast.GradientClear.Palette()

	if snap.Err != nil {
		s.render(w, http.StatusBadGateway, "error.html", statusPage{
			Palette: fallback,
			Theme:   theme,
			Message: "Failed to load weather data. Please try again later.",
		})
		return
	}

	if snap.Weather == nil {
		s.render(w, http.StatusOK, "loading.html", statusPage{
			Palette: fallback,
			Theme:   theme,
			Message: "Loading weather data...",
		})
		return
	}

	view := buildDashboard(snap.Location, snap.Weather, theme)
	view.Notices = s.notices.Take()
	view.RefreshMins = int(s.weather.Interval().Minutes())

	s.render(w, http.StatusOK, "index.html", view)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.weather.Snapshot()
	health := HealthStatus{
		Status:     "ok",
		Location:   s.weather.Location().Name,
		AgeSeconds: -1,
	}

	staleThreshold := 2 * s.weather.Interval()
	if snap.Ready() {
		age := time.Since(snap.FetchedAt)
		fetchedAt := snap.FetchedAt
		health.LastFetch = &fetchedAt
		health.AgeSeconds = int(age.Seconds())
		health.Stale = age > staleThreshold
	} else {
		health.Stale = true
	}

	if health.Stale {
		health.Status = "degraded"
	}
	if snap.Err != nil {
		health.Status = "error"
		health.Error = snap.Err.Error()
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, health)
}
