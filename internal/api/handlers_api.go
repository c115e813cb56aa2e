package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/forecast"
	"github.com/lox/skyglass/internal/geocode"
	"github.com/lox/skyglass/internal/ingest"
	"github.com/lox/skyglass/internal/models"
)

func (s *Server) handleAPIWeather(w http.ResponseWriter, r *http.Request) {
	snap := s.weather.Snapshot()
	switch {
	case snap.Err != nil:
		writeError(w, http.StatusBadGateway, snap.Err.Error())
	case snap.Weather == nil:
		writeError(w, http.StatusServiceUnavailable, "weather data not yet available")
	default:
		WriteJSON(w, http.StatusOK, snap.Weather)
	}
}

// handleAPISearch never fails: upstream errors produce an empty list.
func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	places, err := s.places.Search(r.Context(), query)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		places = []models.Place{}
	}
	WriteJSON(w, http.StatusOK, places)
}

type locationRequest struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
}

type locationResponse struct {
	Location     models.Location `json:"location"`
	RefreshError string          `json:"refresh_error,omitempty"`
}

// handleAPILocation selects a location, either directly or from a search
// result (display_name set), and refreshes before responding.
func (s *Server) handleAPILocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validCoords(req.Latitude, req.Longitude) {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required and must be in range")
		return
	}

	loc := models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude, Name: req.Name}
	if req.DisplayName != "" {
		loc.Name = geocode.SelectionLabel(models.Place{
			Latitude:    loc.Latitude,
			Longitude:   loc.Longitude,
			DisplayName: req.DisplayName,
			Name:        req.Name,
		})
	}
	if loc.Name == "" {
		writeError(w, http.StatusBadRequest, "name or display_name is required")
		return
	}

	WriteJSON(w, http.StatusOK, s.selectLocation(r.Context(), loc))
}

type geolocateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error"`
}

// handleAPIGeolocate receives the browser's geolocation outcome. Denial keeps
// the current location, and the notice only claims the default location when
// that is still the one selected. A failed reverse lookup names the spot
// "Your Location".
func (s *Server) handleAPIGeolocate(w http.ResponseWriter, r *http.Request) {
	var req geolocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Error != "" || !validCoords(req.Latitude, req.Longitude) {
		s.logger.Info("geolocation unavailable", zap.String("reason", req.Error))
		if s.weather.Location() == s.defaultLocation {
			s.notices.Push(NoticeDefaultLocation)
		} else {
			s.notices.Push(NoticeLocationUnavailable)
		}
		WriteJSON(w, http.StatusOK, locationResponse{Location: s.weather.Location()})
		return
	}

	loc := models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	addr, err := s.places.Reverse(r.Context(), loc.Latitude, loc.Longitude)
	if err != nil {
		s.logger.Warn("reverse lookup failed", zap.Error(err))
		loc.Name = geocode.FallbackCity
	} else {
		loc.Name = addr.Label()
		s.notices.Push("Location detected: " + addr.City)
	}

	WriteJSON(w, http.StatusOK, s.selectLocation(r.Context(), loc))
}

func (s *Server) selectLocation(ctx context.Context, loc models.Location) locationResponse {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), locationTimeout)
	defer cancel()

	s.ogImageCache.Invalidate()
	resp := locationResponse{Location: loc}
	if err := s.weather.SetLocation(ctx, loc); err != nil && !errors.Is(err, ingest.ErrStaleResult) {
		s.logger.Warn("refresh after location change failed", zap.Error(err))
		resp.RefreshError = err.Error()
	}
	return resp
}

func validCoords(lat, lon *float64) bool {
	return lat != nil && lon != nil &&
		*lat >= -90 && *lat <= 90 &&
		*lon >= -180 && *lon <= 180
}

type themeResponse struct {
	Theme  forecast.Theme `json:"theme"`
	Label  string         `json:"label"`
	Themes []ThemeOption  `json:"themes"`
}

func (s *Server) themeResponse() themeResponse {
	t := s.Theme()
	return themeResponse{Theme: t, Label: t.Label(), Themes: buildThemeOptions(t)}
}

func (s *Server) handleAPIGetTheme(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.themeResponse())
}

func (s *Server) handleAPISetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	theme, err := forecast.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The preference changes only once it is persisted. The lock spans the
	// save so concurrent changes reach the store in the order they apply.
	s.themeMu.Lock()
	if s.themes != nil {
		if err := s.themes.SaveTheme(theme); err != nil {
			s.themeMu.Unlock()
			s.logger.Error("save theme", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save theme")
			return
		}
	}
	s.theme = theme
	s.themeMu.Unlock()

	WriteJSON(w, http.StatusOK, s.themeResponse())
}
