package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/api"
	"github.com/lox/skyglass/internal/forecast"
	"github.com/lox/skyglass/internal/geocode"
	"github.com/lox/skyglass/internal/imagegen"
	"github.com/lox/skyglass/internal/ingest"
	"github.com/lox/skyglass/internal/models"
)

var berlin = models.Location{Latitude: 52.52, Longitude: 13.41, Name: "Berlin"}

type fakeWeather struct {
	mu       sync.Mutex
	snap     ingest.Snapshot
	location models.Location
	setErr   error
	selected []models.Location
}

func (f *fakeWeather) Snapshot() ingest.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeWeather) Location() models.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location
}

func (f *fakeWeather) SetLocation(ctx context.Context, loc models.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.location = loc
	f.selected = append(f.selected, loc)
	if f.setErr != nil {
		return f.setErr
	}
	if f.snap.Weather != nil {
		f.snap.Location = loc
		f.snap.Seq++
	}
	return nil
}

func (f *fakeWeather) Interval() time.Duration { return 10 * time.Minute }

type fakePlaces struct {
	places     []models.Place
	searchErr  error
	address    geocode.Address
	reverseErr error
}

func (f *fakePlaces) Search(ctx context.Context, query string) ([]models.Place, error) {
	return f.places, f.searchErr
}

func (f *fakePlaces) Reverse(ctx context.Context, lat, lon float64) (geocode.Address, error) {
	return f.address, f.reverseErr
}

type fakeThemes struct {
	saved []forecast.Theme
	err   error
}

func (f *fakeThemes) SaveTheme(t forecast.Theme) error {
	f.saved = append(f.saved, t)
	return f.err
}

func sampleWeather() *models.WeatherData {
	data := &models.WeatherData{
		Latitude:  52.52,
		Longitude: 13.41,
		Timezone:  "Europe/Berlin",
		Current: models.CurrentConditions{
			Time:                "2026-10-17T14:00",
			Temperature:         18.4,
			ApparentTemperature: 17.2,
			RelativeHumidity:    62,
			IsDay:               1,
			WindSpeed:           12.3,
			WindGusts:           25.1,
			WeatherCode:         2,
			CloudCover:          40,
			PressureMSL:         1015.2,
		},
		AirQuality: &models.AirQualitySnapshot{
			PM25:        8.3,
			PM10:        14.1,
			Ozone:       61.0,
			EuropeanAQI: 32,
			USAQI:       42,
			UVIndex:     3.2,
		},
	}
	for i := 0; i < 9; i++ {
		day := time.Date(2026, 10, 17+i, 0, 0, 0, 0, time.UTC)
		data.Daily.Time = append(data.Daily.Time, day.Format("2006-01-02"))
		data.Daily.WeatherCode = append(data.Daily.WeatherCode, 61)
		data.Daily.TemperatureMax = append(data.Daily.TemperatureMax, 20+float64(i))
		data.Daily.TemperatureMin = append(data.Daily.TemperatureMin, 10+float64(i))
		data.Daily.Sunrise = append(data.Daily.Sunrise, day.Format("2006-01-02")+"T07:31")
		data.Daily.Sunset = append(data.Daily.Sunset, day.Format("2006-01-02")+"T18:12")
		data.Daily.PrecipitationProbabilityMax = append(data.Daily.PrecipitationProbabilityMax, 30)
	}
	for i := 0; i < 48; i++ {
		hour := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
		data.Hourly.Time = append(data.Hourly.Time, hour.Format("2006-01-02T15:04"))
		data.Hourly.Temperature = append(data.Hourly.Temperature, 12+float64(i%12))
		data.Hourly.ApparentTemperature = append(data.Hourly.ApparentTemperature, 11+float64(i%12))
		data.Hourly.WeatherCode = append(data.Hourly.WeatherCode, 3)
		data.Hourly.PrecipitationProbability = append(data.Hourly.PrecipitationProbability, 10)
	}
	return data
}

func readyWeather() *fakeWeather {
	return &fakeWeather{
		location: berlin,
		snap: ingest.Snapshot{
			Location:  berlin,
			Weather:   sampleWeather(),
			FetchedAt: time.Now(),
			Seq:       1,
		},
	}
}

func newTestServer(t *testing.T, weather *fakeWeather, places *fakePlaces, themes *fakeThemes, opts api.Options) *api.Server {
	t.Helper()
	if places == nil {
		places = &fakePlaces{}
	}
	if themes == nil {
		themes = &fakeThemes{}
	}
	opts.Logger = zap.NewNop()
	return api.NewServer(weather, places, themes, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIndex_Dashboard(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, readyWeather(), nil, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	for _, want := range []string{"Berlin", "18°", "Partly cloudy", "Today", "Air Quality", "Good", "Wind Speed", "Sunrise"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestIndex_SearchScriptSendsEveryKeystroke(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, readyWeather(), nil, nil, api.Options{})

	body := do(t, srv.Handler(), "GET", "/", "").Body.String()
	start := strings.Index(body, `addEventListener("input"`)
	if start < 0 {
		t.Fatal("dashboard has no search input handler")
	}
	end := strings.Index(body[start:], `getElementById("theme")`)
	if end < 0 {
		t.Fatal("could not find end of search handler")
	}
	handler := body[start : start+end]

	for _, banned := range []string{"setTimeout", "clearTimeout", ".trim()"} {
		if strings.Contains(handler, banned) {
			t.Errorf("search handler uses %s; every input event must issue its own request on the raw value", banned)
		}
	}
	for _, want := range []string{"q.length < 2", "/api/search?q=", "mine !== seq"} {
		if !strings.Contains(handler, want) {
			t.Errorf("search handler missing %q", want)
		}
	}
}

func TestIndex_NoAirQualityPanel(t *testing.T) {
	t.Parallel()
	weather := readyWeather()
	weather.snap.Weather.AirQuality = nil
	srv := newTestServer(t, weather, nil, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), `id="air-quality"`) {
		t.Error("air quality panel rendered without air quality data")
	}
}

func TestIndex_Loading(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &fakeWeather{location: berlin}, nil, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Loading weather data...") {
		t.Error("expected loading page")
	}
}

func TestIndex_Error(t *testing.T) {
	t.Parallel()
	weather := &fakeWeather{
		location: berlin,
		snap:     ingest.Snapshot{Location: berlin, Err: errors.New("upstream down"), FetchedAt: time.Now(), Seq: 1},
	}
	srv := newTestServer(t, weather, nil, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Oops! Something went wrong") {
		t.Error("expected error page")
	}
}

func TestAPIWeather(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		weather *fakeWeather
		status  int
	}{
		{"ready", readyWeather(), http.StatusOK},
		{"not yet fetched", &fakeWeather{location: berlin}, http.StatusServiceUnavailable},
		{"fetch failed", &fakeWeather{snap: ingest.Snapshot{Err: errors.New("boom"), Seq: 1}}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.weather, nil, nil, api.Options{})
			w := do(t, srv.Handler(), "GET", "/api/weather", "")
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.status != http.StatusOK {
				return
			}
			var data models.WeatherData
			if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
				t.Fatal(err)
			}
			if data.AirQuality == nil || data.AirQuality.USAQI != 42 {
				t.Errorf("airQuality = %+v", data.AirQuality)
			}
		})
	}
}

func TestAPISearch(t *testing.T) {
	t.Parallel()
	places := &fakePlaces{places: []models.Place{
		{Latitude: 48.85, Longitude: 2.35, DisplayName: "Paris, Île-de-France, France", Name: "Paris"},
	}}
	srv := newTestServer(t, readyWeather(), places, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/api/search?q=Par", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []models.Place
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Paris" {
		t.Errorf("unexpected results %+v", got)
	}
}

func TestAPISearch_UpstreamErrorIsEmpty(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, readyWeather(), &fakePlaces{searchErr: errors.New("nominatim down")}, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/api/search?q=Paris", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("expected empty list, got %s", got)
	}
}

func TestAPILocation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		body     string
		status   int
		wantName string
	}{
		{"direct", `{"latitude": 51.5, "longitude": -0.12, "name": "London"}`, http.StatusOK, "London"},
		{"search result", `{"latitude": 48.85, "longitude": 2.35, "name": "Paris", "display_name": "Paris, Île-de-France, France"}`, http.StatusOK, "Paris, France"},
		{"search result without name", `{"latitude": 48.85, "longitude": 2.35, "display_name": "Paris, Île-de-France, France"}`, http.StatusOK, "Paris, France"},
		{"missing coords", `{"name": "Nowhere"}`, http.StatusBadRequest, ""},
		{"out of range", `{"latitude": 91, "longitude": 0, "name": "North"}`, http.StatusBadRequest, ""},
		{"missing name", `{"latitude": 1, "longitude": 1}`, http.StatusBadRequest, ""},
		{"bad json", `{`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weather := readyWeather()
			srv := newTestServer(t, weather, nil, nil, api.Options{})

			w := do(t, srv.Handler(), "POST", "/api/location", tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.status != http.StatusOK {
				if len(weather.selected) != 0 {
					t.Error("location changed on a rejected request")
				}
				return
			}
			if got := weather.Location().Name; got != tt.wantName {
				t.Errorf("location name = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestAPILocation_RefreshError(t *testing.T) {
	t.Parallel()
	weather := readyWeather()
	weather.setErr = errors.New("forecast: status 500")
	srv := newTestServer(t, weather, nil, nil, api.Options{})

	w := do(t, srv.Handler(), "POST", "/api/location", `{"latitude": 51.5, "longitude": -0.12, "name": "London"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "refresh_error") {
		t.Errorf("expected refresh_error in %s", w.Body.String())
	}
}

func TestAPILocation_StaleResultIsNotAnError(t *testing.T) {
	t.Parallel()
	weather := readyWeather()
	weather.setErr = ingest.ErrStaleResult
	srv := newTestServer(t, weather, nil, nil, api.Options{})

	w := do(t, srv.Handler(), "POST", "/api/location", `{"latitude": 51.5, "longitude": -0.12, "name": "London"}`)
	if strings.Contains(w.Body.String(), "refresh_error") {
		t.Errorf("stale result reported as error: %s", w.Body.String())
	}
}

func TestAPIGeolocate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		body       string
		places     *fakePlaces
		wantName   string
		wantNotice string
	}{
		{
			name:       "detected",
			body:       `{"latitude": 48.85, "longitude": 2.35}`,
			places:     &fakePlaces{address: geocode.Address{City: "Paris", Country: "France"}},
			wantName:   "Paris, France",
			wantNotice: "Location detected: Paris",
		},
		{
			name:     "reverse lookup failed",
			body:     `{"latitude": 48.85, "longitude": 2.35}`,
			places:   &fakePlaces{reverseErr: errors.New("timeout")},
			wantName: geocode.FallbackCity,
		},
		{
			name:       "denied",
			body:       `{"error": "User denied Geolocation"}`,
			places:     &fakePlaces{},
			wantName:   "Berlin",
			wantNotice: "Using default location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weather := readyWeather()
			srv := newTestServer(t, weather, tt.places, nil, api.Options{})
			h := srv.Handler()

			w := do(t, h, "POST", "/api/geolocate", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if got := weather.Location().Name; got != tt.wantName {
				t.Errorf("location = %q, want %q", got, tt.wantName)
			}

			page := do(t, h, "GET", "/", "").Body.String()
			if tt.wantNotice != "" && !strings.Contains(page, tt.wantNotice) {
				t.Errorf("dashboard missing notice %q", tt.wantNotice)
			}
			if tt.wantNotice == "" && strings.Contains(page, `class="toast"`) {
				t.Error("unexpected notice on dashboard")
			}

			// Notices are shown once.
			if again := do(t, h, "GET", "/", "").Body.String(); strings.Contains(again, `class="toast"`) {
				t.Error("notice shown twice")
			}
		})
	}
}

func TestAPIGeolocate_DeniedAfterLocationChange(t *testing.T) {
	t.Parallel()
	weather := readyWeather()
	srv := newTestServer(t, weather, nil, nil, api.Options{DefaultLocation: berlin})
	h := srv.Handler()

	if w := do(t, h, "POST", "/api/location", `{"latitude": 51.5, "longitude": -0.12, "name": "London"}`); w.Code != http.StatusOK {
		t.Fatalf("select location: %d", w.Code)
	}
	if w := do(t, h, "POST", "/api/geolocate", `{"error": "User denied Geolocation"}`); w.Code != http.StatusOK {
		t.Fatalf("geolocate: %d", w.Code)
	}

	if got := weather.Location().Name; got != "London" {
		t.Errorf("location = %q, want London kept", got)
	}
	page := do(t, h, "GET", "/", "").Body.String()
	if strings.Contains(page, api.NoticeDefaultLocation) {
		t.Error("claimed the default location while another city is selected")
	}
	if !strings.Contains(page, api.NoticeLocationUnavailable) {
		t.Errorf("dashboard missing notice %q", api.NoticeLocationUnavailable)
	}
}

func TestAPITheme(t *testing.T) {
	t.Parallel()
	themes := &fakeThemes{}
	srv := newTestServer(t, readyWeather(), nil, themes, api.Options{Theme: forecast.ThemeBlack})
	h := srv.Handler()

	w := do(t, h, "GET", "/api/theme", "")
	if !strings.Contains(w.Body.String(), `"theme":"black"`) {
		t.Errorf("unexpected theme response %s", w.Body.String())
	}

	w = do(t, h, "POST", "/api/theme", `{"theme": "blue"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if srv.Theme() != forecast.ThemeBlue {
		t.Errorf("theme = %q, want blue", srv.Theme())
	}
	if len(themes.saved) != 1 || themes.saved[0] != forecast.ThemeBlue {
		t.Errorf("saved = %v", themes.saved)
	}

	w = do(t, h, "POST", "/api/theme", `{"theme": "purple"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown theme, got %d", w.Code)
	}
	if srv.Theme() != forecast.ThemeBlue {
		t.Errorf("invalid theme changed preference to %q", srv.Theme())
	}
}

func TestAPITheme_SaveFailureKeepsTheme(t *testing.T) {
	t.Parallel()
	themes := &fakeThemes{err: errors.New("disk full")}
	srv := newTestServer(t, readyWeather(), nil, themes, api.Options{Theme: forecast.ThemeWhite})
	h := srv.Handler()

	w := do(t, h, "POST", "/api/theme", `{"theme": "black"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if srv.Theme() != forecast.ThemeWhite {
		t.Errorf("theme = %q after failed save, want white", srv.Theme())
	}
	if got := do(t, h, "GET", "/api/theme", ""); !strings.Contains(got.Body.String(), `"theme":"white"`) {
		t.Errorf("GET /api/theme after failed save = %s", got.Body.String())
	}
	if page := do(t, h, "GET", "/", "").Body.String(); !strings.Contains(page, `data-theme="white"`) {
		t.Error("dashboard switched theme after failed save")
	}
}

func TestNewServer_UnknownThemeFallsBack(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, readyWeather(), nil, nil, api.Options{Theme: "neon"})
	if srv.Theme() != forecast.DefaultTheme {
		t.Errorf("theme = %q, want default", srv.Theme())
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		weather *fakeWeather
		status  int
		want    string
	}{
		{"fresh", readyWeather(), http.StatusOK, "ok"},
		{"never fetched", &fakeWeather{location: berlin}, http.StatusServiceUnavailable, "degraded"},
		{"stale", &fakeWeather{location: berlin, snap: ingest.Snapshot{Weather: sampleWeather(), FetchedAt: time.Now().Add(-time.Hour), Seq: 1}}, http.StatusServiceUnavailable, "degraded"},
		{"failed", &fakeWeather{location: berlin, snap: ingest.Snapshot{Err: errors.New("boom"), FetchedAt: time.Now(), Seq: 1}}, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.weather, nil, nil, api.Options{})
			w := do(t, srv.Handler(), "GET", "/health", "")
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			var health api.HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
				t.Fatal(err)
			}
			if health.Status != tt.want {
				t.Errorf("status = %q, want %q", health.Status, tt.want)
			}
			if health.Location != "Berlin" && tt.weather.location == berlin {
				t.Errorf("location = %q", health.Location)
			}

			var raw map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
				t.Fatal(err)
			}
			_, hasLastFetch := raw["last_fetch"]
			if want := tt.weather.snap.Ready(); hasLastFetch != want {
				t.Errorf("last_fetch present = %v, want %v (body %s)", hasLastFetch, want, w.Body.String())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, readyWeather(), nil, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected default collectors in metrics output")
	}
}

func TestWeatherImage(t *testing.T) {
	t.Parallel()
	banner := []byte("\x89PNG\r\n\x1a\ncloudy")

	cache, err := imagegen.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Set(forecast.GradientCloudy, banner); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, readyWeather(), nil, nil, api.Options{ImageCache: cache})
	h := srv.Handler()

	// Weather code 2 during the day selects the cloudy gradient.
	w := do(t, h, "GET", "/weather-image", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), banner) {
		t.Error("served wrong banner")
	}

	if w := do(t, h, "GET", "/weather-image?gradient=gradient-rainy", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("uncached override without generator: expected 503, got %d", w.Code)
	}
	if w := do(t, h, "GET", "/weather-image?gradient=sparkly", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown gradient: expected 400, got %d", w.Code)
	}
}

func TestWeatherImage_NoCache(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, readyWeather(), nil, nil, api.Options{})
	if w := do(t, srv.Handler(), "GET", "/weather-image", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestOGImage(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, readyWeather(), nil, nil, api.Options{})

	w := do(t, srv.Handler(), "GET", "/og-image.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestOGImage_NoData(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &fakeWeather{location: berlin}, nil, nil, api.Options{})
	if w := do(t, srv.Handler(), "GET", "/og-image.png", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
