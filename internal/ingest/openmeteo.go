package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/htmlutil"
	"github.com/lox/skyglass/internal/httputil"
	"github.com/lox/skyglass/internal/metrics"
	"github.com/lox/skyglass/internal/models"
)

const (
	currentFields    = "temperature_2m,apparent_temperature,relative_humidity_2m,is_day,wind_speed_10m,wind_direction_10m,wind_gusts_10m,precipitation,rain,showers,snowfall,weather_code,cloud_cover,pressure_msl,surface_pressure"
	dailyFields      = "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset,rain_sum,precipitation_sum,precipitation_probability_max,wind_speed_10m_max,wind_gusts_10m_max"
	hourlyFields     = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,precipitation_probability,weather_code,wind_speed_10m,cloud_cover,visibility,pressure_msl"
	airQualityFields = "pm10,pm2_5,carbon_monoxide,nitrogen_dioxide,sulphur_dioxide,ozone,european_aqi,us_aqi,dust,uv_index"
)

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

// ForecastClient fetches forecasts and air quality from Open-Meteo.
type ForecastClient struct {
	forecastURL   string
	airQualityURL string
	client        *http.Client
	logger        *zap.Logger
}

func NewForecastClient(forecastURL, airQualityURL string, timeout time.Duration, logger *zap.Logger) *ForecastClient {
	return &ForecastClient{
		forecastURL:   forecastURL,
		airQualityURL: airQualityURL,
		client:        httputil.NewClient(timeout),
		logger:        logger.Named("openmeteo"),
	}
}

// Fetch returns the forecast for a coordinate. A failure of the forecast
// request is returned as an error with no record. The air-quality request is
// made only after the forecast succeeds, and any failure there leaves
// AirQuality nil.
func (f *ForecastClient) Fetch(ctx context.Context, lat, lon float64) (*models.WeatherData, error) {
	params := coordParams(lat, lon)
	params.Set("daily", dailyFields)
	params.Set("hourly", hourlyFields)
	params.Set("current", currentFields)
	params.Set("timezone", "auto")
	params.Set("past_days", "0")

	body, err := f.get(ctx, "forecast", f.forecastURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	var data models.WeatherData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("fetch forecast: unmarshal: %w", err)
	}
	data.AirQuality = nil

	aq, err := f.fetchAirQuality(ctx, lat, lon)
	if err != nil {
		f.logger.Info("air quality unavailable", zap.Error(err))
	} else {
		data.AirQuality = aq
	}

	if flags := ValidateForecast(&data); len(flags) > 0 {
		f.logger.Warn("forecast quality flags", zap.Strings("flags", flags))
	}

	return &data, nil
}

func (f *ForecastClient) fetchAirQuality(ctx context.Context, lat, lon float64) (*models.AirQualitySnapshot, error) {
	params := coordParams(lat, lon)
	params.Set("current", airQualityFields)

	body, err := f.get(ctx, "air-quality", f.airQualityURL, params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Current *models.AirQualitySnapshot `json:"current"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal air quality: %w", err)
	}
	if resp.Current == nil {
		return nil, fmt.Errorf("air quality response has no current block")
	}
	return resp.Current, nil
}

// get performs one GET with no retry and records the call in metrics.
func (f *ForecastClient) get(ctx context.Context, endpoint, base string, params url.Values) ([]byte, error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.UpstreamCallsTotal.WithLabelValues("open-meteo", endpoint, status).Inc()
		metrics.UpstreamLatency.WithLabelValues("open-meteo", endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: htmlutil.Snippet(string(body), 200)}
	}
	return body, nil
}

func coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	return params
}
