package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/lox/skyglass/internal/forecast"
	"github.com/lox/skyglass/internal/models"
)

const (
	hourlyEntries = 24
	dailyEntries  = 7
)

// DashboardView is everything the index template renders.
type DashboardView struct {
	Location    string
	LastUpdated string
	Gradient    forecast.Gradient
	Palette     forecast.Palette
	Theme       forecast.Theme
	Themes      []ThemeOption
	Current     CurrentView
	Hourly      []HourView
	Daily       []DayView
	Chart       ChartView
	Details     []DetailView
	AirQuality  *AirQualityView
	Notices     []string
	RefreshMins int
}

type ThemeOption struct {
	Value    forecast.Theme `json:"value"`
	Label    string         `json:"label"`
	Selected bool           `json:"selected"`
}

type CurrentView struct {
	Temperature   int
	FeelsLike     int
	Description   string
	Icon          forecast.Icon
	Wind          int
	Humidity      int
	Precipitation float64
	CloudCover    int
}

type HourView struct {
	Time          string
	Temperature   int
	Icon          forecast.Icon
	Precipitation int
}

type DayView struct {
	Day           string
	Date          string
	Description   string
	Icon          forecast.Icon
	Max           int
	Min           int
	Precipitation int
}

// ChartView holds the temperature and feels-like series for the next 24 hours.
type ChartView struct {
	Labels      []string `json:"labels"`
	Temperature []int    `json:"temperature"`
	FeelsLike   []int    `json:"feelsLike"`
}

const (
	chartWidth  = 600
	chartHeight = 220
	chartPad    = 20
)

// bounds returns the min and max over both series, padded so flat series
// still get a visible range.
func (c ChartView) bounds() (lo, hi int) {
	if len(c.Temperature) == 0 {
		return 0, 1
	}
	lo, hi = c.Temperature[0], c.Temperature[0]
	for _, series := range [][]int{c.Temperature, c.FeelsLike} {
		for _, v := range series {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo - 1, hi + 1
}

// points renders a series as SVG polyline points.
func (c ChartView) points(series []int) string {
	if len(series) == 0 {
		return ""
	}
	lo, hi := c.bounds()
	step := 0.0
	if len(series) > 1 {
		step = float64(chartWidth-2*chartPad) / float64(len(series)-1)
	}
	var b strings.Builder
	for i, v := range series {
		x := float64(chartPad) + step*float64(i)
		y := float64(chartPad) + float64(hi-v)/float64(hi-lo)*float64(chartHeight-2*chartPad)
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(x, 'f', 1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(y, 'f', 1, 64))
	}
	return b.String()
}

func (c ChartView) TemperaturePoints() string { return c.points(c.Temperature) }
func (c ChartView) FeelsLikePoints() string   { return c.points(c.FeelsLike) }
func (c ChartView) Width() int                { return chartWidth }
func (c ChartView) Height() int               { return chartHeight }

// Range is the displayed temperature range, for axis labels.
func (c ChartView) Range() [2]int {
	lo, hi := c.bounds()
	return [2]int{lo, hi}
}

type DetailView struct {
	Label    string
	Value    string
	Subtitle string
}

type AQIView struct {
	Value int
	Level forecast.AQILevel
}

type AirQualityView struct {
	US         AQIView
	European   AQIView
	Pollutants []DetailView
}

func buildThemeOptions(current forecast.Theme) []ThemeOption {
	themes := forecast.Themes()
	opts := make([]ThemeOption, 0, len(themes))
	for _, t := range themes {
		opts = append(opts, ThemeOption{Value: t, Label: t.Label(), Selected: t == current})
	}
	return opts
}

// buildDashboard maps a forecast record to its view. Sequences shorter than
// the display window are shown as far as they go.
func buildDashboard(loc models.Location, data *models.WeatherData, theme forecast.Theme) DashboardView {
	cur := data.Current
	cond := forecast.DescribeCode(cur.WeatherCode)
	gradient := forecast.SelectGradient(cur.WeatherCode, cur.IsDaytime())

	return DashboardView{
		Location:    loc.Name,
		LastUpdated: forecast.FormatClock(cur.Time),
		Gradient:    gradient,
		Palette:     gradient.Palette(),
		Theme:       theme,
		Themes:      buildThemeOptions(theme),
		Current: CurrentView{
			Temperature:   forecast.Round(cur.Temperature),
			FeelsLike:     forecast.Round(cur.ApparentTemperature),
			Description:   cond.Description,
			Icon:          cond.Icon,
			Wind:          forecast.Round(cur.WindSpeed),
			Humidity:      cur.RelativeHumidity,
			Precipitation: cur.Precipitation,
			CloudCover:    cur.CloudCover,
		},
		Hourly:     buildHourly(data.Hourly),
		Daily:      buildDaily(data.Daily),
		Chart:      buildChart(data.Hourly),
		Details:    buildDetails(cur, data.Daily),
		AirQuality: buildAirQuality(data.AirQuality),
	}
}

func buildHourly(h models.HourlyForecast) []HourView {
	n := min(len(h.Time), hourlyEntries, len(h.Temperature), len(h.WeatherCode), len(h.PrecipitationProbability))
	hours := make([]HourView, 0, n)
	for i := 0; i < n; i++ {
		hours = append(hours, HourView{
			Time:          forecast.FormatHour(h.Time[i]),
			Temperature:   forecast.Round(h.Temperature[i]),
			Icon:          forecast.DescribeCode(h.WeatherCode[i]).Icon,
			Precipitation: h.PrecipitationProbability[i],
		})
	}
	return hours
}

func buildDaily(d models.DailyForecast) []DayView {
	n := min(len(d.Time), dailyEntries, len(d.WeatherCode), len(d.TemperatureMax), len(d.TemperatureMin), len(d.PrecipitationProbabilityMax))
	days := make([]DayView, 0, n)
	for i := 0; i < n; i++ {
		cond := forecast.DescribeCode(d.WeatherCode[i])
		day := forecast.FormatWeekday(d.Time[i])
		if i == 0 {
			day = "Today"
		}
		days = append(days, DayView{
			Day:           day,
			Date:          forecast.FormatMonthDay(d.Time[i]),
			Description:   cond.Description,
			Icon:          cond.Icon,
			Max:           forecast.Round(d.TemperatureMax[i]),
			Min:           forecast.Round(d.TemperatureMin[i]),
			Precipitation: d.PrecipitationProbabilityMax[i],
		})
	}
	return days
}

func buildChart(h models.HourlyForecast) ChartView {
	n := min(len(h.Time), hourlyEntries, len(h.Temperature), len(h.ApparentTemperature))
	chart := ChartView{
		Labels:      make([]string, 0, n),
		Temperature: make([]int, 0, n),
		FeelsLike:   make([]int, 0, n),
	}
	for i := 0; i < n; i++ {
		chart.Labels = append(chart.Labels, forecast.FormatHour(h.Time[i]))
		chart.Temperature = append(chart.Temperature, forecast.Round(h.Temperature[i]))
		chart.FeelsLike = append(chart.FeelsLike, forecast.Round(h.ApparentTemperature[i]))
	}
	return chart
}

func buildDetails(cur models.CurrentConditions, d models.DailyForecast) []DetailView {
	details := []DetailView{
		{Label: "Wind Speed", Value: strconv.Itoa(forecast.Round(cur.WindSpeed)) + " km/h", Subtitle: "Gusts: " + strconv.Itoa(forecast.Round(cur.WindGusts)) + " km/h"},
		{Label: "Humidity", Value: strconv.Itoa(cur.RelativeHumidity) + "%", Subtitle: "Relative humidity"},
		{Label: "Pressure", Value: strconv.Itoa(forecast.Round(cur.PressureMSL)) + " hPa", Subtitle: "Mean sea level"},
		{Label: "Cloud Cover", Value: strconv.Itoa(cur.CloudCover) + "%", Subtitle: "Sky coverage"},
	}
	if len(d.Sunrise) > 0 {
		details = append(details, DetailView{Label: "Sunrise", Value: forecast.FormatClock(d.Sunrise[0]), Subtitle: "Dawn time"})
	}
	if len(d.Sunset) > 0 {
		details = append(details, DetailView{Label: "Sunset", Value: forecast.FormatClock(d.Sunset[0]), Subtitle: "Dusk time"})
	}
	return details
}

func buildAirQuality(aq *models.AirQualitySnapshot) *AirQualityView {
	if aq == nil {
		return nil
	}
	const unit = " μg/m³"
	return &AirQualityView{
		US:       AQIView{Value: forecast.Round(aq.USAQI), Level: forecast.ClassifyAQI(aq.USAQI)},
		European: AQIView{Value: forecast.Round(aq.EuropeanAQI), Level: forecast.ClassifyAQI(aq.EuropeanAQI)},
		Pollutants: []DetailView{
			{Label: "PM2.5", Value: forecast.Fixed1(aq.PM25) + unit},
			{Label: "PM10", Value: forecast.Fixed1(aq.PM10) + unit},
			{Label: "O₃", Value: forecast.Fixed1(aq.Ozone) + unit},
			{Label: "NO₂", Value: forecast.Fixed1(aq.NitrogenDioxide) + unit},
			{Label: "SO₂", Value: forecast.Fixed1(aq.SulphurDioxide) + unit},
			{Label: "UV Index", Value: forecast.Fixed1(aq.UVIndex)},
		},
	}
}

// HealthStatus is the /health response.
type HealthStatus struct {
	Status     string     `json:"status"`
	Location   string     `json:"location"`
	LastFetch  *time.Time `json:"last_fetch,omitempty"`
	AgeSeconds int        `json:"age_seconds"`
	Stale      bool       `json:"stale"`
	Error      string     `json:"error,omitempty"`
}
