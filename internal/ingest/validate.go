package ingest

import (
	"github.com/lox/skyglass/internal/models"
)

const (
	FlagDailyMisaligned  = "daily_misaligned"
	FlagHourlyMisaligned = "hourly_misaligned"
	FlagHumidityInvalid  = "humidity_invalid"
	FlagWindDirInvalid   = "wind_dir_invalid"
	FlagAQINegative      = "aqi_negative"
)

// ValidateForecast checks a fetched record and returns quality flags. Flags
// are informational; the record is still used.
func ValidateForecast(data *models.WeatherData) []string {
	var flags []string

	d := data.Daily
	n := len(d.Time)
	if len(d.WeatherCode) != n || len(d.TemperatureMax) != n || len(d.TemperatureMin) != n ||
		len(d.Sunrise) != n || len(d.Sunset) != n || len(d.RainSum) != n ||
		len(d.PrecipitationSum) != n || len(d.PrecipitationProbabilityMax) != n ||
		len(d.WindSpeedMax) != n || len(d.WindGustsMax) != n {
		flags = append(flags, FlagDailyMisaligned)
	}

	h := data.Hourly
	n = len(h.Time)
	if len(h.Temperature) != n || len(h.RelativeHumidity) != n || len(h.ApparentTemperature) != n ||
		len(h.Precipitation) != n || len(h.PrecipitationProbability) != n || len(h.WeatherCode) != n ||
		len(h.WindSpeed) != n || len(h.CloudCover) != n || len(h.Visibility) != n ||
		len(h.PressureMSL) != n {
		flags = append(flags, FlagHourlyMisaligned)
	}

	if data.Current.RelativeHumidity < 0 || data.Current.RelativeHumidity > 100 {
		flags = append(flags, FlagHumidityInvalid)
	}

	if data.Current.WindDirection < 0 || data.Current.WindDirection > 360 {
		flags = append(flags, FlagWindDirInvalid)
	}

	if aq := data.AirQuality; aq != nil && (aq.USAQI < 0 || aq.EuropeanAQI < 0) {
		flags = append(flags, FlagAQINegative)
	}

	return flags
}
