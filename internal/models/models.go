package models

// Location is the currently selected place. It lives in memory only.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

// Place is a forward geocoding candidate.
type Place struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
	Name        string  `json:"name"`
}

type CurrentConditions struct {
	Time                string  `json:"time"`
	Interval            int     `json:"interval,omitempty"`
	Temperature         float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	RelativeHumidity    int     `json:"relative_humidity_2m"`
	IsDay               int     `json:"is_day"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WindDirection       int     `json:"wind_direction_10m"`
	WindGusts           float64 `json:"wind_gusts_10m"`
	Precipitation       float64 `json:"precipitation"`
	Rain                float64 `json:"rain"`
	Showers             float64 `json:"showers"`
	Snowfall            float64 `json:"snowfall"`
	WeatherCode         int     `json:"weather_code"`
	CloudCover          int     `json:"cloud_cover"`
	PressureMSL         float64 `json:"pressure_msl"`
	SurfacePressure     float64 `json:"surface_pressure"`
}

// IsDaytime reports whether the upstream day/night flag is set.
func (c CurrentConditions) IsDaytime() bool {
	return c.IsDay == 1
}

// DailyForecast holds parallel sequences indexed by date.
type DailyForecast struct {
	Time                        []string  `json:"time"`
	WeatherCode                 []int     `json:"weather_code"`
	TemperatureMax              []float64 `json:"temperature_2m_max"`
	TemperatureMin              []float64 `json:"temperature_2m_min"`
	Sunrise                     []string  `json:"sunrise"`
	Sunset                      []string  `json:"sunset"`
	RainSum                     []float64 `json:"rain_sum"`
	PrecipitationSum            []float64 `json:"precipitation_sum"`
	PrecipitationProbabilityMax []int     `json:"precipitation_probability_max"`
	WindSpeedMax                []float64 `json:"wind_speed_10m_max"`
	WindGustsMax                []float64 `json:"wind_gusts_10m_max"`
}

// HourlyForecast holds parallel sequences indexed by hour.
type HourlyForecast struct {
	Time                     []string  `json:"time"`
	Temperature              []float64 `json:"temperature_2m"`
	RelativeHumidity         []int     `json:"relative_humidity_2m"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	Precipitation            []float64 `json:"precipitation"`
	PrecipitationProbability []int     `json:"precipitation_probability"`
	WeatherCode              []int     `json:"weather_code"`
	WindSpeed                []float64 `json:"wind_speed_10m"`
	CloudCover               []int     `json:"cloud_cover"`
	Visibility               []float64 `json:"visibility"`
	PressureMSL              []float64 `json:"pressure_msl"`
}

type AirQualitySnapshot struct {
	Time            string  `json:"time"`
	PM10            float64 `json:"pm10"`
	PM25            float64 `json:"pm2_5"`
	CarbonMonoxide  float64 `json:"carbon_monoxide"`
	NitrogenDioxide float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  float64 `json:"sulphur_dioxide"`
	Ozone           float64 `json:"ozone"`
	EuropeanAQI     float64 `json:"european_aqi"`
	USAQI           float64 `json:"us_aqi"`
	Dust            float64 `json:"dust"`
	UVIndex         float64 `json:"uv_index"`
}

// WeatherData is one complete forecast result. It is replaced wholesale on
// every fetch; AirQuality is nil when the air-quality service was unavailable.
type WeatherData struct {
	Latitude             float64             `json:"latitude"`
	Longitude            float64             `json:"longitude"`
	Elevation            float64             `json:"elevation"`
	Timezone             string              `json:"timezone"`
	TimezoneAbbreviation string              `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int                 `json:"utc_offset_seconds"`
	Current              CurrentConditions   `json:"current"`
	Daily                DailyForecast       `json:"daily"`
	Hourly               HourlyForecast      `json:"hourly"`
	AirQuality           *AirQualitySnapshot `json:"airQuality,omitempty"`
}
