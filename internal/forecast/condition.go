package forecast

// Icon is the presentation tag for a weather condition.
type Icon string

const (
	IconSun       Icon = "sun"
	IconCloudSun  Icon = "cloud-sun"
	IconCloud     Icon = "cloud"
	IconFog       Icon = "cloud-fog"
	IconDrizzle   Icon = "cloud-drizzle"
	IconRain      Icon = "cloud-rain"
	IconSnow      Icon = "snowflake"
	IconLightning Icon = "cloud-lightning"
)

// Glyph returns the character used to draw the icon on the dashboard.
func (i Icon) Glyph() string {
	switch i {
	case IconSun:
		return "☀"
	case IconCloudSun:
		return "⛅"
	case IconFog:
		return "🌫"
	case IconDrizzle:
		return "🌦"
	case IconRain:
		return "🌧"
	case IconSnow:
		return "❄"
	case IconLightning:
		return "⛈"
	default:
		return "☁"
	}
}

// Condition is the human-readable form of a WMO weather code.
type Condition struct {
	Description string
	Icon        Icon
}

// UnknownCondition is returned for codes outside the WMO table.
var UnknownCondition = Condition{Description: "Unknown", Icon: IconCloud}

var weatherCodes = map[int]Condition{
	0:  {"Clear sky", IconSun},
	1:  {"Mainly clear", IconSun},
	2:  {"Partly cloudy", IconCloudSun},
	3:  {"Overcast", IconCloud},
	45: {"Foggy", IconFog},
	48: {"Depositing rime fog", IconFog},
	51: {"Light drizzle", IconDrizzle},
	53: {"Moderate drizzle", IconDrizzle},
	55: {"Dense drizzle", IconDrizzle},
	61: {"Slight rain", IconRain},
	63: {"Moderate rain", IconRain},
	65: {"Heavy rain", IconRain},
	71: {"Slight snow", IconSnow},
	73: {"Moderate snow", IconSnow},
	75: {"Heavy snow", IconSnow},
	77: {"Snow grains", IconSnow},
	80: {"Slight rain showers", IconRain},
	81: {"Moderate rain showers", IconRain},
	82: {"Violent rain showers", IconRain},
	85: {"Slight snow showers", IconSnow},
	86: {"Heavy snow showers", IconSnow},
	95: {"Thunderstorm", IconLightning},
	96: {"Thunderstorm with slight hail", IconLightning},
	99: {"Thunderstorm with heavy hail", IconLightning},
}

// DescribeCode maps a WMO weather code to its description and icon.
// Codes outside the table fall back to UnknownCondition.
func DescribeCode(code int) Condition {
	if c, ok := weatherCodes[code]; ok {
		return c
	}
	return UnknownCondition
}

// KnownCodes returns the WMO codes the classifier recognises, in ascending order.
func KnownCodes() []int {
	return []int{0, 1, 2, 3, 45, 48, 51, 53, 55, 61, 63, 65, 71, 73, 75, 77, 80, 81, 82, 85, 86, 95, 96, 99}
}
