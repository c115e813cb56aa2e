package forecast

// Tier is the presentation tier of an AQI bucket.
type Tier int

const (
	TierGood Tier = iota
	TierModerate
	TierSensitive
	TierUnhealthy
	TierVeryUnhealthy
	TierHazardous
)

// Severity returns a numeric severity for sorting (higher = worse air).
func (t Tier) Severity() int {
	return int(t)
}

// CSSClass returns the CSS class for styling
func (t Tier) CSSClass() string {
	switch t {
	case TierModerate:
		return "aqi-moderate"
	case TierSensitive:
		return "aqi-sensitive"
	case TierUnhealthy:
		return "aqi-unhealthy"
	case TierVeryUnhealthy:
		return "aqi-very-unhealthy"
	case TierHazardous:
		return "aqi-hazardous"
	default:
		return "aqi-good"
	}
}

// AQILevel is one of the six fixed AQI ranges.
type AQILevel struct {
	Label string
	Tier  Tier
}

// aqiBuckets are ordered by inclusive upper bound.
var aqiBuckets = []struct {
	upper float64
	level AQILevel
}{
	{50, AQILevel{"Good", TierGood}},
	{100, AQILevel{"Moderate", TierModerate}},
	{150, AQILevel{"Unhealthy for Sensitive", TierSensitive}},
	{200, AQILevel{"Unhealthy", TierUnhealthy}},
	{300, AQILevel{"Very Unhealthy", TierVeryUnhealthy}},
}

// ClassifyAQI buckets an AQI value. Upper bounds are inclusive, so 50 is Good
// and anything above 300 is Hazardous. NaN and negative values land in Good.
func ClassifyAQI(v float64) AQILevel {
	if v != v {
		return aqiBuckets[0].level
	}
	for _, b := range aqiBuckets {
		if v <= b.upper {
			return b.level
		}
	}
	return AQILevel{"Hazardous", TierHazardous}
}
