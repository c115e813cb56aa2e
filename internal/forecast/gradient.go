package forecast

// Gradient names the page background theme for the current conditions.
type Gradient string

const (
	GradientClear  Gradient = "gradient-clear"
	GradientCloudy Gradient = "gradient-cloudy"
	GradientRainy  Gradient = "gradient-rainy"
	GradientNight  Gradient = "gradient-night"
)

// SelectGradient picks the background gradient for a weather code.
// Night wins over every code.
func SelectGradient(code int, isDay bool) Gradient {
	if !isDay {
		return GradientNight
	}
	switch {
	case code == 0 || code == 1:
		return GradientClear
	case code == 2 || code == 3:
		return GradientCloudy
	case code >= 51 && code <= 82:
		return GradientRainy
	case code >= 95:
		return GradientRainy
	default:
		return GradientClear
	}
}

// Palette returns the colour scheme drawn for the gradient.
func (g Gradient) Palette() Palette {
	if p, ok := gradientPalettes[g]; ok {
		return p
	}
	return gradientPalettes[GradientClear]
}

// Gradients lists every gradient in a stable order.
func Gradients() []Gradient {
	return []Gradient{GradientClear, GradientCloudy, GradientRainy, GradientNight}
}
