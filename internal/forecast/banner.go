package forecast

import "fmt"

// baseStylePrompt defines the consistent visual style for all generated banners.
const baseStylePrompt = `Soft watercolor panorama of a city skyline under an open sky.
Style: impressionistic watercolor, smooth gradients, calm and minimal.
Wide panoramic composition suitable for a website header banner.
No text, no people, no logos.`

var gradientPrompts = map[Gradient]string{
	GradientClear:  "Bright daylight, clear blue sky fading to warm gold near the horizon, a few wisps of cloud.",
	GradientCloudy: "Overcast daylight, layered grey clouds, soft diffused light, muted colors.",
	GradientRainy:  "Rain falling over the skyline, dark slate clouds, wet reflective streets, fresh feeling.",
	GradientNight:  "NIGHTTIME SCENE. Deep blue-black sky, stars scattered above, city lights glowing softly below.",
}

// BuildBannerPrompt creates the image generation prompt for a gradient.
func BuildBannerPrompt(g Gradient) string {
	desc, ok := gradientPrompts[g]
	if !ok {
		desc = gradientPrompts[GradientClear]
	}
	return fmt.Sprintf("%s\n\n%s", desc, baseStylePrompt)
}
