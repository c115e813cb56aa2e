package forecast

// Palette defines the colours for a gradient or a theme.
type Palette struct {
	// From and To are the background gradient stops
	From string
	To   string
	// Card is the background for cards/panels
	Card string
	// CardBorder is an optional border/highlight for cards
	CardBorder string
	// Text is the primary text color
	Text string
	// TextMuted is the secondary/muted text color
	TextMuted string
	// Accent is the primary accent color (chart line, highlights)
	Accent string
	// AccentAlt is a secondary accent (feels-like line, etc.)
	AccentAlt string
}

var gradientPalettes = map[Gradient]Palette{
	GradientClear: {
		From:       "#4fa3f7", // bright sky
		To:         "#f9d976",
		Card:       "rgba(255,255,255,0.18)",
		CardBorder: "rgba(255,255,255,0.30)",
		Text:       "#ffffff",
		TextMuted:  "rgba(255,255,255,0.75)",
		Accent:     "#fff4c2",
		AccentAlt:  "#ff9f43",
	},
	GradientCloudy: {
		From:       "#8e9eab", // overcast gray
		To:         "#4b5a6a",
		Card:       "rgba(255,255,255,0.14)",
		CardBorder: "rgba(255,255,255,0.24)",
		Text:       "#f4f6f8",
		TextMuted:  "rgba(244,246,248,0.70)",
		Accent:     "#dfe9f3",
		AccentAlt:  "#f0b27a",
	},
	GradientRainy: {
		From:       "#3a6073", // rainy slate
		To:         "#16222a",
		Card:       "rgba(255,255,255,0.10)",
		CardBorder: "rgba(255,255,255,0.20)",
		Text:       "#e8f1f5",
		TextMuted:  "rgba(232,241,245,0.65)",
		Accent:     "#7fc8f8",
		AccentAlt:  "#c39bd3",
	},
	GradientNight: {
		From:       "#0f2027", // deep night
		To:         "#2c5364",
		Card:       "rgba(255,255,255,0.08)",
		CardBorder: "rgba(255,255,255,0.16)",
		Text:       "#dde0e8",
		TextMuted:  "rgba(221,224,232,0.60)",
		Accent:     "#7799cc",
		AccentAlt:  "#dd7755",
	},
}

var themePalettes = map[Theme]Palette{
	ThemeWhite: {
		Card:       "#ffffff",
		CardBorder: "#d0d8e0",
		Text:       "#1a2530",
		TextMuted:  "#506070",
		Accent:     "#2080b0",
		AccentAlt:  "#c06030",
	},
	ThemeBlack: {
		Card:       "#141420",
		CardBorder: "#252535",
		Text:       "#eeeeee",
		TextMuted:  "#8a8a9a",
		Accent:     "#4fc3f7",
		AccentAlt:  "#ff7043",
	},
	ThemeBlue: {
		Card:       "#10325c",
		CardBorder: "#1f4f8a",
		Text:       "#eaf2ff",
		TextMuted:  "#9db8dc",
		Accent:     "#66b3ff",
		AccentAlt:  "#ffb366",
	},
}
