package forecast

import "fmt"

// Theme is the user's persisted colour scheme choice.
type Theme string

const (
	ThemeWhite Theme = "white"
	ThemeBlack Theme = "black"
	ThemeBlue  Theme = "blue"
)

// DefaultTheme is used until the user picks one.
const DefaultTheme = ThemeWhite

// Themes lists the selectable themes in menu order.
func Themes() []Theme {
	return []Theme{ThemeWhite, ThemeBlack, ThemeBlue}
}

// ParseTheme accepts only the three known tags.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeWhite, ThemeBlack, ThemeBlue:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Label is the menu label for the theme.
func (t Theme) Label() string {
	switch t {
	case ThemeBlack:
		return "Dark"
	case ThemeBlue:
		return "Blue"
	default:
		return "Light"
	}
}

// Palette returns the card colours for the theme.
func (t Theme) Palette() Palette {
	if p, ok := themePalettes[t]; ok {
		return p
	}
	return themePalettes[DefaultTheme]
}
