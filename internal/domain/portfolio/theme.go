package portfolio

import "strings"

// Theme names a visual style for the public page. The stored value is kept
// as the backend sent it; use ParseTheme before relying on it.
type Theme string

const (
	ThemeMinimalWhite      Theme = "minimal-white"
	ThemePremiumDark       Theme = "premium-dark"
	ThemeVibrantGradient   Theme = "vibrant-gradient"
	ThemeSleekBlackGold    Theme = "sleek-black-gold"
	ThemeOceanBreeze       Theme = "ocean-breeze"
	ThemeCyberpunk         Theme = "cyberpunk"
	ThemeEarthyNature      Theme = "earthy-nature"
	ThemeBoldRedBlack      Theme = "bold-red-black"
	ThemePastelSoft        Theme = "pastel-soft"
	ThemeMonochromeClassic Theme = "monochrome-classic"

	DefaultTheme = ThemeMinimalWhite
)

// Themes lists every theme in the order the editor offers them.
var Themes = []Theme{
	ThemeMinimalWhite,
	ThemePremiumDark,
	ThemeVibrantGradient,
	ThemeSleekBlackGold,
	ThemeOceanBreeze,
	ThemeCyberpunk,
	ThemeEarthyNature,
	ThemeBoldRedBlack,
	ThemePastelSoft,
	ThemeMonochromeClassic,
}

var themeLabels = map[Theme]string{
	ThemeMinimalWhite:      "Minimal White",
	ThemePremiumDark:       "Premium Dark",
	ThemeVibrantGradient:   "Vibrant Gradient",
	ThemeSleekBlackGold:    "Sleek Black & Gold",
	ThemeOceanBreeze:       "Ocean Breeze",
	ThemeCyberpunk:         "Cyberpunk",
	ThemeEarthyNature:      "Earthy Nature",
	ThemeBoldRedBlack:      "Bold Red & Black",
	ThemePastelSoft:        "Pastel Soft",
	ThemeMonochromeClassic: "Monochrome Classic",
}

// ParseTheme accepts a theme id or its display label, case-insensitively.
func ParseTheme(s string) (Theme, bool) {
	s = strings.TrimSpace(s)
	if _, ok := themeLabels[Theme(strings.ToLower(s))]; ok {
		return Theme(strings.ToLower(s)), true
	}
	for t, label := range themeLabels {
		if strings.EqualFold(label, s) {
			return t, true
		}
	}
	return "", false
}

// ResolveTheme returns the theme to render with. ok is false when the stored
// value was set but not recognised.
func ResolveTheme(s Theme) (t Theme, ok bool) {
	if s == "" {
		return DefaultTheme, true
	}
	if t, ok := ParseTheme(string(s)); ok {
		return t, true
	}
	return DefaultTheme, false
}

func (t Theme) Label() string {
	if label, ok := themeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t Theme) Valid() bool {
	_, ok := themeLabels[t]
	return ok
}

// Stylesheet is the static asset path for the theme. Only known themes
// have one.
func (t Theme) Stylesheet() string {
	if !t.Valid() {
		return ""
	}
	return "/static/themes/" + string(t) + ".css"
}
