package domain

import "fmt"

type View string

const (
	ViewLogin    View = "login"
	ViewHome     View = "home"
	ViewPrices   View = "prices"
	ViewProducts View = "products"
)

// Views lists every known view in display order.
var Views = []View{ViewLogin, ViewHome, ViewPrices, ViewProducts}

// ParseView returns ErrUnknownView for names outside Views.
func ParseView(name string) (View, error) {
	for _, v := range Views {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, name)
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme applies when no preference has been stored.
const DefaultTheme = ThemeDark

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ParseTheme returns false for anything other than "dark" or "light".
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), true
	}
	return "", false
}
