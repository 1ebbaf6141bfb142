package card

import (
	"errors"
	"strings"
)

// ErrCardGeneration is the user-facing error for any rendering failure.
var ErrCardGeneration = errors.New("failed to generate membership card")

type Color struct {
	R, G, B int
}

type Font struct {
	Family string
	Style  string
	Size   float64
}

// Theme parameterizes the card layout. Coordinates are in millimetres.
type Theme struct {
	Name string

	Width  float64
	Height float64

	Background Color
	Header     Color
	HeaderText Color
	Accent     Color
	Label      Color
	Value      Color

	Title    string
	Subtitle string
	Footer   string

	LogoLeft  string
	LogoRight string
	LogoMaxW  float64
	LogoMaxH  float64

	HeadingFont Font
	BodyFont    Font
}

// Data is what gets printed on a card.
type Data struct {
	Name           string
	RegistrationID string
	Email          string
	Department     string
	Year           string
}

func (d Data) rows() [][2]string {
	return [][2]string{
		{"NAME", d.Name},
		{"REGISTRATION ID", d.RegistrationID},
		{"EMAIL", d.Email},
		{"DEPARTMENT", d.Department},
		{"YEAR", d.Year},
	}
}

var DarkTheme = Theme{
	Name:        "dark",
	Width:       90,
	Height:      140,
	Background:  Color{18, 18, 28},
	Header:      Color{33, 37, 64},
	HeaderText:  Color{255, 255, 255},
	Accent:      Color{0, 168, 255},
	Label:       Color{150, 160, 190},
	Value:       Color{245, 245, 250},
	Title:       "C3 MEMBERSHIP CARD",
	Subtitle:    "Cloud Community Club",
	Footer:      "Show this card at club events.",
	LogoMaxW:    22,
	LogoMaxH:    22,
	HeadingFont: Font{Family: "Helvetica", Style: "B", Size: 13},
	BodyFont:    Font{Family: "Helvetica", Style: "", Size: 10},
}

var LightTheme = Theme{
	Name:        "light",
	Width:       90,
	Height:      140,
	Background:  Color{250, 250, 252},
	Header:      Color{0, 112, 243},
	HeaderText:  Color{255, 255, 255},
	Accent:      Color{255, 153, 0},
	Label:       Color{110, 110, 120},
	Value:       Color{20, 20, 30},
	Title:       "C3 MEMBERSHIP CARD",
	Subtitle:    "Cloud Community Club",
	Footer:      "Show this card at club events.",
	LogoMaxW:    22,
	LogoMaxH:    22,
	HeadingFont: Font{Family: "Helvetica", Style: "B", Size: 13},
	BodyFont:    Font{Family: "Helvetica", Style: "", Size: 10},
}

// ThemeByName returns a built-in theme; unknown names fall back to dark.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return LightTheme
	default:
		return DarkTheme
	}
}

// WithLogos returns a copy of t using the given logo files.
func (t Theme) WithLogos(left, right string) Theme {
	t.LogoLeft = left
	t.LogoRight = right
	return t
}

// FitBox scales a w x h image into maxW x maxH keeping its aspect ratio.
func FitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	aspect := w / h
	width := min(maxW, maxH*aspect)
	return width, width / aspect
}
