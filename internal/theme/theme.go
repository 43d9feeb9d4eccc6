package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultName is the built-in theme used when no override is provided.
const DefaultName = "powerops"

// Token represents a semantic color slot within the CLI.
type Token string

const (
	ColorTextPrimary Token = "text.primary"
	ColorTextMuted   Token = "text.muted"
	ColorHeading     Token = "heading"
	ColorSuccess     Token = "success"
	ColorWarning     Token = "warning"
	ColorDanger      Token = "danger"
)

// Color stores light and dark variants for adaptive rendering.
type Color struct {
	Light string
	Dark  string
}

// Adaptive converts the color into a lipgloss adaptive color.
func (c Color) Adaptive() lipgloss.AdaptiveColor {
	light, dark := strings.TrimSpace(c.Light), strings.TrimSpace(c.Dark)
	switch {
	case light == "" && dark == "":
		return lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
	case light == "":
		light = dark
	case dark == "":
		dark = light
	}
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette represents a concrete theme.
type Palette struct {
	Name   string
	Colors map[Token]Color
}

// Color returns a color for the provided token, falling back to the default palette.
func (p Palette) Color(token Token) Color {
	if c, ok := p.Colors[token]; ok {
		return c
	}
	if c, ok := defaultPalette().Colors[token]; ok {
		return c
	}
	return Color{}
}

// ForegroundStyle returns a lipgloss style with the foreground set to the requested token.
func (p Palette) ForegroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Color(token).Adaptive())
}

var palettes = map[string]func() Palette{
	DefaultName:  defaultPalette,
	"monochrome": monochromePalette,
}

// Available returns the registered theme names, sorted.
func Available() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the palette with the provided name.
func Get(name string) (Palette, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = DefaultName
	}
	build, ok := palettes[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown color theme %q (available: %s)",
			name, strings.Join(Available(), ", "))
	}
	return build(), nil
}

func defaultPalette() Palette {
	return Palette{
		Name: DefaultName,
		Colors: map[Token]Color{
			ColorTextPrimary: {Light: "#1F2933", Dark: "#E4E7EB"},
			ColorTextMuted:   {Light: "#7B8794", Dark: "#9AA5B1"},
			ColorHeading:     {Light: "#0B4F9C", Dark: "#6CB2EB"},
			ColorSuccess:     {Light: "#1B7F3B", Dark: "#57D98B"},
			ColorWarning:     {Light: "#A86400", Dark: "#F7C948"},
			ColorDanger:      {Light: "#B42318", Dark: "#F97066"},
		},
	}
}

func monochromePalette() Palette {
	plain := Color{Light: "#000000", Dark: "#FFFFFF"}
	return Palette{
		Name: "monochrome",
		Colors: map[Token]Color{
			ColorTextPrimary: plain,
			ColorTextMuted:   {Light: "#555555", Dark: "#AAAAAA"},
			ColorHeading:     plain,
			ColorSuccess:     plain,
			ColorWarning:     plain,
			ColorDanger:      plain,
		},
	}
}
