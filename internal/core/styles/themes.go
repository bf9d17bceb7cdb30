package styles

import (
	"image/color"
	"maps"
	"slices"

	lipgloss "charm.land/lipgloss/v2"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the semantic colors every style is derived from.
type Palette struct {
	Primary    color.Color
	Secondary  color.Color
	Foreground color.Color
	Muted      color.Color
	Background color.Color
	Surface    color.Color
	Success    color.Color
	Warning    color.Color
	Error      color.Color
}

// DefaultTheme is used when tui.theme is unset.
const DefaultTheme = "tokyo-night"

// hexPalette builds a Palette from hex strings, in Palette field order.
func hexPalette(primary, secondary, fg, muted, bg, surface, ok, warn, bad string) Palette {
	return Palette{
		Primary:    lipgloss.Color(primary),
		Secondary:  lipgloss.Color(secondary),
		Foreground: lipgloss.Color(fg),
		Muted:      lipgloss.Color(muted),
		Background: lipgloss.Color(bg),
		Surface:    lipgloss.Color(surface),
		Success:    lipgloss.Color(ok),
		Warning:    lipgloss.Color(warn),
		Error:      lipgloss.Color(bad),
	}
}

var themes = map[string]Palette{
	"tokyo-night": hexPalette("#7aa2f7", "#7dcfff", "#c0caf5", "#565f89", "#1a1b26", "#3b4261", "#9ece6a", "#e0af68", "#f7768e"),
	"gruvbox":     hexPalette("#83a598", "#8ec07c", "#ebdbb2", "#665c54", "#282828", "#3c3836", "#b8bb26", "#fabd2f", "#fb4934"),
	"catppuccin":  hexPalette("#89b4fa", "#94e2d5", "#cdd6f4", "#6c7086", "#1e1e2e", "#313244", "#a6e3a1", "#f9e2af", "#f38ba8"),
	// For cab screens in direct sunlight.
	"high-contrast": hexPalette("#00afff", "#00ffff", "#ffffff", "#b2b2b2", "#000000", "#303030", "#00ff5f", "#ffd700", "#ff5f5f"),
}

// ThemeNames returns the built-in theme names, sorted.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(themes))
}

// GetPalette looks up a built-in theme.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// Blend mixes a toward b by t in Lab space. Colors that cannot be
// converted return a unchanged.
func Blend(a, b color.Color, t float64) color.Color {
	ca, ok := colorful.MakeColor(a)
	if !ok {
		return a
	}
	cb, ok := colorful.MakeColor(b)
	if !ok {
		return a
	}
	return ca.BlendLab(cb, t).Clamped()
}

func hexOf(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle derives a glamour style from the active theme, starting from
// glamour's dark style. Tables use the foreground, and failed rows in the
// history table stand out through emphasis in the error color.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	p := CurrentPalette
	fg, primary, secondary, muted := hexOf(p.Foreground), hexOf(p.Primary), hexOf(p.Secondary), hexOf(p.Muted)

	for _, block := range []*glamouransi.StyleBlock{&cfg.Document, &cfg.Paragraph, &cfg.Table.StyleBlock} {
		block.Color = fg
	}
	for _, heading := range []*glamouransi.StyleBlock{&cfg.Heading, &cfg.H2, &cfg.H3, &cfg.H4, &cfg.H5, &cfg.H6} {
		heading.Color = primary
	}
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = hexOf(p.Surface)

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted
	cfg.CodeBlock.Color = muted
	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary
	cfg.Code.Color = secondary
	cfg.Strong.Color = hexOf(p.Error)

	return cfg
}
