package styles

import (
	"testing"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemes(t *testing.T) {
	names := ThemeNames()
	require.Contains(t, names, DefaultTheme)

	for _, name := range names {
		p, ok := GetPalette(name)
		require.True(t, ok, name)
		assert.NotNil(t, p.Primary, name)
		assert.NotNil(t, p.Error, name)
	}

	_, ok := GetPalette("does-not-exist")
	assert.False(t, ok)
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)
	SetTheme(p)

	assert.Equal(t, p, CurrentPalette)
	assert.Equal(t, lipgloss.NewStyle().Foreground(p.Error).Bold(true).Render("x"), ErrorStyle.Render("x"))
}

func TestBlend(t *testing.T) {
	black := lipgloss.Color("#000000")
	white := lipgloss.Color("#ffffff")

	start, ok := colorful.MakeColor(Blend(black, white, 0))
	require.True(t, ok)
	assert.Equal(t, "#000000", start.Hex())

	end, ok := colorful.MakeColor(Blend(black, white, 1))
	require.True(t, ok)
	assert.Equal(t, "#ffffff", end.Hex())

	mid, ok := colorful.MakeColor(Blend(black, white, 0.5))
	require.True(t, ok)
	assert.NotEqual(t, "#000000", mid.Hex())
	assert.NotEqual(t, "#ffffff", mid.Hex())
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("high-contrast")
	require.True(t, ok)
	SetTheme(p)

	cfg := GlamourStyle()
	require.NotNil(t, cfg.Document.Color)
	assert.Equal(t, "#ffffff", *cfg.Document.Color)
	require.NotNil(t, cfg.Table.Color)
	assert.Equal(t, "#ffffff", *cfg.Table.Color)
	require.NotNil(t, cfg.H3.Color)
	assert.Equal(t, "#00afff", *cfg.H3.Color)
	require.NotNil(t, cfg.Strong.Color)
	assert.Equal(t, "#ff5f5f", *cfg.Strong.Color, "failures render in the error color")
}
