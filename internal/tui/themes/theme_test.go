package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"catppuccin-mocha", "default", "light"}, Names())
}

func TestLookup(t *testing.T) {
	theme, ok := Lookup("catppuccin-mocha")
	assert.True(t, ok)
	assert.Equal(t, palettes["catppuccin-mocha"].Muted, theme.Muted)

	_, ok = Lookup("solarized")
	assert.False(t, ok)
}

func TestGetTheme_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default.Muted, GetTheme("nope").Muted)
	assert.Equal(t, palettes["light"].Muted, GetTheme("light").Muted)
}
