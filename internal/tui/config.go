package tui

import (
	"context"
	"time"

	"github.com/Veraticus/spend/internal/model"
	"github.com/Veraticus/spend/internal/tui/themes"
)

// DelegateLister lists the users whose payments the caller may browse.
type DelegateLister interface {
	SharedToMe(ctx context.Context) ([]string, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme          themes.Theme
	Delegates      DelegateLister
	Context        model.ViewContext
	Currencies     []model.Currency
	RequestTimeout time.Duration
	ToastDuration  time.Duration
	Width          int
	Height         int
	HideEmptyDays  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:          themes.Default,
		Context:        model.DefaultViewContext(),
		Currencies:     model.KnownCurrencies,
		RequestTimeout: 30 * time.Second,
		ToastDuration:  4 * time.Second,
		Width:          80,
		Height:         24,
		HideEmptyDays:  true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithDelegates enables switching to other users' shared payments.
func WithDelegates(d DelegateLister) Option {
	return func(c *Config) {
		c.Delegates = d
	}
}

// WithViewContext sets the context the browser opens with.
func WithViewContext(vc model.ViewContext) Option {
	return func(c *Config) {
		c.Context = vc
	}
}

// WithHideEmptyDays controls whether days left empty by the currency filter
// are shown.
func WithHideEmptyDays(hide bool) Option {
	return func(c *Config) {
		c.HideEmptyDays = hide
	}
}

// WithRequestTimeout bounds each load issued by the browser.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.RequestTimeout = d
		}
	}
}

// WithToastDuration sets how long status messages stay visible.
func WithToastDuration(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ToastDuration = d
		}
	}
}
