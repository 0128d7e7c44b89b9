// Package preferences stores small per-session UI settings.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/argea-gh/herbaprimax-V3/internal/storage"
)

// ThemeKey is the storage key holding the theme name.
const ThemeKey = "herbaprima_theme"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("invalid theme")

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

type Service struct {
	store storage.Store
}

func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Theme returns the stored theme, or ThemeLight when none or an unknown
// value is stored.
func (s *Service) Theme(ctx context.Context) (Theme, error) {
	raw, err := s.store.Get(ctx, ThemeKey)
	if errors.Is(err, storage.ErrNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("get theme: %w", err)
	}
	t, err := ParseTheme(string(raw))
	if err != nil {
		return ThemeLight, nil
	}
	return t, nil
}

func (s *Service) SetTheme(ctx context.Context, name string) (Theme, error) {
	t, err := ParseTheme(name)
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, ThemeKey, []byte(t)); err != nil {
		return "", fmt.Errorf("set theme: %w", err)
	}
	return t, nil
}
