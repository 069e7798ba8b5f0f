package services

import (
	"fmt"
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"strconv"
	"strings"
	"sync"

	"github.com/gookit/validate"
	"github.com/spf13/cast"
)

const (
	msgInvalidNumber = "Invalid number."
	msgInvalidRating = "Invalid rating."
	msgInvalidPort   = "Invalid port."
	msgEmptyTitle    = "Title must not be empty."
	msgNumpadKeys    = "Numpad keys 0-9 are reserved for default mappings."
	msgMissingKey    = "Key must not be empty."

	maxPort = 65535
)

type SettingsFileInterface interface {
	Load() (*models.Settings, error)
	Update(mutate func(*models.Settings) error) (*models.Settings, error)
}

type SettingsServiceInterface interface {
	Current() *models.Settings
	NumButtons() int
	Port() int
	Mutate(path string, value any) error
	RemapHotkey(key string, rating any) error
	SetNumButtons(value any) error
}

// SettingsService owns the in-memory copy of the settings document. Every
// mutation goes through the file so concurrent writers see each other.
type SettingsService struct {
	file   SettingsFileInterface
	logger providers.Logger

	mu      sync.RWMutex
	current *models.Settings
}

func NewSettingsService(file SettingsFileInterface, logger providers.Logger) (SettingsServiceInterface, error) {
	settings, err := file.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &SettingsService{file: file, logger: logger, current: settings}, nil
}

// Current returns a copy of the last loaded or written document.
func (s *SettingsService) Current() *models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *SettingsService) NumButtons() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.NumButtons
}

func (s *SettingsService) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Port
}

// Mutate sets one field of the document. Paths are top-level keys or
// theme.<field>.
func (s *SettingsService) Mutate(path string, value any) error {
	apply, err := settingMutation(path, value)
	if err != nil {
		return err
	}
	if err := s.update(apply); err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Setting %s updated", path)
	return nil
}

func (s *SettingsService) SetNumButtons(value any) error {
	return s.Mutate("num_buttons", value)
}

// RemapHotkey binds key to rating. The digit keys of the visible buttons
// and the numpad digits always keep their default mapping.
func (s *SettingsService) RemapHotkey(key string, rating any) error {
	n, err := cast.ToIntE(rating)
	if err != nil {
		return invalid("rating", msgInvalidRating)
	}
	if key == "" {
		return invalid("key", msgMissingKey)
	}

	err = s.update(func(st *models.Settings) error {
		if err := validate.Val(n, fmt.Sprintf("min:1|max:%d", st.NumButtons)); err != nil {
			return invalid("rating", msgInvalidRating)
		}
		if isDefaultKey(key, st.NumButtons) {
			return invalid("key", defaultKeysMessage(st.NumButtons))
		}
		if isNumpadKey(key) {
			return invalid("key", msgNumpadKeys)
		}

		delete(st.Hotkeys, key)
		for k, v := range st.Hotkeys {
			if v == n && !isDefaultKey(k, st.NumButtons) && !isNumpadKey(k) {
				delete(st.Hotkeys, k)
			}
		}
		st.Hotkeys[key] = n
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Mapped %q to rating %d", key, n)
	return nil
}

func (s *SettingsService) update(mutate func(*models.Settings) error) error {
	updated, err := s.file.Update(mutate)
	if err != nil {
		if _, ok := AsValidationError(err); ok {
			return err
		}
		s.logger.Errorf(providers.TypeApp, "Settings write failed: %s", err)
		return fmt.Errorf("persist settings: %w", err)
	}

	s.mu.Lock()
	s.current = updated
	s.mu.Unlock()
	return nil
}

func settingMutation(path string, value any) (func(*models.Settings) error, error) {
	switch path {
	case "num_buttons":
		n, err := intInRange(path, value, models.MinButtons, models.MaxButtons, msgInvalidNumber)
		if err != nil {
			return nil, err
		}
		return func(st *models.Settings) error { st.NumButtons = n; return nil }, nil

	case "max_columns":
		n, err := intInRange(path, value, models.MinButtons, models.MaxButtons, msgInvalidNumber)
		if err != nil {
			return nil, err
		}
		return func(st *models.Settings) error { st.MaxColumns = &n; return nil }, nil

	case "port":
		n, err := intInRange(path, value, 1, maxPort, msgInvalidPort)
		if err != nil {
			return nil, err
		}
		return func(st *models.Settings) error { st.Port = n; return nil }, nil

	case "title":
		str, err := cast.ToStringE(value)
		if err != nil {
			return nil, invalid(path, msgEmptyTitle)
		}
		title := strings.TrimSpace(str)
		if err := validate.Val(title, "required"); err != nil {
			return nil, invalid(path, msgEmptyTitle)
		}
		return func(st *models.Settings) error { st.Title = &title; return nil }, nil

	case "rainbow_glow":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, invalid(path, "Invalid value.")
		}
		return func(st *models.Settings) error { st.RainbowGlow = b; return nil }, nil
	}

	if field, ok := strings.CutPrefix(path, "theme."); ok {
		if _, known := models.DefaultTheme().Get(field); !known {
			return nil, invalid(path, "Unknown theme field.")
		}
		str, err := cast.ToStringE(value)
		if err != nil {
			return nil, invalid(path, "Invalid value.")
		}
		return func(st *models.Settings) error { st.Theme.Set(field, str); return nil }, nil
	}

	return nil, invalid(path, "Unknown setting.")
}

func intInRange(field string, value any, lo, hi int, message string) (int, error) {
	if value == nil {
		return 0, invalid(field, message)
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return 0, invalid(field, message)
	}
	if err := validate.Val(n, fmt.Sprintf("min:%d|max:%d", lo, hi)); err != nil {
		return 0, invalid(field, message)
	}
	return n, nil
}

// isDefaultKey reports whether key is one of the digit keys "1".."9"
// bound to a visible button, or "0" when the tenth button is shown.
func isDefaultKey(key string, numButtons int) bool {
	if key == "0" {
		return numButtons >= 10
	}
	d, err := strconv.Atoi(key)
	if err != nil || len(key) != 1 {
		return false
	}
	return d >= 1 && d <= min(numButtons, 9)
}

func isNumpadKey(key string) bool {
	digit, ok := strings.CutPrefix(key, "Numpad")
	return ok && len(digit) == 1 && digit[0] >= '0' && digit[0] <= '9'
}

func defaultKeysMessage(numButtons int) string {
	last := strconv.Itoa(numButtons)
	if numButtons >= 10 {
		last = "0"
	}
	return fmt.Sprintf("Default keys 1-%s are always mapped.", last)
}
