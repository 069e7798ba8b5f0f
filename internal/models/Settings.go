package models

import "strconv"

const (
	DefaultNumButtons = 5
	DefaultPort       = 7331
	MinButtons        = 1
	MaxButtons        = 10
)

// ThemeFields lists the theme keys in document order. Early settings
// documents stored them at the root.
var ThemeFields = []string{"font", "textColor", "glowColor", "headingColor", "menuBg", "bgImg"}

type Theme struct {
	Font         string `json:"font"`
	TextColor    string `json:"textColor"`
	GlowColor    string `json:"glowColor"`
	HeadingColor string `json:"headingColor"`
	MenuBg       string `json:"menuBg"`
	BgImg        string `json:"bgImg"`
}

func DefaultTheme() Theme {
	return Theme{
		Font:         "Segoe UI, sans-serif",
		TextColor:    "#ffffff",
		GlowColor:    "#00e5ff",
		HeadingColor: "#ffffff",
		MenuBg:       "rgba(0, 0, 0, 0.6)",
		BgImg:        "",
	}
}

// Get returns the value of a theme field by its document key.
func (t Theme) Get(field string) (string, bool) {
	switch field {
	case "font":
		return t.Font, true
	case "textColor":
		return t.TextColor, true
	case "glowColor":
		return t.GlowColor, true
	case "headingColor":
		return t.HeadingColor, true
	case "menuBg":
		return t.MenuBg, true
	case "bgImg":
		return t.BgImg, true
	}
	return "", false
}

// Set assigns a theme field by its document key.
func (t *Theme) Set(field, value string) bool {
	switch field {
	case "font":
		t.Font = value
	case "textColor":
		t.TextColor = value
	case "glowColor":
		t.GlowColor = value
	case "headingColor":
		t.HeadingColor = value
	case "menuBg":
		t.MenuBg = value
	case "bgImg":
		t.BgImg = value
	default:
		return false
	}
	return true
}

// Settings is the persisted user-facing settings document.
type Settings struct {
	Hotkeys     map[string]int `json:"hotkeys"`
	NumButtons  int            `json:"num_buttons"`
	Port        int            `json:"port"`
	Theme       Theme          `json:"theme"`
	RainbowGlow bool           `json:"rainbow_glow"`
	MaxColumns  *int           `json:"max_columns,omitempty"`
	Title       *string        `json:"title,omitempty"`
}

func DefaultHotkeys() map[string]int {
	hotkeys := make(map[string]int, MaxButtons)
	for i := 1; i <= MaxButtons; i++ {
		hotkeys[strconv.Itoa(i)] = i
	}
	return hotkeys
}

func DefaultSettings() *Settings {
	return &Settings{
		Hotkeys:     DefaultHotkeys(),
		NumButtons:  DefaultNumButtons,
		Port:        DefaultPort,
		Theme:       DefaultTheme(),
		RainbowGlow: true,
	}
}

func (s *Settings) Clone() *Settings {
	c := *s
	c.Hotkeys = make(map[string]int, len(s.Hotkeys))
	for k, v := range s.Hotkeys {
		c.Hotkeys[k] = v
	}
	if s.MaxColumns != nil {
		v := *s.MaxColumns
		c.MaxColumns = &v
	}
	if s.Title != nil {
		v := *s.Title
		c.Title = &v
	}
	return &c
}
