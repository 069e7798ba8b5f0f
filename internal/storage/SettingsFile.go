package storage

import (
	"fmt"
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"ratingd/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// SettingsFile persists the settings document and migrates older shapes
// of it on load.
type SettingsFile struct {
	path     string
	archiver *Archiver
	lock     *FileLock
	logger   providers.Logger
}

func NewSettingsFile(conf *structures.Config, archiver *Archiver, logger providers.Logger) (*SettingsFile, error) {
	path := conf.Storage.SettingsFile
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	return &SettingsFile{
		path:     path,
		archiver: archiver,
		lock:     NewFileLock(path + ".lock"),
		logger:   logger,
	}, nil
}

func (f *SettingsFile) Path() string {
	return f.path
}

// Load returns the settings document, creating it with defaults when it
// does not exist. The file is only rewritten when migration changed it.
func (f *SettingsFile) Load() (*models.Settings, error) {
	if err := f.lock.Lock(); err != nil {
		return nil, err
	}
	defer f.lock.Unlock()
	return f.loadLocked()
}

// Update re-reads the document, applies mutate to it and writes it back,
// all under the settings lock. Nothing is written when mutate fails.
func (f *SettingsFile) Update(mutate func(*models.Settings) error) (*models.Settings, error) {
	if err := f.lock.Lock(); err != nil {
		return nil, err
	}
	defer f.lock.Unlock()

	current, err := f.loadLocked()
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if err := f.save(next); err != nil {
		return nil, err
	}
	return next, nil
}

func (f *SettingsFile) loadLocked() (*models.Settings, error) {
	data, exists, err := readFileIfExists(f.path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", f.path, err)
	}
	if !exists {
		f.logger.Infof(providers.TypeApp, "Settings %s not found, writing defaults", f.path)
		return f.writeDefaults()
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		f.logger.Warnf(providers.TypeStorage, "Settings %s unreadable, restoring defaults", f.path)
		return f.restoreDefaults()
	}

	changed := migrateSettings(doc)
	if coerceSettings(doc) {
		f.logger.Warnf(providers.TypeStorage, "Settings %s held mistyped values, coerced", f.path)
		changed = true
	}

	settings, err := decodeSettings(doc)
	if err != nil {
		f.logger.Warnf(providers.TypeStorage, "Settings %s undecodable (%s), restoring defaults", f.path, err)
		return f.restoreDefaults()
	}

	if changed {
		f.logger.Infof(providers.TypeApp, "Migrated settings document %s", f.path)
		if err := f.save(settings); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

func (f *SettingsFile) restoreDefaults() (*models.Settings, error) {
	if _, err := f.archiver.Archive(f.path, ReasonCorrupt); err != nil {
		return nil, err
	}
	return f.writeDefaults()
}

func (f *SettingsFile) writeDefaults() (*models.Settings, error) {
	settings := models.DefaultSettings()
	if err := f.save(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (f *SettingsFile) save(s *models.Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := writeFileAtomic(f.path, data); err != nil {
		return fmt.Errorf("write settings %s: %w", f.path, err)
	}
	return nil
}

// migrateSettings brings an older document up to the current shape in
// place and reports whether anything changed. It is a no-op on a
// document it produced itself.
func migrateSettings(doc map[string]any) bool {
	changed := false

	if _, ok := doc["num_buttons"]; !ok {
		doc["num_buttons"] = models.DefaultNumButtons
		changed = true
	}
	if _, ok := doc["port"]; !ok {
		doc["port"] = models.DefaultPort
		changed = true
	}

	theme, ok := doc["theme"].(map[string]any)
	if !ok {
		theme = make(map[string]any, len(models.ThemeFields))
		doc["theme"] = theme
		changed = true
	}

	// root-level theme keys predate the nested object; a nested value wins
	for _, field := range models.ThemeFields {
		v, ok := doc[field]
		if !ok {
			continue
		}
		if _, nested := theme[field]; !nested {
			theme[field] = v
		}
		delete(doc, field)
		changed = true
	}

	defaults := models.DefaultTheme()
	for _, field := range models.ThemeFields {
		if _, ok := theme[field]; !ok {
			theme[field], _ = defaults.Get(field)
			changed = true
		}
	}

	if _, ok := doc["rainbow_glow"]; !ok {
		doc["rainbow_glow"] = true
		changed = true
	}

	return changed
}

// coerceSettings converts values stored with the wrong JSON type, such as
// "7" for num_buttons, and drops or defaults the ones that do not convert.
// It reports whether anything changed.
func coerceSettings(doc map[string]any) bool {
	changed := false
	set := func(key string, v any) {
		doc[key] = v
		changed = true
	}

	for key, fallback := range map[string]int{"num_buttons": models.DefaultNumButtons, "port": models.DefaultPort} {
		v := doc[key]
		if isWholeNumber(v) {
			continue
		}
		if n, err := cast.ToIntE(v); err == nil && v != nil {
			set(key, n)
		} else {
			set(key, fallback)
		}
	}

	if v := doc["rainbow_glow"]; v != nil {
		if _, ok := v.(bool); !ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				b = true
			}
			set("rainbow_glow", b)
		}
	}

	if v, ok := doc["max_columns"]; ok && v != nil {
		if !isWholeNumber(v) {
			if n, err := cast.ToIntE(v); err == nil {
				set("max_columns", n)
			} else {
				delete(doc, "max_columns")
				changed = true
			}
		}
	}
	if v, ok := doc["title"]; ok && v != nil {
		if _, isStr := v.(string); !isStr {
			if str, err := cast.ToStringE(v); err == nil {
				set("title", str)
			} else {
				delete(doc, "title")
				changed = true
			}
		}
	}

	if raw, ok := doc["hotkeys"]; ok && raw != nil {
		hotkeys, isMap := raw.(map[string]any)
		if !isMap {
			set("hotkeys", models.DefaultHotkeys())
		} else {
			for key, v := range hotkeys {
				if isWholeNumber(v) {
					continue
				}
				if n, err := cast.ToIntE(v); err == nil && v != nil {
					hotkeys[key] = n
				} else {
					delete(hotkeys, key)
				}
				changed = true
			}
		}
	}

	if theme, ok := doc["theme"].(map[string]any); ok {
		defaults := models.DefaultTheme()
		for field, v := range theme {
			if _, isStr := v.(string); isStr {
				continue
			}
			if str, err := cast.ToStringE(v); err == nil && v != nil {
				theme[field] = str
			} else if def, known := defaults.Get(field); known {
				theme[field] = def
			} else {
				delete(theme, field)
			}
			changed = true
		}
	}

	return changed
}

// isWholeNumber reports whether v decodes into an int field as is.
func isWholeNumber(v any) bool {
	switch n := v.(type) {
	case int:
		return true
	case float64:
		return n == float64(int64(n))
	}
	return false
}

func decodeSettings(doc map[string]any) (*models.Settings, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, err
	}
	if settings.Hotkeys == nil {
		settings.Hotkeys = make(map[string]int)
	}
	return &settings, nil
}
