package storage

import (
	"bytes"
	"errors"
	"fmt"
	"ratingd/internal/models"
	"ratingd/internal/providers"

	json "github.com/goccy/go-json"
)

var (
	emptyEventList = []byte("[]")

	errNotAList = errors.New("document is not a list")
)

// EventList is the structured-list representation: one JSON array that is
// rewritten as a whole on every change.
type EventList struct {
	path     string
	archiver *Archiver
	logger   providers.Logger
}

func NewEventList(path string, archiver *Archiver, logger providers.Logger) *EventList {
	return &EventList{path: path, archiver: archiver, logger: logger}
}

func (l *EventList) Path() string {
	return l.path
}

// EnsureIntegrity creates a missing list and replaces an unparsable or
// non-list document after archiving it. It reports whether a corrupt file
// was archived.
func (l *EventList) EnsureIntegrity() (bool, error) {
	data, exists, err := readFileIfExists(l.path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", l.path, err)
	}
	if !exists {
		return false, l.Reset()
	}
	if validateList(data) == nil {
		return false, nil
	}

	l.logger.Warnf(providers.TypeStorage, "Structured list %s failed validation, recreating", l.path)
	if _, err := l.archiver.Archive(l.path, ReasonCorrupt); err != nil {
		return false, err
	}
	return true, l.Reset()
}

// Read decodes the whole list. Any failure here means the source as a
// whole is unreadable.
func (l *EventList) Read() ([]models.ListEntry, error) {
	data, err := readFile(l.path)
	if err != nil {
		return nil, err
	}
	return decodeList(data)
}

func (l *EventList) Write(entries []models.ListEntry) error {
	if entries == nil {
		entries = []models.ListEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", l.path, err)
	}
	return writeFileAtomic(l.path, data)
}

func (l *EventList) Reset() error {
	return writeFileAtomic(l.path, emptyEventList)
}

func (l *EventList) Replace(raw []byte) error {
	return writeFileAtomic(l.path, raw)
}

func validateList(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if _, ok := doc.([]any); !ok {
		return errNotAList
	}
	return nil
}

func decodeList(data []byte) ([]models.ListEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotAList
	}
	var entries []models.ListEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
