package models

import (
	"bytes"

	json "github.com/goccy/go-json"
)

type RatingEvent struct {
	Date   string `json:"date"`
	Rating int    `json:"rating"`
}

type EntryKind int

const (
	// EntryEvent is a {"date": ..., "rating": ...} object.
	EntryEvent EntryKind = iota
	// EntryLegacy is a bare integer rating written by early versions.
	EntryLegacy
	// EntryUnknown is anything else; it is kept verbatim on rewrite.
	EntryUnknown
)

// ListEntry is one element of the structured list. The raw encoding is
// retained so that entries the store does not touch are written back
// exactly as they were read.
type ListEntry struct {
	Kind   EntryKind
	Fields map[string]any
	Legacy int
	raw    []byte
}

func NewEventEntry(ev RatingEvent) ListEntry {
	raw, _ := json.Marshal(ev)
	return ListEntry{
		Kind:   EntryEvent,
		Fields: map[string]any{"date": ev.Date, "rating": ev.Rating},
		raw:    raw,
	}
}

func (e *ListEntry) UnmarshalJSON(data []byte) error {
	e.raw = append(e.raw[:0], data...)
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]any
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		e.Kind = EntryEvent
		e.Fields = fields
		return nil
	}

	var n int
	if err := json.Unmarshal(trimmed, &n); err == nil {
		e.Kind = EntryLegacy
		e.Legacy = n
		return nil
	}

	e.Kind = EntryUnknown
	return nil
}

func (e ListEntry) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	if e.Kind == EntryLegacy {
		return json.Marshal(e.Legacy)
	}
	return json.Marshal(e.Fields)
}

// Field returns a decoded field of an event object.
func (e ListEntry) Field(name string) (any, bool) {
	if e.Kind != EntryEvent || e.Fields == nil {
		return nil, false
	}
	v, ok := e.Fields[name]
	return v, ok
}

// HasLegacyHead reports whether the list starts with a bare integer, the
// marker of a list written before events carried timestamps.
func HasLegacyHead(entries []ListEntry) bool {
	return len(entries) > 0 && entries[0].Kind == EntryLegacy
}

// UpgradeLegacy returns a copy of entries with every bare integer replaced
// by an event with an empty date.
func UpgradeLegacy(entries []ListEntry) []ListEntry {
	out := make([]ListEntry, len(entries))
	for i, e := range entries {
		if e.Kind == EntryLegacy {
			out[i] = NewEventEntry(RatingEvent{Date: "", Rating: e.Legacy})
			continue
		}
		out[i] = e
	}
	return out
}
