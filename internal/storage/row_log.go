package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"strconv"
)

var rowLogHeader = []string{"date", "rating"}

var errBadHeader = errors.New("row log header mismatch")

// RowLog is the append-only CSV representation with a fixed date,rating
// header.
type RowLog struct {
	path     string
	archiver *Archiver
	logger   providers.Logger
}

func NewRowLog(path string, archiver *Archiver, logger providers.Logger) *RowLog {
	return &RowLog{path: path, archiver: archiver, logger: logger}
}

func (r *RowLog) Path() string {
	return r.path
}

// EnsureIntegrity creates a missing log and replaces an empty, unparsable
// or wrongly headed one after archiving it. It reports whether a corrupt
// file was archived.
func (r *RowLog) EnsureIntegrity() (bool, error) {
	data, exists, err := readFileIfExists(r.path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", r.path, err)
	}
	if !exists {
		return false, r.Reset()
	}
	if validateHeader(data) == nil {
		return false, nil
	}

	r.logger.Warnf(providers.TypeStorage, "Row log %s failed validation, recreating", r.path)
	if _, err := r.archiver.Archive(r.path, ReasonCorrupt); err != nil {
		return false, err
	}
	return true, r.Reset()
}

func (r *RowLog) Reset() error {
	data, err := encodeRows(rowLogHeader)
	if err != nil {
		return err
	}
	return writeFileAtomic(r.path, data)
}

func (r *RowLog) Replace(raw []byte) error {
	return writeFileAtomic(r.path, raw)
}

// Append writes a single row with O_APPEND. A log that does not end in a
// newline (hand-edited or uploaded) gets one first so rows never merge.
func (r *RowLog) Append(timestamp string, rating int) error {
	f, err := os.OpenFile(r.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	row, err := encodeRows([]string{timestamp, strconv.Itoa(rating)})
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", r.path, err)
	}
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return fmt.Errorf("read %s: %w", r.path, err)
		}
		if last[0] != '\n' {
			row = append([]byte("\n"), row...)
		}
	}

	if _, err := f.Write(row); err != nil {
		return fmt.Errorf("append %s: %w", r.path, err)
	}
	return f.Sync()
}

// Read returns the data rows keyed by the header row, the way a
// dictionary reader would: columns are located by name and short rows
// leave the rating unset.
func (r *RowLog) Read() ([]models.RowRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	reader := newRowReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return []models.RowRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}

	dateIdx, ratingIdx := -1, -1
	for i, name := range header {
		switch name {
		case "date":
			if dateIdx < 0 {
				dateIdx = i
			}
		case "rating":
			if ratingIdx < 0 {
				ratingIdx = i
			}
		}
	}

	rows := make([]models.RowRecord, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", r.path, err)
		}

		var row models.RowRecord
		if dateIdx >= 0 && dateIdx < len(record) {
			row.Date = record[dateIdx]
		}
		if ratingIdx >= 0 && ratingIdx < len(record) {
			row.Rating = record[ratingIdx]
			row.HasRating = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func newRowReader(in io.Reader) *csv.Reader {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// validateHeader checks the first physical line. encoding/csv skips blank
// lines, so a leading one is rejected before parsing.
func validateHeader(data []byte) error {
	if bytes.HasPrefix(data, []byte("\n")) || bytes.HasPrefix(data, []byte("\r\n")) {
		return errBadHeader
	}
	header, err := newRowReader(bytes.NewReader(data)).Read()
	if err != nil {
		return err
	}
	if len(header) != len(rowLogHeader) || header[0] != rowLogHeader[0] || header[1] != rowLogHeader[1] {
		return errBadHeader
	}
	return nil
}

func encodeRows(rows ...[]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
