package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"ratingd/internal/structures"
	"strconv"
	"time"
)

var ErrUnknownTarget = errors.New("unknown rating file target")

const lockFileName = ".ratings.lock"

type RatingStoreInterface interface {
	EnsureIntegrity(target models.Target) error
	EnsureAll() error
	Append(rating int, timestamp string) error
	ReplaceWholesale(target models.Target, raw []byte) error
	ResetAll() error
	ReadEventList() ([]models.ListEntry, error)
	ReadRowLog() ([]models.RowRecord, error)
	Stamp(target models.Target) (string, error)
}

// RatingStore keeps the structured list and the row log side by side.
// Every mutation holds the store lock for its whole read-modify-write span.
type RatingStore struct {
	events   *EventList
	rows     *RowLog
	archiver *Archiver
	lock     *FileLock
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

func NewRatingStore(conf *structures.Config, archiver *Archiver, logger providers.Logger, metrics providers.MetricsProviderInterface) (RatingStoreInterface, error) {
	dataDir := conf.Storage.DataDir
	if err := ensureDir(dataDir); err != nil {
		return nil, err
	}
	return &RatingStore{
		events:   NewEventList(filepath.Join(dataDir, conf.Storage.EventsFile), archiver, logger),
		rows:     NewRowLog(filepath.Join(dataDir, conf.Storage.RowLogFile), archiver, logger),
		archiver: archiver,
		lock:     NewFileLock(filepath.Join(dataDir, lockFileName)),
		logger:   logger,
		metrics:  metrics,
	}, nil
}

func (s *RatingStore) EnsureIntegrity(target models.Target) error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()
	return s.ensureLocked(target)
}

func (s *RatingStore) EnsureAll() error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	if err := s.ensureLocked(models.TargetEvents); err != nil {
		return err
	}
	return s.ensureLocked(models.TargetRowLog)
}

func (s *RatingStore) ensureLocked(target models.Target) error {
	var (
		recovered bool
		err       error
	)
	switch target {
	case models.TargetEvents:
		recovered, err = s.events.EnsureIntegrity()
	case models.TargetRowLog:
		recovered, err = s.rows.EnsureIntegrity()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	if err != nil {
		return fmt.Errorf("ensure %s integrity: %w", target, err)
	}
	if recovered {
		s.logger.Infof(providers.TypeStorage, "Recovered %s file with canonical empty state", target)
	}
	return nil
}

// Append records one event in both representations. The row log is only
// written after the structured list rewrite succeeded.
func (s *RatingStore) Append(rating int, timestamp string) error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	start := time.Now()
	if err := s.ensureLocked(models.TargetEvents); err != nil {
		return err
	}
	if err := s.ensureLocked(models.TargetRowLog); err != nil {
		return err
	}

	entries, err := s.events.Read()
	if err != nil {
		return fmt.Errorf("read structured list: %w", err)
	}
	if models.HasLegacyHead(entries) {
		s.logger.Infof(providers.TypeStorage, "Upgrading %d legacy entries in %s", len(entries), s.events.Path())
		entries = models.UpgradeLegacy(entries)
	}
	entries = append(entries, models.NewEventEntry(models.RatingEvent{Date: timestamp, Rating: rating}))

	if err := s.events.Write(entries); err != nil {
		return fmt.Errorf("write structured list: %w", err)
	}
	if err := s.rows.Append(timestamp, rating); err != nil {
		s.logger.Errorf(providers.TypeStorage, "Row log append failed after structured list write: %s", err)
		return fmt.Errorf("append row log: %w", err)
	}

	s.metrics.IncRatingsAppended()
	s.metrics.ObservePersistenceDuration("append", time.Since(start))
	return nil
}

// ReplaceWholesale archives the current file and writes raw verbatim.
// The content is not validated; the next integrity check handles it.
func (s *RatingStore) ReplaceWholesale(target models.Target, raw []byte) error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	start := time.Now()
	var (
		path    string
		replace func([]byte) error
	)
	switch target {
	case models.TargetEvents:
		path, replace = s.events.Path(), s.events.Replace
	case models.TargetRowLog:
		path, replace = s.rows.Path(), s.rows.Replace
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}

	if _, err := s.archiver.Archive(path, ReasonReplace); err != nil {
		return err
	}
	if err := replace(raw); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	s.logger.Infof(providers.TypeStorage, "Replaced %s (%d bytes)", path, len(raw))
	s.metrics.ObservePersistenceDuration("replace", time.Since(start))
	return nil
}

func (s *RatingStore) ResetAll() error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	start := time.Now()
	if _, err := s.archiver.Archive(s.events.Path(), ReasonReset); err != nil {
		return err
	}
	if err := s.events.Reset(); err != nil {
		return fmt.Errorf("reset structured list: %w", err)
	}
	if _, err := s.archiver.Archive(s.rows.Path(), ReasonReset); err != nil {
		return err
	}
	if err := s.rows.Reset(); err != nil {
		return fmt.Errorf("reset row log: %w", err)
	}

	s.logger.Infof(providers.TypeStorage, "Reset rating files")
	s.metrics.ObservePersistenceDuration("reset", time.Since(start))
	return nil
}

func (s *RatingStore) ReadEventList() ([]models.ListEntry, error) {
	return s.events.Read()
}

func (s *RatingStore) ReadRowLog() ([]models.RowRecord, error) {
	return s.rows.Read()
}

// Stamp identifies the current content of one rating file by modification
// time and size. Writes from other processes change it too.
func (s *RatingStore) Stamp(target models.Target) (string, error) {
	var path string
	switch target {
	case models.TargetEvents:
		path = s.events.Path()
	case models.TargetRowLog:
		path = s.rows.Path()
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 36) + "." + strconv.FormatInt(info.Size(), 36), nil
}
