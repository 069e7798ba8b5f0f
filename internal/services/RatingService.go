package services

import (
	"fmt"
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"ratingd/internal/storage"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/atomic"
)

// TimestampLayout is ISO-8601 local time at second precision, no zone.
const TimestampLayout = "2006-01-02T15:04:05"

type RatingServiceInterface interface {
	Rate(rating any) (models.RatingEvent, error)
	Replace(target models.Target, raw []byte) error
	Reset() error
	Stats() RatingStats
}

type RatingStats struct {
	Appended int64     `json:"appended"`
	Rejected int64     `json:"rejected"`
	Failed   int64     `json:"failed"`
	Started  time.Time `json:"started"`
}

// RatingService validates incoming ratings against the current settings
// and writes them through the store. Every successful write invalidates
// the timeline cache.
type RatingService struct {
	store    storage.RatingStoreInterface
	settings SettingsServiceInterface
	cache    providers.CacheProviderInterface
	logger   providers.Logger
	now      func() time.Time

	appended atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
	started  time.Time
}

func NewRatingService(
	store storage.RatingStoreInterface,
	settings SettingsServiceInterface,
	cache providers.CacheProviderInterface,
	logger providers.Logger,
) RatingServiceInterface {
	return &RatingService{
		store:    store,
		settings: settings,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
		started:  time.Now(),
	}
}

func (rs *RatingService) Rate(rating any) (models.RatingEvent, error) {
	n, err := cast.ToIntE(rating)
	if err != nil || rating == nil || n < 1 || n > rs.settings.NumButtons() {
		rs.rejected.Inc()
		return models.RatingEvent{}, invalid("rating", msgInvalidRating)
	}

	event := models.RatingEvent{Date: rs.now().Format(TimestampLayout), Rating: n}
	if err := rs.store.Append(event.Rating, event.Date); err != nil {
		rs.failed.Inc()
		rs.logger.Errorf(providers.TypeStorage, "Append of rating %d failed: %s", n, err)
		return models.RatingEvent{}, fmt.Errorf("append rating: %w", err)
	}

	rs.appended.Inc()
	rs.cache.Clear()
	return event, nil
}

func (rs *RatingService) Replace(target models.Target, raw []byte) error {
	if err := rs.store.ReplaceWholesale(target, raw); err != nil {
		rs.logger.Errorf(providers.TypeStorage, "Replace of %s failed: %s", target, err)
		return err
	}
	rs.cache.Clear()
	return nil
}

func (rs *RatingService) Reset() error {
	if err := rs.store.ResetAll(); err != nil {
		rs.logger.Errorf(providers.TypeStorage, "Reset failed: %s", err)
		return err
	}
	rs.cache.Clear()
	return nil
}

func (rs *RatingService) Stats() RatingStats {
	return RatingStats{
		Appended: rs.appended.Load(),
		Rejected: rs.rejected.Load(),
		Failed:   rs.failed.Load(),
		Started:  rs.started,
	}
}
