package services

import (
	"fmt"
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"ratingd/internal/storage"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	dateLayout = "2006-01-02"

	GroupDay   = "day"
	GroupWeek  = "week"
	GroupMonth = "month"

	RangeAll = "all"

	SkipEmptyDate    = "empty_date"
	SkipBadRating    = "bad_rating"
	SkipBadDate      = "bad_date"
	SkipMalformedRow = "malformed_row"
)

type TimelineServiceInterface interface {
	Compute(source, rangeParam, groupBy string) (*models.Timeline, error)
	Fingerprint(source string) string
}

type TimelineService struct {
	store   storage.RatingStoreInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewTimelineService(store storage.RatingStoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) TimelineServiceInterface {
	return &TimelineService{store: store, logger: logger, metrics: metrics}
}

// ResolveSource maps the source query value to a representation. Anything
// that is not the structured list reads the row log.
func ResolveSource(source string) models.Target {
	if target, ok := models.ParseTarget(source); ok {
		return target
	}
	return models.TargetRowLog
}

// Fingerprint names the current content of the file behind source, or
// returns "" when it cannot be inspected.
func (ts *TimelineService) Fingerprint(source string) string {
	stamp, err := ts.store.Stamp(ResolveSource(source))
	if err != nil {
		ts.logger.Debugf(providers.TypeApp, "Stamp of %s unavailable: %s", source, err)
		return ""
	}
	return stamp
}

type datedRating struct {
	token  string
	rating int
}

// Compute averages ratings per day, ISO week or month. Rows without a
// usable date or rating are skipped and counted; only an unreadable
// source fails.
func (ts *TimelineService) Compute(source, rangeParam, groupBy string) (*models.Timeline, error) {
	target := ResolveSource(source)
	skipped := make(map[string]int)

	var (
		rows []datedRating
		err  error
	)
	if target == models.TargetEvents {
		rows, err = ts.eventRows(skipped)
	} else {
		rows, err = ts.rowLogRows(skipped)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceRead, target, err)
	}

	days := groupByDay(rows, skipped)
	days = filterRange(days, rangeParam)
	timeline := &models.Timeline{
		Buckets: bucketize(days, groupBy),
		Skipped: skipped,
	}

	if total := timeline.SkippedTotal(); total > 0 {
		ts.logger.Debugf(providers.TypeApp, "Timeline over %s skipped %d rows: %v", target, total, skipped)
		for reason, count := range skipped {
			ts.metrics.AddSkippedRows(string(target), reason, count)
		}
	}
	return timeline, nil
}

func (ts *TimelineService) eventRows(skipped map[string]int) ([]datedRating, error) {
	entries, err := ts.store.ReadEventList()
	if err != nil {
		return nil, err
	}
	if models.HasLegacyHead(entries) {
		entries = models.UpgradeLegacy(entries)
	}

	rows := make([]datedRating, 0, len(entries))
	for _, entry := range entries {
		if entry.Kind != models.EntryEvent {
			skipped[SkipMalformedRow]++
			continue
		}
		rawDate, _ := entry.Field("date")
		date, ok := rawDate.(string)
		if rawDate != nil && !ok {
			skipped[SkipMalformedRow]++
			continue
		}
		rawRating, _ := entry.Field("rating")
		if row, ok := toDatedRating(date, rawRating, skipped); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (ts *TimelineService) rowLogRows(skipped map[string]int) ([]datedRating, error) {
	records, err := ts.store.ReadRowLog()
	if err != nil {
		return nil, err
	}

	rows := make([]datedRating, 0, len(records))
	for _, record := range records {
		var rating any
		if record.HasRating {
			rating = record.Rating
		}
		if row, ok := toDatedRating(record.Date, rating, skipped); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func toDatedRating(date string, rating any, skipped map[string]int) (datedRating, bool) {
	token := dateToken(date)
	if token == "" {
		skipped[SkipEmptyDate]++
		return datedRating{}, false
	}
	n, ok := parseRating(rating)
	if !ok {
		skipped[SkipBadRating]++
		return datedRating{}, false
	}
	return datedRating{token: token, rating: n}, true
}

// dateToken returns the text before the first 'T', or the first
// whitespace-separated field when there is no 'T'.
func dateToken(date string) string {
	if date == "" {
		return ""
	}
	if before, _, found := strings.Cut(date, "T"); found {
		return before
	}
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func parseRating(v any) (int, bool) {
	switch r := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(r))
		return n, err == nil
	}
	n, err := cast.ToIntE(v)
	return n, err == nil
}

type dayRatings struct {
	day     time.Time
	ratings []int
}

func groupByDay(rows []datedRating, skipped map[string]int) []dayRatings {
	index := make(map[string]int)
	days := make([]dayRatings, 0)
	for _, row := range rows {
		if i, ok := index[row.token]; ok {
			days[i].ratings = append(days[i].ratings, row.rating)
			continue
		}
		day, err := time.Parse(dateLayout, row.token)
		if err != nil {
			skipped[SkipBadDate]++
			continue
		}
		index[row.token] = len(days)
		days = append(days, dayRatings{day: day, ratings: []int{row.rating}})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].day.Before(days[j].day)
	})
	return days
}

// filterRange keeps the last N calendar days ending at the latest day
// present. "all" and non-integers keep everything; a non-positive N puts the
// cutoff past the latest day and keeps nothing.
func filterRange(days []dayRatings, rangeParam string) []dayRatings {
	if rangeParam == RangeAll || len(days) == 0 {
		return days
	}
	n, err := strconv.Atoi(strings.TrimSpace(rangeParam))
	if err != nil {
		return days
	}

	cutoff := days[len(days)-1].day.AddDate(0, 0, -(n - 1))
	first := sort.Search(len(days), func(i int) bool {
		return !days[i].day.Before(cutoff)
	})
	return days[first:]
}

func bucketKey(day time.Time, groupBy string) string {
	switch groupBy {
	case GroupWeek:
		year, week := day.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupMonth:
		return day.Format("2006-01")
	default:
		return day.Format(dateLayout)
	}
}

// bucketize relies on days being sorted: every key format orders the
// same way as the days it covers, so buckets come out chronologically.
func bucketize(days []dayRatings, groupBy string) []models.TimelineBucket {
	buckets := make([]models.TimelineBucket, 0)
	var (
		key   string
		sum   int64
		count int
	)
	flush := func() {
		if count == 0 {
			return
		}
		buckets = append(buckets, models.TimelineBucket{
			Date:      key,
			AvgRating: average(sum, count),
			Count:     count,
		})
	}

	for _, d := range days {
		k := bucketKey(d.day, groupBy)
		if k != key {
			flush()
			key, sum, count = k, 0, 0
		}
		for _, r := range d.ratings {
			sum += int64(r)
			count++
		}
	}
	flush()
	return buckets
}

// average is the mean rounded half away from zero to two decimals.
func average(sum int64, count int) float64 {
	avg := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(count)), 2)
	f, _ := avg.Float64()
	return f
}
