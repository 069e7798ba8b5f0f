package models

type TimelineBucket struct {
	Date      string  `json:"date"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

// Timeline is the aggregation result. Skipped counts dropped rows per
// reason; rows are never reported individually.
type Timeline struct {
	Buckets []TimelineBucket `json:"timeline"`
	Skipped map[string]int   `json:"-"`
}

func (t *Timeline) SkippedTotal() int {
	total := 0
	for _, n := range t.Skipped {
		total += n
	}
	return total
}
