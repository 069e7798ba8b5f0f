package controllers

import (
	"fmt"
	"net/http"
	"ratingd/internal/services"
	"time"
)

type HealthController struct {
	ratings services.RatingServiceInterface
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Appended      int64   `json:"appended"`
	Rejected      int64   `json:"rejected"`
	Failed        int64   `json:"failed"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := hc.ratings.Stats()
	uptime := time.Since(stats.Started)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Appended:      stats.Appended,
		Rejected:      stats.Rejected,
		Failed:        stats.Failed,
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(ratings services.RatingServiceInterface) *HealthController {
	return &HealthController{ratings: ratings}
}
