package controllers

import (
	"errors"
	"io"
	"net/http"
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"ratingd/internal/services"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	maxRequestBodySize = 1 << 20  // 1 MB
	maxUploadSize      = 10 << 20 // 10 MB

	defaultSource = "csv"
	defaultRange  = "30"
	defaultGroup  = services.GroupDay
)

type timelineResponse struct {
	Success  bool                    `json:"success"`
	Timeline []models.TimelineBucket `json:"timeline"`
}

type ApiController struct {
	logger   providers.Logger
	ratings  services.RatingServiceInterface
	timeline services.TimelineServiceInterface
	cache    providers.CacheProviderInterface
}

func NewApiController(
	logger providers.Logger,
	ratings services.RatingServiceInterface,
	timeline services.TimelineServiceInterface,
	cache providers.CacheProviderInterface,
) *ApiController {
	return &ApiController{
		logger:   logger,
		ratings:  ratings,
		timeline: timeline,
		cache:    cache,
	}
}

func queryOr(r *http.Request, name, fallback string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return fallback
}

func (ac *ApiController) Rate(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, maxRequestBodySize, ac.logger)
	if !ok {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid rating."})
		return
	}

	event, err := ac.ratings.Rate(payload["rating"])
	if err != nil {
		if ve, isValidation := services.AsValidationError(err); isValidation {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: ve.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to save rating."})
		return
	}

	ac.logger.Infof(providers.TypePost, "Rating %d saved at %s", event.Rating, event.Date)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Rating " + strconv.Itoa(event.Rating) + " saved!"})
}

func timelineCacheKey(source, rangeParam, group, fingerprint string) string {
	key := "timeline:" + source + ":" + rangeParam + ":" + group
	if fingerprint != "" {
		key += "@" + fingerprint
	}
	return key
}

// Timeline serves grouped averages. Responses are cached per file
// fingerprint, and a result computed across a cache clear is not stored.
func (ac *ApiController) Timeline(w http.ResponseWriter, r *http.Request) {
	source := queryOr(r, "source", defaultSource)
	rangeParam := queryOr(r, "range", defaultRange)
	group := queryOr(r, "group", defaultGroup)

	generation := ac.cache.Generation()
	cacheKey := timelineCacheKey(source, rangeParam, group, ac.timeline.Fingerprint(source))
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeRaw(w, http.StatusOK, data)
		return
	}

	result, err := ac.timeline.Compute(source, rangeParam, group)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Timeline over %s failed: %s", source, err)
		writeJSON(w, http.StatusInternalServerError, failure(sourceFailureMessage(services.ResolveSource(source))))
		return
	}

	gson, err := json.Marshal(timelineResponse{Success: true, Timeline: result.Buckets})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ac.cache.Set(cacheKey, gson, generation) {
		ac.logger.Debugf(providers.TypeGet, "Timeline %s not cached, ratings changed while computing", cacheKey)
	}
	writeRaw(w, http.StatusOK, gson)
}

func sourceFailureMessage(target models.Target) string {
	if target == models.TargetEvents {
		return "Failed to read JSON."
	}
	return "Failed to read CSV."
}

// Upload replaces one rating file with the request body as is.
func (ac *ApiController) Upload(w http.ResponseWriter, r *http.Request) {
	target, ok := models.ParseTarget(r.URL.Query().Get("target"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, failure("Invalid target."))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, failure("File too large."))
			return
		}
		writeJSON(w, http.StatusBadRequest, failure("Failed to read upload."))
		return
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		writeJSON(w, http.StatusBadRequest, failure("No file content."))
		return
	}

	if err := ac.ratings.Replace(target, raw); err != nil {
		writeJSON(w, http.StatusInternalServerError, failure("Failed to replace ratings."))
		return
	}
	ac.logger.Infof(providers.TypePost, "Uploaded %d bytes to %s", len(raw), target)
	writeJSON(w, http.StatusOK, success(""))
}

func (ac *ApiController) Reset(w http.ResponseWriter, r *http.Request) {
	if err := ac.ratings.Reset(); err != nil {
		writeJSON(w, http.StatusInternalServerError, failure("Failed to reset ratings."))
		return
	}
	ac.logger.Infof(providers.TypePost, "Rating files reset")
	writeJSON(w, http.StatusOK, success(""))
}
