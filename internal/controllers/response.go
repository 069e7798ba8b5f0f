package controllers

import (
	"net/http"
	"ratingd/internal/providers"

	json "github.com/goccy/go-json"
)

type messageResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

func success(message string) messageResponse {
	ok := true
	return messageResponse{Success: &ok, Message: message}
}

func failure(message string) messageResponse {
	ok := false
	return messageResponse{Success: &ok, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, gson)
}

func writeRaw(w http.ResponseWriter, status int, gson []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// decodeBody reads a JSON object body of at most limit bytes.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, logger providers.Logger) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "Rejected body on %s: %v", r.URL.Path, err)
		return nil, false
	}
	return payload, true
}
