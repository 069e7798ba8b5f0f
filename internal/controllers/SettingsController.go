package controllers

import (
	"fmt"
	"net/http"
	"ratingd/internal/providers"
	"ratingd/internal/services"
)

type SettingsController struct {
	logger   providers.Logger
	settings services.SettingsServiceInterface
}

func NewSettingsController(logger providers.Logger, settings services.SettingsServiceInterface) *SettingsController {
	return &SettingsController{logger: logger, settings: settings}
}

func (sc *SettingsController) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sc.settings.Current())
}

// Update applies {"path": ..., "value": ...} to the settings document.
func (sc *SettingsController) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, maxRequestBodySize, sc.logger)
	if !ok {
		writeJSON(w, http.StatusBadRequest, failure("Invalid request."))
		return
	}
	path, _ := payload["path"].(string)
	sc.respond(w, sc.settings.Mutate(path, payload["value"]), "")
}

func (sc *SettingsController) MapHotkey(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, maxRequestBodySize, sc.logger)
	if !ok {
		writeJSON(w, http.StatusBadRequest, failure("Invalid request."))
		return
	}
	key, _ := payload["key"].(string)

	err := sc.settings.RemapHotkey(key, payload["rating"])
	message := ""
	if err == nil {
		message = fmt.Sprintf("Mapped '%s' to rating %d.", key, sc.settings.Current().Hotkeys[key])
	}
	sc.respond(w, err, message)
}

func (sc *SettingsController) SetNumButtons(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r, maxRequestBodySize, sc.logger)
	if !ok {
		writeJSON(w, http.StatusBadRequest, failure("Invalid number."))
		return
	}
	sc.respond(w, sc.settings.SetNumButtons(payload["num_buttons"]), "")
}

func (sc *SettingsController) respond(w http.ResponseWriter, err error, message string) {
	if err == nil {
		writeJSON(w, http.StatusOK, success(message))
		return
	}
	if ve, ok := services.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, failure(ve.Message))
		return
	}
	sc.logger.Errorf(providers.TypePost, "Settings update failed: %s", err)
	writeJSON(w, http.StatusInternalServerError, failure("Failed to save settings."))
}
