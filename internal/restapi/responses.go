package restapi

import (
	"encoding/json"
	"net/http"

	"jzmtracker.nyc/internal/models"
)

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(w)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.Logger.Error("failed to encode response", "error", err)
	}
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request, text string) {
	setJSONResponseType(w)
	w.WriteHeader(http.StatusNotFound)

	if text == "" {
		text = "resource not found"
	}
	response := models.ResponseModel{
		Code:        http.StatusNotFound,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        text,
		Version:     2,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.Logger.Error("failed to encode not found response", "error", err)
	}
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.Logger.Error("internal server error", "error", err, "path", r.URL.Path)

	setJSONResponseType(w)
	w.WriteHeader(http.StatusInternalServerError)

	response := models.ResponseModel{
		Code:        http.StatusInternalServerError,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "internal server error",
		Version:     2,
	}
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		api.Logger.Error("failed to encode server error response", "error", encodeErr)
	}
}

// validationErrorResponse sends a 400 Bad Request with field-specific
// validation errors.
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	setJSONResponseType(w)
	w.WriteHeader(http.StatusBadRequest)

	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{FieldErrors: fieldErrors}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.Logger.Error("failed to encode validation error response", "error", err)
	}
}
