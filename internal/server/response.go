package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"carecall/internal/apperror"
)

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("server: encode response: %v", err)
		}
	}
}

// writeError maps the domain error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		}

		writeJSON(w, status, errorResponse{Error: errorType, Message: appErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

func writeXML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "application/xml")
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Printf("server: write twiml response: %v", err)
	}
}
