package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eslsoft/shelfd/internal/entity"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeDomainError maps domain sentinel errors onto HTTP statuses; anything
// unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrAuthorNotFound),
		errors.Is(err, entity.ErrWorkNotFound),
		errors.Is(err, entity.ErrListNotFound),
		errors.Is(err, entity.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, entity.ErrInvalidRating),
		errors.Is(err, entity.ErrInvalidAuthorName),
		errors.Is(err, entity.ErrInvalidWorkTitle),
		errors.Is(err, entity.ErrDateUnparseable),
		errors.Is(err, entity.ErrMissingColumn),
		errors.Is(err, entity.ErrUnknownMember):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, entity.ErrAlreadyMember),
		errors.Is(err, entity.ErrCatalogConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
