package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status of its kind.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	writeError(w, mapDomainError(kind), kind.String(), err.Error())
}

// mapDomainError maps an error kind to an HTTP status code.
func mapDomainError(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNone:
		return http.StatusOK
	case domain.KindOutOfRange, domain.KindInsufficientBalance:
		return http.StatusBadRequest
	case domain.KindOverflow:
		return http.StatusInternalServerError
	case domain.KindRepositoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
