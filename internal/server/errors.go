package server

import (
	"context"
	"errors"
	"net/http"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/storage"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string   `json:"error"`
	Row   string   `json:"row,omitempty"`
	Rows  []string `json:"rows,omitempty"`
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidDemand),
		errors.Is(err, domain.ErrUnknownModule):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrNoFeasibleCombination),
		errors.Is(err, domain.ErrSearchSpaceTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}

	var rowErr *domain.RowError
	if errors.As(err, &rowErr) {
		resp.Row = rowErr.Row
	}
	var rowsErr *domain.CapacityExceededRowsError
	if errors.As(err, &rowsErr) {
		resp.Rows = rowsErr.Rows
	}
	return resp
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse(err)
	if status == http.StatusInternalServerError {
		resp.Error = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}
