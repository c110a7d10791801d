package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
)

const (
	CodeValidation = "validation"
	CodeConflict   = "conflict"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, CodeInternal, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	writeError(w, http.StatusBadRequest, CodeValidation, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	writeError(w, http.StatusNotFound, CodeNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("conflict", "message", msg, "error", err)
	} else {
		slog.Warn("conflict", "message", msg)
	}
	writeError(w, http.StatusConflict, CodeConflict, msg)
}

// Error picks the response for err by its category. Domain errors are shown
// to the client as is, anything else is logged and hidden behind a 500.
func Error(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, league.ErrValidation):
		BadRequest(w, err.Error(), err)
	case errors.Is(err, league.ErrConflict):
		Conflict(w, err.Error(), err)
	case errors.Is(err, league.ErrNotFound):
		NotFound(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
