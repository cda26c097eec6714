package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/genricoloni/zonesync/internal/command"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

var (
	errBadRequest = errors.New("bad request")
	errUpstream   = errors.New("media server unavailable")
	errNotFound   = errors.New("not found")
)

// handlerFunc is an HTTP handler that reports failures as errors
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// statusFor maps local rejections to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoActivePlayer), errors.Is(err, domain.ErrPlayerDisabled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownPlayer), errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusTooManyRequests
	case errors.Is(err, command.ErrInvalidIndex), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("Request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		} else {
			s.logger.Debug("Request rejected",
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Error(err))
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func noContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}
