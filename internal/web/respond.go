package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"padel-app/internal/apperr"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	resp := errorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindStateConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Collaborator("unexpected failure", err)
	}
	status := statusFor(appErr.Kind)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "code", appErr.Code, "error", err)
		writeError(w, status, appErr.Code, "storage is unavailable, try again")
		return
	}
	writeError(w, status, appErr.Code, appErr.Message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("empty_body", "request body is required")
		}
		return apperr.Validationf("invalid_json", "invalid request body: %v", err)
	}
	return nil
}
