// internal/server/respond.go
package server

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"askliberia/internal/common/errors"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", map[string]interface{}{"error": err.Error()})
	}
}

// writeError maps a StandardError code to an HTTP status and renders the
// error envelope. Unknown errors become a 500 with a generic message so
// internal details never leak.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var std *errors.StandardError
	if !goerrors.As(err, &std) {
		s.logger.Error("unclassified handler error", map[string]interface{}{"error": err.Error()})
		s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": map[string]interface{}{"message": "Internal server error"},
		})
		return
	}

	s.writeJSON(w, statusFor(std.Code), map[string]interface{}{
		"error": map[string]interface{}{
			"code":    string(std.Code),
			"message": std.Message,
		},
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidationFailed, errors.ErrCodeInvalidCounty, errors.ErrCodeInvalidLanguage:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidCredentials, errors.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case errors.ErrCodeRecordNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateAccount:
		return http.StatusConflict
	case errors.ErrCodeStoreConnectionFailed, errors.ErrCodeStoreReadFailed, errors.ErrCodeStoreWriteFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// requireAdmin guards console endpoints behind the admin session.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.admin.IsAuthenticated(r.Context()) {
			s.writeError(w, errors.NewNotAuthenticatedError())
			return
		}
		next(w, r)
	}
}

func decodeBody(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.NewValidationFailedError("malformed JSON body: " + err.Error())
	}
	return nil
}
