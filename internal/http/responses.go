package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ride-dispatch/internal/apierr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError serializes a coded rejection as {"error": CODE} with the
// error's detail fields merged in. Anything uncoded becomes a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		s.log.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "INTERNAL"})
		return
	}
	body := map[string]any{"error": ae.Code}
	for k, v := range ae.Details {
		body[k] = v
	}
	writeJSON(w, ae.Status, body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierr.ErrInvalidJSON
	}
	return nil
}
