package httpapi

import (
	"net/http"
	"strings"

	"github.com/example/ride-dispatch/internal/auth"
)

type registerBody struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type loginBody struct {
	Code  string `json:"code"`
	Phone string `json:"phone"`
}

func (s *Server) handleDriverRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	cred, err := s.auth.Register(body.Name, body.Phone)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":  cred.Name,
		"phone": cred.Phone,
		"code":  cred.Code,
	})
}

func (s *Server) handleDriverLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.auth.Login(body.Code, body.Phone)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     sess.Token,
		"name":      sess.Name,
		"phone":     sess.Phone,
		"expiresAt": sess.ExpiresAt.UnixMilli(),
	})
}

func (s *Server) handleDriverMe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.auth.Identity(bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      sess.Name,
		"phone":     sess.Phone,
		"expiresAt": sess.ExpiresAt.UnixMilli(),
	})
}

// session resolves an optional bearer session; nil when absent or invalid.
func (s *Server) session(r *http.Request) *auth.Session {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	sess, err := s.auth.Identity(token)
	if err != nil {
		return nil
	}
	return sess
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
