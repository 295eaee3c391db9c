// Package httpapi exposes the dispatch engine over HTTP: the JSON command
// endpoints, the SSE and websocket subscription transports and the driver
// auth endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ride-dispatch/internal/auth"
	"github.com/example/ride-dispatch/internal/config"
	"github.com/example/ride-dispatch/internal/dispatch"
)

// Server routes API traffic to the engine.
type Server struct {
	engine    *dispatch.Engine
	auth      *auth.Service
	streamCfg config.Stream
	log       *slog.Logger
	router    *mux.Router
}

// NewServer wires the router.
func NewServer(engine *dispatch.Engine, authSvc *auth.Service, streamCfg config.Stream, log *slog.Logger) *Server {
	s := &Server{
		engine:    engine,
		auth:      authSvc,
		streamCfg: streamCfg,
		log:       log,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(requestIDMiddleware, s.recoverMiddleware, s.observeMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/config", s.handleConfig).Methods("GET")
	api.Handle("/stream", s.requireRoomCode(s.handleStream)).Methods("GET")
	api.Handle("/ws", s.requireRoomCode(s.handleWS)).Methods("GET")

	api.HandleFunc("/auth/driver/register", s.handleDriverRegister).Methods("POST")
	api.HandleFunc("/auth/driver/login", s.handleDriverLogin).Methods("POST")
	api.HandleFunc("/auth/driver/me", s.handleDriverMe).Methods("GET")

	// Mutating room endpoints sit behind the shared room code when one is
	// configured; driver-privileged ones additionally need a live session.
	api.Handle("/driver/start", s.requireRoomCode(s.requireDriverSession(s.handleDriverStart))).Methods("POST")
	api.Handle("/driver/update", s.requireRoomCode(s.requireDriverSession(s.handleDriverUpdate))).Methods("POST")
	api.Handle("/driver/stop", s.requireRoomCode(s.requireDriverSession(s.handleDriverStop))).Methods("POST")
	api.Handle("/ride/request", s.requireRoomCode(s.handleRideRequest)).Methods("POST")
	api.Handle("/ride/match", s.requireRoomCode(s.handleRideMatch)).Methods("POST")
	api.Handle("/ride/cancel", s.requireRoomCode(s.handleRideCancel)).Methods("POST")
	api.Handle("/ride/accept", s.requireRoomCode(s.requireDriverSession(s.handleRideAccept))).Methods("POST")
	api.Handle("/ride/decline", s.requireRoomCode(s.requireDriverSession(s.handleRideDecline))).Methods("POST")
	api.Handle("/ride/complete", s.requireRoomCode(s.requireDriverSession(s.handleRideComplete))).Methods("POST")

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// roomOf resolves the room slug for a request; sanitization happens in the
// registry.
func roomOf(r *http.Request) string { return r.URL.Query().Get("room") }

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ConfigView())
}
