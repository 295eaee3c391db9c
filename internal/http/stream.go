package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/example/ride-dispatch/internal/apierr"
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/stream"
)

// handleStream opens an SSE subscription. The snapshot goes out before any
// delta, then the connection carries scoped deltas, keep-alive pings and,
// for riders, periodic snapshot refreshes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if models.SanitizeID(r.URL.Query().Get("id")) == "" {
		s.writeError(w, apierr.ErrMissingID)
		return
	}
	sink, err := stream.NewSSESink(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sub := s.newSubscriber(r, sink)
	s.engine.Subscribe(sub)
	defer s.engine.Unsubscribe(sub)
	defer sink.Close()

	s.serveSubscription(r.Context(), sub)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS carries the same subscription protocol over a websocket, framed
// as {"event": ..., "data": ...} messages.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if models.SanitizeID(r.URL.Query().Get("id")) == "" {
		s.writeError(w, apierr.ErrMissingID)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sink := stream.NewWSSink(conn)
	sub := s.newSubscriber(r, sink)
	s.engine.Subscribe(sub)
	defer s.engine.Unsubscribe(sub)
	defer sink.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// Inbound frames are ignored; the read pump only detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	s.serveSubscription(ctx, sub)
}

func (s *Server) newSubscriber(r *http.Request, sink stream.Sink) *stream.Subscriber {
	q := r.URL.Query()
	role := stream.ParseRole(q.Get("role"))
	deviceID := models.SanitizeID(q.Get("id"))
	return stream.NewSubscriber(uuid.NewString(), roomOf(r), role, deviceID, sink)
}

// serveSubscription runs the keep-alive loop until the client goes away or a
// write fails.
func (s *Server) serveSubscription(ctx context.Context, sub *stream.Subscriber) {
	ping := time.NewTicker(s.streamCfg.PingInterval)
	defer ping.Stop()

	var refresh <-chan time.Time
	if sub.Role == stream.RoleRider {
		t := time.NewTicker(s.streamCfg.RiderSnapshotInterval)
		defer t.Stop()
		refresh = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := sub.Send(stream.EventPing, map[string]int64{"now": time.Now().UnixMilli()}); err != nil {
				return
			}
		case <-refresh:
			// A missed delta heals on the next refresh.
			if err := sub.Send(stream.EventSnapshot, s.engine.Snapshot(sub)); err != nil {
				return
			}
		}
	}
}
