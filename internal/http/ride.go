package httpapi

import (
	"net/http"

	"github.com/example/ride-dispatch/internal/dispatch"
)

type rideRequestBody struct {
	RiderID        string  `json:"riderId"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	TargetDriverID string  `json:"targetDriverId"`
	Note           string  `json:"note"`
}

type rideActionBody struct {
	RiderID   string `json:"riderId"`
	DriverID  string `json:"driverId"`
	RequestID string `json:"requestId"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

func (s *Server) handleRideRequest(w http.ResponseWriter, r *http.Request) {
	var body rideRequestBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	req, err := s.engine.CreateRequest(roomOf(r), dispatch.CreateRequestParams{
		RiderID:        body.RiderID,
		Name:           body.Name,
		Phone:          body.Phone,
		Lat:            body.Lat,
		Lng:            body.Lng,
		TargetDriverID: body.TargetDriverID,
		Note:           body.Note,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request": req.View()})
}

func (s *Server) handleRideMatch(w http.ResponseWriter, r *http.Request) {
	var body rideRequestBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	m, err := s.engine.MatchNearest(roomOf(r), body.Lat, body.Lng)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"match": m})
}

func (s *Server) handleRideCancel(w http.ResponseWriter, r *http.Request) {
	var body rideActionBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.engine.CancelRequest(roomOf(r), body.RiderID, body.RequestID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRideAccept(w http.ResponseWriter, r *http.Request) {
	var body rideActionBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	// The contact details revealed to the rider come from the driver's
	// registered identity when a session is present.
	if sess := s.session(r); sess != nil {
		body.Name = sess.Name
		body.Phone = sess.Phone
	}
	req, err := s.engine.AcceptRequest(roomOf(r), body.DriverID, body.RequestID, body.Name, body.Phone)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request": req.View()})
}

func (s *Server) handleRideDecline(w http.ResponseWriter, r *http.Request) {
	var body rideActionBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.engine.DeclineRequest(roomOf(r), body.DriverID, body.RequestID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRideComplete(w http.ResponseWriter, r *http.Request) {
	var body rideActionBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.engine.CompleteRequest(roomOf(r), body.DriverID, body.RequestID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
