package httpapi

import (
	"net/http"

	"github.com/example/ride-dispatch/internal/models"
)

type driverStartBody struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type driverUpdateBody struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	AccuracyM *float64 `json:"accuracyM"`
	Heading   *float64 `json:"heading"`
	SpeedMps  *float64 `json:"speedMps"`
}

func (s *Server) handleDriverStart(w http.ResponseWriter, r *http.Request) {
	var body driverStartBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	// A logged-in driver's registered identity wins over the body.
	if sess := s.session(r); sess != nil {
		body.Name = sess.Name
		body.Phone = sess.Phone
	}
	d, err := s.engine.StartDriver(roomOf(r), body.ID, body.Name, body.Phone)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"driver": d.View()})
}

func (s *Server) handleDriverUpdate(w http.ResponseWriter, r *http.Request) {
	var body driverUpdateBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if sess := s.session(r); sess != nil {
		body.Name = sess.Name
		body.Phone = sess.Phone
	}
	pos := models.Position{
		Lat:       body.Lat,
		Lng:       body.Lng,
		AccuracyM: body.AccuracyM,
		Heading:   body.Heading,
		SpeedMps:  body.SpeedMps,
	}
	d, err := s.engine.UpdateDriver(roomOf(r), body.ID, body.Name, body.Phone, pos)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"driver": d.View()})
}

func (s *Server) handleDriverStop(w http.ResponseWriter, r *http.Request) {
	var body driverStartBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.engine.StopDriver(roomOf(r), body.ID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
