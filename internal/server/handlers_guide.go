package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ranveer112/valens/internal/guide"
)

// handleGuideStart starts or resumes a guide for the session. A persisted
// ongoing-session record matching the ID resumes in place; anything else
// starts from the first section.
func (s *Server) handleGuideStart(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	resumed, err := s.engine.Resume(r.Context(), id)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if !resumed {
		if err := s.engine.Start(r.Context(), id); err != nil {
			s.guideError(w, err)
			return
		}
	}

	status, _ := s.engine.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"resumed": resumed,
		"guide":   status,
	})
}

func (s *Server) handleGuideStatus(w http.ResponseWriter, r *http.Request) {
	status, active := s.engine.Status()
	if !active {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no guided session"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleGuideNext(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Next(r.Context()); err != nil {
		s.guideError(w, err)
		return
	}
	s.writeGuideTransition(w)
}

func (s *Server) handleGuidePrevious(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Previous(r.Context()); err != nil {
		s.guideError(w, err)
		return
	}
	s.writeGuideTransition(w)
}

func (s *Server) handleGuideTimer(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ToggleTimer(r.Context()); err != nil {
		s.guideError(w, err)
		return
	}
	s.writeGuideTransition(w)
}

func (s *Server) handleGuideExit(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Exit(r.Context()); err != nil {
		s.guideError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeGuideTransition reports the state after a transition. Advancing past
// the last section ends the guide, so the response may carry no snapshot.
func (s *Server) writeGuideTransition(w http.ResponseWriter) {
	status, active := s.engine.Status()
	if !active {
		writeJSON(w, http.StatusOK, map[string]any{"ended": true})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) guideError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, guide.ErrNotActive):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no guided session"})
	case errors.Is(err, guide.ErrNoSections):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "training session has no sections"})
	default:
		s.storageError(w, err)
	}
}

func (s *Server) handleInstrumentStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.panel.Status())
}

func (s *Server) handleStopwatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	switch body.Action {
	case "start-pause":
		s.panel.StartPauseStopwatch()
	case "reset":
		s.panel.ResetStopwatch()
	case "toggle":
		s.panel.ToggleStopwatch()
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action"})
		return
	}
	writeJSON(w, http.StatusOK, s.panel.Status())
}

func (s *Server) handleMetronome(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action       string `json:"action"`
		Interval     int    `json:"interval"`
		StressedBeat int    `json:"stressed_beat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.Interval > 0 || body.StressedBeat > 0 {
		s.panel.ConfigureMetronome(body.Interval, body.StressedBeat)
	}
	switch body.Action {
	case "start-pause":
		s.panel.StartPauseMetronome()
	case "":
		// Configuration only.
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action"})
		return
	}
	writeJSON(w, http.StatusOK, s.panel.Status())
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
		Input  string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	switch body.Action {
	case "set":
		s.panel.SetTimer(body.Input)
	case "start-pause":
		s.panel.StartPauseTimer()
	case "reset":
		s.panel.ResetTimer()
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action"})
		return
	}
	writeJSON(w, http.StatusOK, s.panel.Status())
}
