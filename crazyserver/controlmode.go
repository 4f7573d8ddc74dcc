package crazyserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mikehamer/crazypilot/commander"
)

func (s *Server) controlModeInitRoute(r *mux.Router) {
	r.HandleFunc("/controlmode", s.controlModeGet).Methods("GET")
	r.HandleFunc("/controlmode", s.controlModePut).Methods("PUT")
}

type controlModeResponse struct {
	Index  int       `json:"index"`
	Mode   string    `json:"mode"`
	Titles [4]string `json:"titles"`
}

type controlModeRequest struct {
	Index *int `json:"index"`
}

func newControlModeResponse(mode commander.ControlMode) controlModeResponse {
	return controlModeResponse{Index: mode.Index(), Mode: mode.String(), Titles: mode.Titles()}
}

func (s *Server) controlModeGet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newControlModeResponse(s.pilot.Commander().Mode()))
}

func (s *Server) controlModePut(w http.ResponseWriter, r *http.Request) {
	var req controlModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		respondError(w, r, http.StatusBadRequest, "Bad request!")
		return
	}

	mode, err := commander.ParseMode(*req.Index)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.pilot.SetMode(mode); err != nil {
		respondError(w, r, http.StatusConflict, err.Error())
		return
	}

	s.prefsLock.Lock()
	s.prefs.SetMode(mode)
	s.savePrefs()
	s.prefsLock.Unlock()

	respondJSON(w, http.StatusOK, newControlModeResponse(mode))
}
