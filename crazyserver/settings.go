package crazyserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mikehamer/crazypilot/commander"
)

func (s *Server) settingsInitRoute(r *mux.Router) {
	r.HandleFunc("/settings", s.settingsGet).Methods("GET")
	r.HandleFunc("/settings", s.settingsPut).Methods("PUT")
}

type settingsResponse struct {
	Sensitivity   commander.Sensitivity   `json:"sensitivity"`
	Editable      bool                    `json:"editable"`
	Settings      commander.Settings      `json:"settings"`
	Sensitivities []commander.Sensitivity `json:"sensitivities"`
}

// Absent fields are left unchanged.
type settingsRequest struct {
	Sensitivity *commander.Sensitivity `json:"sensitivity"`
	PitchRate   *float32               `json:"pitchRate"`
	YawRate     *float32               `json:"yawRate"`
	MaxThrust   *float32               `json:"maxThrust"`
}

func (s *Server) currentSettings() settingsResponse {
	return settingsResponse{
		Sensitivity:   s.prefs.Sensitivity,
		Editable:      s.prefs.Sensitivity.Editable(),
		Settings:      s.prefs.Active(),
		Sensitivities: commander.Sensitivities(),
	}
}

func (s *Server) settingsGet(w http.ResponseWriter, r *http.Request) {
	s.prefsLock.Lock()
	resp := s.currentSettings()
	s.prefsLock.Unlock()

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) settingsPut(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad request!")
		return
	}

	s.prefsLock.Lock()
	defer s.prefsLock.Unlock()

	sensitivity := s.prefs.Sensitivity
	if req.Sensitivity != nil {
		sensitivity = *req.Sensitivity
		if sensitivity.Index() < 0 {
			respondError(w, r, http.StatusBadRequest, commander.ErrorInvalidSensitivity.Error())
			return
		}
	}

	if req.PitchRate != nil || req.YawRate != nil || req.MaxThrust != nil {
		if !sensitivity.Editable() {
			respondError(w, r, http.StatusConflict, commander.ErrorNotEditable.Error())
			return
		}
		settings := s.prefs.Settings[sensitivity]
		if req.PitchRate != nil {
			settings.SetPitchRate(*req.PitchRate)
		}
		if req.YawRate != nil {
			settings.SetYawRate(*req.YawRate)
		}
		if req.MaxThrust != nil {
			settings.SetMaxThrust(*req.MaxThrust)
		}
		s.prefs.Update(sensitivity, settings)
	}

	s.prefs.Select(sensitivity)
	s.pilot.SetSettings(s.prefs.Active())
	s.savePrefs()

	respondJSON(w, http.StatusOK, s.currentSettings())
}
