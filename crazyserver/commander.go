package crazyserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mikehamer/crazypilot/commander"
)

func (s *Server) commanderInitRoute(r *mux.Router) {
	r.HandleFunc("/commander", s.commanderSet).Methods("PUT")
}

// Values are already scaled and given in stick order: left x, left y,
// right x, right y.
type commanderRequest struct {
	Mode   *int       `json:"mode"`
	Values [4]float32 `json:"values"`
}

func (s *Server) commanderSet(w http.ResponseWriter, r *http.Request) {
	var req commanderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad request!")
		return
	}

	mode := s.pilot.Commander().Mode()
	if req.Mode != nil {
		var err error
		if mode, err = commander.ParseMode(*req.Mode); err != nil {
			respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	sp, err := commander.Permute(mode, req.Values)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.vehicle.SetpointSend(sp.Packet(), nil); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, sp)
}
