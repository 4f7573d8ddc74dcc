package crazyserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/flight"
)

func (s *Server) statusInitRoute(r *mux.Router) {
	r.HandleFunc("/status", s.statusHandler).Methods("GET")
}

type statusResponse struct {
	Connection string          `json:"connection"`
	Link       crazyflie.Stats `json:"link"`
	Pilot      flight.Status   `json:"pilot"`
	Sockets    int             `json:"sockets"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.socketsLock.Lock()
	sockets := len(s.sockets)
	s.socketsLock.Unlock()

	respondJSON(w, http.StatusOK, statusResponse{
		Connection: s.vehicle.Status().String(),
		Link:       s.vehicle.Stats(),
		Pilot:      s.pilot.Status(),
		Sockets:    sockets,
	})
}
