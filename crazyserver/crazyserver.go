// Package crazyserver exposes a running pilot over HTTP: status, settings and
// control mode as JSON resources, a direct commander endpoint, and a
// websocket carrying touch input in and setpoints out.
package crazyserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/flight"
	"github.com/mikehamer/crazypilot/prefs"
)

// Vehicle is the copter connection the server reports on.
// *crazyflie.Crazyflie implements it.
type Vehicle interface {
	flight.Vehicle
	Status() crazyflie.CrazyflieStatus
	Stats() crazyflie.Stats
}

type Server struct {
	pilot   *flight.Pilot
	vehicle Vehicle

	prefsLock sync.Mutex
	prefs     *prefs.Preferences
	prefsPath string

	socketsLock sync.Mutex
	sockets     map[string]*socket
	wsID        uint

	tiltLock sync.Mutex

	removeSetpointObserver func()
}

// New builds a server around a pilot. Preference changes are written to
// prefsPath unless it is empty.
func New(pilot *flight.Pilot, vehicle Vehicle, p *prefs.Preferences, prefsPath string) *Server {
	s := &Server{
		pilot:     pilot,
		vehicle:   vehicle,
		prefs:     p,
		prefsPath: prefsPath,
		sockets:   make(map[string]*socket),
	}
	s.removeSetpointObserver = pilot.OnSetpoint(s.broadcastSetpoint)
	return s
}

// Router registers every route. staticPath, when set, is served on /static
// with its index.html on /.
func (s *Server) Router(staticPath string) *mux.Router {
	r := mux.NewRouter()

	s.statusInitRoute(r)
	s.settingsInitRoute(r)
	s.controlModeInitRoute(r)
	s.commanderInitRoute(r)
	s.socketsInitRoute(r)

	if len(staticPath) > 0 {
		r.PathPrefix("/static").Handler(http.StripPrefix("/static", http.FileServer(http.Dir(staticPath))))
		r.Handle("/", http.FileServer(http.Dir(staticPath)))
		r.Handle("/favicon.ico", http.FileServer(http.Dir(staticPath)))
	}
	return r
}

// Close detaches from the pilot and drops every socket.
func (s *Server) Close() {
	s.removeSetpointObserver()

	s.socketsLock.Lock()
	for _, sk := range s.sockets {
		sk.close()
	}
	s.socketsLock.Unlock()
}

func (s *Server) savePrefs() {
	if s.prefsPath == "" {
		return
	}
	if err := s.prefs.Save(s.prefsPath); err != nil {
		log.Printf("crazyserver: %s", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, httpStatus int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(httpStatus)

	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, httpStatus int, msg string) {
	respondJSON(w, httpStatus, errorResponse{Error: msg})
}
