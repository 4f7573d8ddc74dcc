package crazyserver

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mikehamer/crazypilot/joystick"
)

const socketBufferLength = 5

type outMessage struct {
	Source string      `json:"source"`
	Data   interface{} `json:"data"`
}

// touchMessage is one touch event for one stick. Coordinates are in screen
// points; the first touch point becomes the stick centre.
//
// The "tilt" event carries the device attitude instead, as gravity in g along
// x and y, and "calibrate" takes the current attitude as level. The first
// tilt event makes the socket the motion source of the Tilt mode.
type touchMessage struct {
	Stick string  `json:"stick"`
	Event string  `json:"event"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type socket struct {
	socketType string
	name       string
	conn       *websocket.Conn
	out        chan outMessage
	pads       map[string]*joystick.TouchPad
	motion     *joystick.Motion

	closeOnce sync.Once
	done      chan struct{}
}

func (sk *socket) close() {
	sk.closeOnce.Do(func() {
		close(sk.done)
		sk.conn.Close()
		for _, pad := range sk.pads {
			pad.TouchEnded()
		}
	})
}

type socketIndexResp struct {
	Sockets []string `json:"sockets"`
}

func (s *Server) socketsInitRoute(r *mux.Router) {
	r.HandleFunc("/sockets", s.socketsIndexHandle).Methods("GET")
	r.HandleFunc("/sockets/websocket", s.websocketIndexHandle).Methods("GET")
}

func (s *Server) socketsIndexHandle(w http.ResponseWriter, r *http.Request) {
	s.socketsLock.Lock()
	resp := socketIndexResp{make([]string, 0, len(s.sockets))}
	for name, sk := range s.sockets {
		resp.Sockets = append(resp.Sockets, sk.socketType+"/"+name)
	}
	s.socketsLock.Unlock()

	respondJSON(w, http.StatusOK, resp)
}

// Broadcast to every socket. A socket whose buffer is full misses the
// message.
func (s *Server) socketSendData(source string, data interface{}) {
	msg := outMessage{source, data}

	s.socketsLock.Lock()
	defer s.socketsLock.Unlock()
	for _, sk := range s.sockets {
		select {
		case sk.out <- msg:
		default:
		}
	}
}

func (s *Server) broadcastSetpoint(sp commander.Setpoint) {
	s.socketSendData("setpoint", sp)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) websocketIndexHandle(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		s.socketsLock.Lock()
		resp := socketIndexResp{make([]string, 0, len(s.sockets))}
		for name := range s.sockets {
			resp.Sockets = append(resp.Sockets, name)
		}
		s.socketsLock.Unlock()

		respondJSON(w, http.StatusOK, resp)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	c := s.pilot.Commander()
	s.socketsLock.Lock()
	sk := &socket{
		socketType: "websocket",
		name:       fmt.Sprintf("websocket%d", s.wsID),
		conn:       conn,
		out:        make(chan outMessage, socketBufferLength),
		pads: map[string]*joystick.TouchPad{
			commander.LeftStick.String():  joystick.NewTouchPad(c.Left(), joystick.DefaultRadius),
			commander.RightStick.String(): joystick.NewTouchPad(c.Right(), joystick.DefaultRadius),
		},
		motion: joystick.NewMotion(),
		done:   make(chan struct{}),
	}
	s.wsID++
	s.sockets[sk.name] = sk
	s.socketsLock.Unlock()
	log.Printf("crazyserver: %s connected", sk.name)

	go s.socketWriter(sk)
	go s.socketReader(sk)
}

func (s *Server) removeSocket(sk *socket) {
	s.socketsLock.Lock()
	delete(s.sockets, sk.name)
	s.socketsLock.Unlock()
	sk.close()
	s.releaseMotion(sk)
}

// useMotion makes the socket's attitude drive the Tilt mode.
func (s *Server) useMotion(sk *socket) {
	c := s.pilot.Commander()

	s.tiltLock.Lock()
	defer s.tiltLock.Unlock()
	if c.TiltSource() != commander.TiltSource(sk.motion) {
		log.Printf("crazyserver: %s is the motion source", sk.name)
		c.SetTiltSource(sk.motion)
	}
}

// releaseMotion drops the socket's motion source. Flying Tilt without one
// falls back to the default mode.
func (s *Server) releaseMotion(sk *socket) {
	c := s.pilot.Commander()

	s.tiltLock.Lock()
	defer s.tiltLock.Unlock()
	if c.TiltSource() == commander.TiltSource(sk.motion) {
		c.SetTiltSource(nil)
	}
	sk.motion.Reset()
}

func (s *Server) socketWriter(sk *socket) {
	for {
		select {
		case <-sk.done:
			return
		case msg := <-sk.out:
			if err := sk.conn.WriteJSON(msg); err != nil {
				log.Println(sk.name, "OUT error, disconnecting!")
				s.removeSocket(sk)
				return
			}
		}
	}
}

func (s *Server) socketReader(sk *socket) {
	for {
		var msg touchMessage
		if err := sk.conn.ReadJSON(&msg); err != nil {
			log.Println(sk.name, "IN error, disconnecting!")
			s.removeSocket(sk)
			return
		}

		if err := s.handleMessage(sk, msg); err != nil {
			select {
			case sk.out <- outMessage{"error", errorResponse{Error: err.Error()}}:
			default:
			}
		}
	}
}

func (s *Server) handleMessage(sk *socket, msg touchMessage) error {
	switch msg.Event {
	case "tilt":
		if err := sk.motion.Update(msg.X, msg.Y); err != nil {
			return err
		}
		s.useMotion(sk)
		return nil
	case "calibrate":
		sk.motion.Calibrate()
		return nil
	}

	pad, ok := sk.pads[msg.Stick]
	if !ok {
		return fmt.Errorf("unknown stick %q", msg.Stick)
	}

	var err error
	switch msg.Event {
	case "begin":
		err = pad.TouchBegan(msg.X, msg.Y)
	case "move":
		err = pad.TouchMoved(msg.X, msg.Y)
	case "end", "cancel":
		pad.TouchEnded()
	default:
		return fmt.Errorf("unknown event %q", msg.Event)
	}
	return err
}
