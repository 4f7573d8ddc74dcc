package crazyserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/flight"
	"github.com/mikehamer/crazypilot/joystick"
	"github.com/mikehamer/crazypilot/link"
	"github.com/mikehamer/crazypilot/prefs"
)

type testServer struct {
	*httptest.Server
	server    *Server
	pilot     *flight.Pilot
	recorder  *link.Recorder
	prefsPath string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	rec := link.NewRecorder()
	cf := crazyflie.Connect(link.NewQueue(rec, link.WithPeriod(time.Millisecond), link.WithKeepAlive(false)))
	t.Cleanup(func() { cf.Disconnect() })

	p := prefs.Default()
	c, err := commander.New(joystick.New(), joystick.New(), p.Mode(), p.Active())
	if err != nil {
		t.Fatal(err)
	}
	pilot := flight.NewPilot(c, cf)

	path := filepath.Join(t.TempDir(), "preferences.yaml")
	s := New(pilot, cf, p, path)
	ts := httptest.NewServer(s.Router(""))
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return &testServer{Server: ts, server: s, pilot: pilot, recorder: rec, prefsPath: path}
}

func (ts *testServer) do(t *testing.T, method, path, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("%s %s: content type %q", method, path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: %s", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)

	var resp statusResponse
	if code := ts.do(t, "GET", "/status", "", &resp); code != http.StatusOK {
		t.Fatalf("status code %d", code)
	}
	if resp.Connection != "disconnected" || !resp.Pilot.Locked || resp.Pilot.Mode != "mode2" {
		t.Errorf("status = %+v", resp)
	}
}

func TestControlMode(t *testing.T) {
	ts := newTestServer(t)

	var resp controlModeResponse
	ts.do(t, "GET", "/controlmode", "", &resp)
	if resp.Index != 1 || resp.Titles != [4]string{"Yaw", "Thrust", "Roll", "Pitch"} {
		t.Errorf("GET /controlmode = %+v", resp)
	}

	if code := ts.do(t, "PUT", "/controlmode", `{"index": 2}`, &resp); code != http.StatusOK {
		t.Fatalf("PUT status %d", code)
	}
	if resp.Mode != "mode3" || ts.pilot.Commander().Mode() != commander.Mode3 {
		t.Errorf("PUT /controlmode = %+v", resp)
	}

	saved, err := prefs.Load(ts.prefsPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Mode() != commander.Mode3 {
		t.Errorf("saved mode = %s", saved.Mode())
	}

	var errResp errorResponse
	if code := ts.do(t, "PUT", "/controlmode", `{"index": 7}`, &errResp); code != http.StatusBadRequest {
		t.Errorf("bad index status %d", code)
	}
	if errResp.Error != commander.ErrorInvalidMode.Error() {
		t.Errorf("error = %q", errResp.Error)
	}
	if code := ts.do(t, "PUT", "/controlmode", `{"index": 4}`, &errResp); code != http.StatusConflict {
		t.Errorf("tilt without source status %d", code)
	}
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)

	var resp settingsResponse
	ts.do(t, "GET", "/settings", "", &resp)
	if resp.Sensitivity != commander.Slow || resp.Editable || len(resp.Sensitivities) != 3 {
		t.Errorf("GET /settings = %+v", resp)
	}

	var errResp errorResponse
	if code := ts.do(t, "PUT", "/settings", `{"pitchRate": 10}`, &errResp); code != http.StatusConflict {
		t.Errorf("editing slow status %d", code)
	}

	code := ts.do(t, "PUT", "/settings", `{"sensitivity": "custom", "pitchRate": 99, "maxThrust": 50}`, &resp)
	if code != http.StatusOK {
		t.Fatalf("PUT status %d", code)
	}
	want := commander.Settings{PitchRate: 80, YawRate: 200, MaxThrust: 50}
	if resp.Sensitivity != commander.Custom || resp.Settings != want {
		t.Errorf("PUT /settings = %+v", resp)
	}
	if got := ts.pilot.Commander().Settings(); got != want {
		t.Errorf("pilot settings = %+v", got)
	}

	if code := ts.do(t, "PUT", "/settings", `{"sensitivity": "turbo"}`, &errResp); code != http.StatusBadRequest {
		t.Errorf("unknown sensitivity status %d", code)
	}
}

func TestCommander(t *testing.T) {
	ts := newTestServer(t)

	var sp commander.Setpoint
	code := ts.do(t, "PUT", "/commander", `{"mode": 0, "values": [10, 20, 30, 40000]}`, &sp)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	want := commander.Setpoint{Roll: 30, Pitch: 20, Yaw: 10, Thrust: 40000}
	if sp != want {
		t.Errorf("setpoint = %+v, want %+v", sp, want)
	}

	deadline := time.Now().Add(time.Second)
	for len(ts.recorder.Packets()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	packets := ts.recorder.Packets()
	if len(packets) != 1 || !bytes.Equal(packets[0], want.Bytes()) {
		t.Errorf("recorded %X", packets)
	}

	var errResp errorResponse
	if code := ts.do(t, "PUT", "/commander", `{"mode": 5}`, &errResp); code != http.StatusBadRequest {
		t.Errorf("bad mode status %d", code)
	}
}

func dialSocket(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sockets/websocket"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWebsocketTouch(t *testing.T) {
	ts := newTestServer(t)
	conn := dialSocket(t, ts)
	left := ts.pilot.Commander().Left()

	// mode2: the left stick drives thrust, centred one radius above the finger
	conn.WriteJSON(touchMessage{Stick: "left", Event: "begin", X: 100, Y: 300})
	conn.WriteJSON(touchMessage{Stick: "left", Event: "move", X: 100, Y: 140})
	waitFor(t, "thrust at full travel", func() bool { return left.Y() == 1 })
	if !left.Activated() {
		t.Error("left stick not activated")
	}

	conn.WriteJSON(touchMessage{Stick: "left", Event: "end"})
	waitFor(t, "stick release", func() bool { return left.State() == joystick.State{} })
}

func TestWebsocketTiltSource(t *testing.T) {
	ts := newTestServer(t)
	c := ts.pilot.Commander()
	conn := dialSocket(t, ts)

	conn.WriteJSON(touchMessage{Event: "tilt", X: 0.25, Y: -0.5})
	waitFor(t, "motion source", func() bool { return c.TiltSource() != nil })

	var resp controlModeResponse
	if code := ts.do(t, "PUT", "/controlmode", `{"index": 4}`, &resp); code != http.StatusOK {
		t.Fatalf("PUT tilt status %d", code)
	}
	if resp.Mode != "tilt" || c.Mode() != commander.Tilt {
		t.Errorf("PUT /controlmode = %+v", resp)
	}

	sp, err := c.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	rate := c.Settings().PitchRate
	if sp.Roll != 0.25*rate || sp.Pitch != 0.5*rate {
		t.Errorf("setpoint = %+v, want roll %v pitch %v", sp, 0.25*rate, 0.5*rate)
	}

	conn.WriteJSON(touchMessage{Event: "calibrate"})
	waitFor(t, "calibration", func() bool {
		x, y := c.TiltSource().Tilt()
		return x == 0 && y == 0
	})

	// the source goes away with its socket, and Tilt with it
	conn.Close()
	waitFor(t, "fallback mode", func() bool { return c.Mode() == commander.DefaultMode })
	if c.TiltSource() != nil {
		t.Error("closed socket still the motion source")
	}
	if code := ts.do(t, "PUT", "/controlmode", `{"index": 4}`, nil); code != http.StatusConflict {
		t.Errorf("tilt after source left status %d", code)
	}
}

func TestWebsocketErrors(t *testing.T) {
	ts := newTestServer(t)
	conn := dialSocket(t, ts)

	conn.WriteJSON(touchMessage{Stick: "middle", Event: "begin"})
	var msg struct {
		Source string        `json:"source"`
		Data   errorResponse `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Source != "error" || !strings.Contains(msg.Data.Error, "middle") {
		t.Errorf("message = %+v", msg)
	}
}

func TestWebsocketBroadcastsSetpoints(t *testing.T) {
	ts := newTestServer(t)
	conn := dialSocket(t, ts)
	waitFor(t, "socket registration", func() bool {
		ts.server.socketsLock.Lock()
		defer ts.server.socketsLock.Unlock()
		return len(ts.server.sockets) == 1
	})

	if err := ts.pilot.Tick(); err != nil {
		t.Fatal(err)
	}

	var msg struct {
		Source string             `json:"source"`
		Data   commander.Setpoint `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Source != "setpoint" || msg.Data != (commander.Setpoint{}) {
		t.Errorf("message = %+v", msg)
	}
}

func TestSocketsIndex(t *testing.T) {
	ts := newTestServer(t)
	dialSocket(t, ts)
	waitFor(t, "socket registration", func() bool {
		var resp socketIndexResp
		ts.do(t, "GET", "/sockets", "", &resp)
		return len(resp.Sockets) == 1 && resp.Sockets[0] == "websocket/websocket0"
	})
}
