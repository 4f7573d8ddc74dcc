package link

import (
	"sync"
)

// Recorder is an in-memory Device. It keeps a copy of every non-null frame
// and acknowledges according to Drop.
type Recorder struct {
	lock    sync.Mutex
	packets [][]byte
	last    []byte
	pings   int
	closed  bool

	// Drop, when set, is consulted for every frame; returning true makes
	// the frame go unacknowledged.
	Drop func(data []byte) bool

	// Reply, when set, is returned as the acknowledgement payload.
	Reply []byte

	// Respond, when set, computes the acknowledgement payload of each
	// non-null frame instead of Reply. It plays the copter side in tests.
	Respond func(data []byte) []byte
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendPacket(data []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return ErrorClosed
	}
	if len(data) == 1 && data[0] == 0xFF {
		r.pings++
		r.last = nil
		return nil
	}

	packet := make([]byte, len(data))
	copy(packet, data)
	r.packets = append(r.packets, packet)
	r.last = packet
	return nil
}

func (r *Recorder) ReadResponse() (bool, []byte, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return false, nil, ErrorClosed
	}
	if r.Drop != nil && r.last != nil && r.Drop(r.last) {
		return false, nil, nil
	}
	if r.Respond != nil {
		if r.last == nil {
			return true, nil, nil
		}
		return true, r.Respond(r.last), nil
	}
	return true, r.Reply, nil
}

func (r *Recorder) Close() error {
	r.lock.Lock()
	r.closed = true
	r.lock.Unlock()
	return nil
}

// Packets returns copies of the frames sent so far, in order.
func (r *Recorder) Packets() [][]byte {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([][]byte, len(r.packets))
	for i, p := range r.packets {
		out[i] = append([]byte(nil), p...)
	}
	return out
}

func (r *Recorder) Pings() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.pings
}
