// Package crazyflie holds the copter-side view of the commander stream: the
// wire format of a commander frame and a connection that tracks whether the
// copter is still acknowledging.
package crazyflie

import (
	"sync"
	"time"

	"github.com/mikehamer/crazypilot/crtp"
	"github.com/mikehamer/crazypilot/link"
)

type CrazyflieStatus uint8

const (
	StatusDisconnected CrazyflieStatus = iota
	StatusConnected
	StatusNoResponse
)

func (s CrazyflieStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusNoResponse:
		return "no response"
	}
	return "disconnected"
}

// Stats counts commander frames by outcome.
type Stats struct {
	Sent    uint64 `json:"sent"`
	Acked   uint64 `json:"acked"`
	Dropped uint64 `json:"dropped"`
}

type Crazyflie struct {
	link link.Link

	lock    sync.Mutex
	status  CrazyflieStatus
	stats   Stats
	lastAck time.Time

	// responses, by port
	callbackLock      sync.Mutex
	responseCallbacks map[crtp.Port][]portCallback
	nextCallbackID    int
	consoleLine       string

	// communication loop
	disconnect    chan bool
	statusTimeout *time.Timer
	waitGroup     sync.WaitGroup
	closeOnce     sync.Once
}

const statusTimeoutDuration time.Duration = 1 * time.Second

// Connect wraps an open link. The copter counts as connected once it has
// acknowledged a frame, and drops to StatusNoResponse when a second passes
// without one.
// Non-empty acknowledgement payloads are dispatched by port when the link
// delivers them.
func Connect(l link.Link) *Crazyflie {
	cf := &Crazyflie{
		link:              l,
		status:            StatusDisconnected,
		responseCallbacks: make(map[crtp.Port][]portCallback),
		disconnect:        make(chan bool),
		statusTimeout:     time.NewTimer(statusTimeoutDuration),
	}

	if r, ok := l.(responder); ok {
		r.OnResponse(cf.handleResponse)
	}
	cf.consoleSystemInit()

	cf.waitGroup.Add(1)
	go cf.statusTimeoutThread()
	return cf
}

func (cf *Crazyflie) statusTimeoutThread() {
	defer cf.waitGroup.Done()

	for {
		select {
		case <-cf.disconnect:
			return
		case <-cf.statusTimeout.C:
			cf.lock.Lock()
			if cf.status == StatusConnected {
				cf.status = StatusNoResponse
			}
			cf.lock.Unlock()
			cf.statusTimeout.Reset(statusTimeoutDuration)
		}
	}
}

func (cf *Crazyflie) Status() CrazyflieStatus {
	cf.lock.Lock()
	defer cf.lock.Unlock()
	return cf.status
}

func (cf *Crazyflie) Stats() Stats {
	cf.lock.Lock()
	defer cf.lock.Unlock()
	return cf.stats
}

// LastAck is the time of the most recent acknowledged frame.
func (cf *Crazyflie) LastAck() time.Time {
	cf.lock.Lock()
	defer cf.lock.Unlock()
	return cf.lastAck
}

// ackHandler tracks the link state from acknowledgements. Only commander
// frames are counted in the stats.
func (cf *Crazyflie) ackHandler(done link.AckFunc, counted bool) link.AckFunc {
	return func(err error) {
		cf.lock.Lock()
		if err == nil {
			if counted {
				cf.stats.Acked++
			}
			cf.lastAck = time.Now()
			if !cf.closed() {
				cf.status = StatusConnected
			}
		} else if counted {
			cf.stats.Dropped++
		}
		cf.lock.Unlock()

		if err == nil {
			cf.statusTimeout.Reset(statusTimeoutDuration)
		}
		if done != nil {
			done(err)
		}
	}
}

// Disconnect stops status tracking and closes the link. Frames still queued
// are failed by the link.
func (cf *Crazyflie) Disconnect() error {
	var err error
	cf.closeOnce.Do(func() {
		close(cf.disconnect)
		cf.waitGroup.Wait()
		cf.statusTimeout.Stop()
		err = cf.link.Close()

		cf.lock.Lock()
		cf.status = StatusDisconnected
		cf.lock.Unlock()
	})
	return err
}

func (cf *Crazyflie) closed() bool {
	select {
	case <-cf.disconnect:
		return true
	default:
		return false
	}
}
