package crazyflie

import (
	"log"
	"sync"

	"github.com/mikehamer/crazypilot/crtp"
)

// responder is implemented by links that deliver acknowledgement payloads,
// such as *link.Queue.
type responder interface {
	OnResponse(callback func([]byte))
}

type portCallback struct {
	id int
	f  func(resp []byte)
}

// OnPort registers f for every response arriving on port. The returned
// function removes it.
func (cf *Crazyflie) OnPort(port crtp.Port, f func(resp []byte)) func() {
	cf.callbackLock.Lock()
	id := cf.nextCallbackID
	cf.nextCallbackID++
	cf.responseCallbacks[port] = append(cf.responseCallbacks[port], portCallback{id, f})
	cf.callbackLock.Unlock()

	return func() {
		cf.callbackLock.Lock()
		defer cf.callbackLock.Unlock()

		callbacks := cf.responseCallbacks[port]
		for i, c := range callbacks {
			if c.id == id {
				cf.responseCallbacks[port] = append(callbacks[:i:i], callbacks[i+1:]...)
				return
			}
		}
	}
}

// awaitResponse decodes the first matching response on p's port into p and
// then closes the returned channel. Call stop once done waiting.
func (cf *Crazyflie) awaitResponse(p crtp.Response) (received <-chan struct{}, stop func()) {
	done := make(chan struct{})
	var lock sync.Mutex
	loaded := false

	stop = cf.OnPort(p.Port(), func(resp []byte) {
		lock.Lock()
		defer lock.Unlock()
		if loaded || crtp.Decode(resp, p) != nil {
			return
		}
		loaded = true
		close(done)
	})
	return done, stop
}

func (cf *Crazyflie) handleResponse(resp []byte) {
	if crtp.IsEmptyAck(resp) {
		return
	}
	port := crtp.Header(resp[0]).Port()

	cf.callbackLock.Lock()
	callbacks := cf.responseCallbacks[port]
	cf.callbackLock.Unlock()

	if len(callbacks) == 0 {
		log.Printf("crazyflie: unhandled response on port %d: % X", port, resp)
		return
	}
	for _, c := range callbacks {
		c.f(resp)
	}
}
