package crazyflie

import (
	"sync"

	"github.com/mikehamer/crazypilot/crtp"
)

// SetpointSend queues a commander frame ahead of any other traffic. done, if
// not nil, is called once the copter has acknowledged the frame or the link
// gave up on it.
func (cf *Crazyflie) SetpointSend(packet *CommanderPacket, done func(error)) error {
	if !packet.Valid() {
		return ErrorInvalidSetpoint
	}
	if cf.closed() {
		return ErrorDisconnected
	}

	err := cf.link.SendPriority(packet.Bytes(), cf.ackHandler(done, true))
	if err != nil {
		return err
	}

	cf.lock.Lock()
	cf.stats.Sent++
	cf.lock.Unlock()
	return nil
}

// PacketSend queues any packet behind the commander frames.
func (cf *Crazyflie) PacketSend(p crtp.Request) error {
	if cf.closed() {
		return ErrorDisconnected
	}
	return cf.link.Send(p.Bytes(), cf.ackHandler(nil, false))
}

// sendAll queues the packets and waits until the link has acknowledged or
// given up on each of them. It returns the first delivery error.
func (cf *Crazyflie) sendAll(packets ...crtp.Request) error {
	if cf.closed() {
		return ErrorDisconnected
	}

	var wg sync.WaitGroup
	var lock sync.Mutex
	var firstErr error
	fail := func(err error) {
		lock.Lock()
		if firstErr == nil {
			firstErr = err
		}
		lock.Unlock()
	}

	for _, p := range packets {
		wg.Add(1)
		err := cf.link.Send(p.Bytes(), cf.ackHandler(func(err error) {
			if err != nil {
				fail(err)
			}
			wg.Done()
		}, false))
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()
	return firstErr
}
