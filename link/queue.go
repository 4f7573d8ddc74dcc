package link

import (
	"log"
	"sync"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/mikehamer/crazypilot/crtp"
)

// MaxPacketSize is the largest payload of an nRF24 radio frame.
const MaxPacketSize = 32

const (
	defaultPeriod     = 5 * time.Millisecond
	defaultMaxRetries = 10
	queueHint         = 10
)

type outbound struct {
	data     []byte
	ack      AckFunc
	attempts int
}

// Queue is a Link that drains a priority and a standard queue onto a Device.
// Priority frames always go first. When both queues are empty the worker
// pings the copter with a null packet so that it keeps acknowledging.
type Queue struct {
	device Device

	standardQueue  *queue.Queue
	priorityQueue  *queue.Queue
	packetDequeued chan bool

	callbackLock sync.Mutex
	callback     func([]byte)

	period     time.Duration
	maxRetries int
	keepAlive  bool

	threadShouldStop chan bool
	closeOnce        sync.Once
	waitGroup        sync.WaitGroup
}

type Option func(*Queue)

// WithPeriod sets the interval between two transmissions.
func WithPeriod(period time.Duration) Option {
	return func(q *Queue) { q.period = period }
}

// WithMaxRetries sets how many unacknowledged attempts a frame gets before
// it is dropped and its AckFunc receives ErrorNoAck.
func WithMaxRetries(n int) Option {
	return func(q *Queue) { q.maxRetries = n }
}

// WithKeepAlive toggles null-packet pings while idle.
func WithKeepAlive(enable bool) Option {
	return func(q *Queue) { q.keepAlive = enable }
}

func NewQueue(device Device, opts ...Option) *Queue {
	q := &Queue{
		device:           device,
		standardQueue:    queue.New(queueHint),
		priorityQueue:    queue.New(queueHint),
		packetDequeued:   make(chan bool),
		period:           defaultPeriod,
		maxRetries:       defaultMaxRetries,
		keepAlive:        true,
		threadShouldStop: make(chan bool),
	}
	for _, opt := range opts {
		opt(q)
	}

	q.waitGroup.Add(1)
	go q.workerThread()
	return q
}

// OnResponse registers the function receiving non-empty acknowledgement
// payloads. Passing nil removes it.
func (q *Queue) OnResponse(callback func([]byte)) {
	q.callbackLock.Lock()
	q.callback = callback
	q.callbackLock.Unlock()
}

func (q *Queue) Send(packet []byte, ack AckFunc) error {
	return q.enqueue(q.standardQueue, packet, ack)
}

func (q *Queue) SendPriority(packet []byte, ack AckFunc) error {
	return q.enqueue(q.priorityQueue, packet, ack)
}

func (q *Queue) enqueue(target *queue.Queue, packet []byte, ack AckFunc) error {
	if len(packet) == 0 {
		return ErrorEmptyPacket
	}
	if len(packet) > MaxPacketSize {
		return ErrorPacketTooLong
	}

	packetCopy := make([]byte, len(packet))
	copy(packetCopy, packet)

	if err := target.Put(&outbound{data: packetCopy, ack: ack}); err != nil {
		return ErrorClosed
	}
	return nil
}

// Len returns the number of frames still waiting for transmission.
func (q *Queue) Len() int {
	return int(q.priorityQueue.Len() + q.standardQueue.Len())
}

// WaitForEmpty blocks until every queued frame has been sent or dropped.
func (q *Queue) WaitForEmpty() {
	for q.Len() > 0 {
		select {
		case <-q.packetDequeued:
		case <-time.After(q.period): // the wake-up is best effort, re-check
		case <-q.threadShouldStop:
			return
		}
	}
}

// Close stops the worker, fails every pending frame with ErrorClosed and
// closes the device.
func (q *Queue) Close() error {
	var err error
	q.closeOnce.Do(func() {
		close(q.threadShouldStop)
		q.waitGroup.Wait()

		for _, pending := range append(q.priorityQueue.Dispose(), q.standardQueue.Dispose()...) {
			if p, ok := pending.(*outbound); ok && p.ack != nil {
				p.ack(ErrorClosed)
			}
		}
		err = q.device.Close()
	})
	return err
}

func (q *Queue) workerThread() {
	defer q.waitGroup.Done()

	ticker := time.NewTicker(q.period)
	defer ticker.Stop()

	for {
		select {
		case <-q.threadShouldStop:
			return
		case <-ticker.C:
		}

		var currentQueue *queue.Queue
		var current *outbound

		if front, err := q.priorityQueue.Peek(); err == nil {
			currentQueue = q.priorityQueue
			current = front.(*outbound)
		} else if front, err := q.standardQueue.Peek(); err == nil {
			currentQueue = q.standardQueue
			current = front.(*outbound)
		} else if !q.keepAlive {
			continue
		}

		packet := crtp.NullPacket
		if current != nil {
			packet = current.data
		}

		ackReceived, resp, err := q.transfer(packet)
		if current == nil {
			if err == nil && ackReceived {
				q.deliver(resp)
			}
			continue
		}

		if err != nil || !ackReceived {
			current.attempts++
			if current.attempts < q.maxRetries {
				continue // retransmit on the next tick
			}
			if err == nil {
				err = ErrorNoAck
			}
			log.Printf("link: dropping %d byte packet after %d attempts: %s", len(packet), current.attempts, err)
		}

		currentQueue.Get(1)
		if current.ack != nil {
			current.ack(err)
		}

		select { // wake a WaitForEmpty caller, if there is one
		case q.packetDequeued <- true:
		default:
		}

		if err == nil {
			q.deliver(resp)
		}
	}
}

func (q *Queue) transfer(packet []byte) (bool, []byte, error) {
	if err := q.device.SendPacket(packet); err != nil {
		return false, nil, err
	}
	return q.device.ReadResponse()
}

func (q *Queue) deliver(resp []byte) {
	if crtp.IsEmptyAck(resp) {
		return
	}

	q.callbackLock.Lock()
	callback := q.callback
	q.callbackLock.Unlock()

	if callback != nil {
		respCopy := make([]byte, len(resp))
		copy(respCopy, resp)
		callback(respCopy)
	}
}
