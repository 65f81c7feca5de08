package rttrpm

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// bufferSize is the maximum UDP datagram this receiver will read, matching
// RTTrPMReceiver::run()'s fixed 512-byte buffer.
const bufferSize = 512

// readTimeout is how long a single read blocks before the worker re-checks
// for shutdown, matching RTTrPMReceiver::run()'s waitUntilReady(true, 100).
const readTimeout = 100 * time.Millisecond

// stopJoinBudget bounds how long Stop waits for the worker to exit.
const stopJoinBudget = 4 * time.Second

// Message is one decoded RTTrP datagram together with its sender and a
// correlation id stamped at assembly time, so the same packet can be traced
// across both the realtime and queued delivery paths.
type Message struct {
	ID         uuid.UUID
	Packet     Packet
	SenderIP   string
	SenderPort int
}

// RealtimeListener is invoked synchronously on the receiver's worker
// goroutine, immediately after a packet is assembled, in registration
// order.
type RealtimeListener func(Message)

// QueuedListener is invoked on a separate consumer goroutine after the
// message crosses the receiver's internal queue. For any one packet, every
// RealtimeListener runs before any QueuedListener.
type QueuedListener func(Message)

// Recorder is the hook a replay recorder satisfies to capture every
// assembled message as it is received, independent of the listener fan-out.
type Recorder interface {
	Record(Message) error
}

// Option configures a Receiver at construction time.
type Option func(*Receiver)

// WithLogger overrides the receiver's logger. The default is the global
// zerolog logger with a "component" field of "rttrpm.Receiver".
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Receiver) { r.logger = logger }
}

// WithRecorder attaches a Recorder that observes every assembled message
// before listener fan-out. A nil recorder is a no-op.
func WithRecorder(rec Recorder) Option {
	return func(r *Receiver) { r.recorder = rec }
}

// WithQueueDepth overrides the queued-delivery channel's buffer size
// (default 64). A full queue blocks the receiver's read loop, so this
// should be sized generously relative to expected burst rates.
func WithQueueDepth(depth int) Option {
	return func(r *Receiver) {
		if depth > 0 {
			r.queueDepth = depth
		}
	}
}

// Receiver owns one UDP socket and one worker goroutine, grounded on
// RTTrPMReceiver's Thread/DatagramSocket pairing. Construct with New,
// start with Start, and release resources with Stop.
type Receiver struct {
	port   int
	logger zerolog.Logger

	mu       sync.Mutex
	conn     *net.UDPConn
	running  bool
	quit     chan struct{}
	workerWG sync.WaitGroup

	listenersMu       sync.RWMutex
	realtimeListeners []RealtimeListener
	queuedListeners   []QueuedListener

	queueDepth int
	queue      chan Message
	recorder   Recorder
}

// New constructs a Receiver bound to portNumber once Start is called.
func New(portNumber int, opts ...Option) *Receiver {
	r := &Receiver{
		port:       portNumber,
		logger:     log.With().Str("component", "rttrpm.Receiver").Logger(),
		queueDepth: 64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddRealtimeListener registers l to be called synchronously on the
// receiver's worker goroutine for every assembled packet.
func (r *Receiver) AddRealtimeListener(l RealtimeListener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.realtimeListeners = append(r.realtimeListeners, l)
}

// AddQueuedListener registers l to be called on the consumer goroutine for
// every assembled packet, after every realtime listener has already run.
func (r *Receiver) AddQueuedListener(l QueuedListener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.queuedListeners = append(r.queuedListeners, l)
}

// Addr returns the socket's local address, or nil if the receiver is not
// currently running. Useful when constructed with port 0 to let the OS
// choose an ephemeral port.
func (r *Receiver) Addr() *net.UDPAddr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr().(*net.UDPAddr)
}

// Start binds the UDP socket and spawns the receive worker and the queued
// delivery consumer. It returns an error if the socket cannot be bound;
// Start never spawns a worker on failure.
func (r *Receiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	addr := &net.UDPAddr{IP: net.IPv4zero, Port: r.port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("rttrpm: bind port %d: %w", r.port, err)
	}

	r.conn = conn
	r.quit = make(chan struct{})
	r.queue = make(chan Message, r.queueDepth)
	r.running = true

	r.workerWG.Add(2)
	go r.run()
	go r.pumpQueue()

	r.logger.Info().Int("port", r.port).Msg("rttrpm receiver started")
	return nil
}

// Stop signals the worker to exit, shuts down the socket to unblock any
// pending read, and joins both goroutines within stopJoinBudget. Stop is
// idempotent; calling it twice, or before Start, is a no-op.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.quit)
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	done := make(chan struct{})
	go func() {
		r.workerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(stopJoinBudget):
		r.logger.Warn().Msg("rttrpm receiver stop exceeded join budget")
	}

	return nil
}

func (r *Receiver) run() {
	defer r.workerWG.Done()
	defer close(r.queue)

	buf := make([]byte, bufferSize)
	for {
		select {
		case <-r.quit:
			return
		default:
		}

		r.mu.Lock()
		conn := r.conn
		r.mu.Unlock()
		if conn == nil {
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Any other error (including the Close() from Stop) ends the
			// worker; the socket is no longer usable.
			return
		}
		if n < 4 {
			continue
		}

		pkt, ok := DecodePacket(buf[:n])
		if !ok {
			continue
		}

		msg := Message{
			ID:         uuid.New(),
			Packet:     pkt,
			SenderIP:   addr.IP.String(),
			SenderPort: addr.Port,
		}

		if r.recorder != nil {
			if err := r.recorder.Record(msg); err != nil {
				r.logger.Warn().Err(err).Str("correlation_id", msg.ID.String()).Msg("replay recorder failed")
			}
		}

		r.listenersMu.RLock()
		for _, l := range r.realtimeListeners {
			l(msg)
		}
		hasQueued := len(r.queuedListeners) > 0
		r.listenersMu.RUnlock()

		if hasQueued {
			select {
			case r.queue <- msg:
			case <-r.quit:
				return
			}
		}
	}
}

func (r *Receiver) pumpQueue() {
	defer r.workerWG.Done()
	for msg := range r.queue {
		r.listenersMu.RLock()
		listeners := append([]QueuedListener(nil), r.queuedListeners...)
		r.listenersMu.RUnlock()
		for _, l := range listeners {
			l(msg)
		}
	}
}
