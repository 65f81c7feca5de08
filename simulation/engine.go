package simulation

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rttrpmbridge/core/remoteobject"
	"github.com/rttrpmbridge/core/tick"
)

// NodeRouter is the upstream collaborator the engine forwards writes
// through and replies on. Grounded on spec.md §6's "Upstream node API" and
// ProcessingEngineNode::SendMessageTo/GetProtocolAIds/GetProtocolBIds as
// referenced throughout DS100_DeviceSimulation.cpp.
type NodeRouter interface {
	SendTo(protocolID string, msg remoteobject.Message) bool
	ProtocolsA() []string
	ProtocolsB() []string
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the engine's logger. The default is the global
// zerolog logger with a "component" field of "simulation.Engine".
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Engine is the device simulation engine (§4.F): a current-value Store, a
// periodic tick.Driver that regenerates oscillating values, and a
// SnapshotHub that observes every state change. Grounded on
// DS100_DeviceSimulation as a whole.
type Engine struct {
	store  *Store
	router NodeRouter
	hub    *SnapshotHub
	driver *tick.Driver
	logger zerolog.Logger
}

// NewEngine constructs and initialises an Engine: the store is populated
// for channelCount/mappingCount immediately, and the tick driver is started
// if refreshInterval > 0 (0 disables ticking, per spec.md §6).
func NewEngine(router NodeRouter, channelCount, mappingCount int, refreshInterval time.Duration, opts ...Option) *Engine {
	e := &Engine{
		store:  NewStore(),
		router: router,
		logger: log.With().Str("component", "simulation.Engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hub = NewSnapshotHub(WithHubLogger(log.With().Str("component", "simulation.SnapshotHub").Logger()))

	e.store.Init(channelCount, mappingCount)

	if refreshInterval > 0 {
		e.driver = tick.New(refreshInterval, refreshInterval, e.onTick, tick.WithLogger(e.logger))
		e.driver.Start()
	}

	return e
}

// Stop halts the tick driver, if one is running. Stop is idempotent.
func (e *Engine) Stop() {
	if e.driver != nil {
		e.driver.Stop()
	}
}

// AddSnapshotListener registers l to receive a Snapshot after every write
// and every tick, on its own goroutine.
func (e *Engine) AddSnapshotListener(l SnapshotListener) (remove func()) {
	return e.hub.AddListener(l)
}

// Get exposes the store's current value for (id, addr), mainly for tests
// and diagnostics; the protocol-facing path is OnReceivedMessageFromProtocol.
func (e *Engine) Get(id remoteobject.Id, addr remoteobject.Address) (remoteobject.Value, bool) {
	return e.store.Get(id, addr)
}

func (e *Engine) onTick() {
	e.store.Tick()
	e.hub.Notify(e.store.Snapshot())
}

// OnReceivedMessageFromProtocol is the engine's half of the upstream node
// API (§6): the node calls this for every inbound message addressed to the
// simulation handler. A None-valued message at a pollable id is answered
// directly to protocolID; any other message is treated as a write, applied
// to the store (with coupled-field propagation), and forwarded to the
// peers on the other side of the type-A/type-B partition. Grounded on
// DS100_DeviceSimulation::OnReceivedMessageFromProtocol.
func (e *Engine) OnReceivedMessageFromProtocol(protocolID string, msg remoteobject.Message) bool {
	if remoteobject.IsPollable(msg.Id) && msg.Value.IsEmpty() {
		return e.replyToPoll(protocolID, msg)
	}
	return e.write(protocolID, msg)
}

func (e *Engine) replyToPoll(protocolID string, msg remoteobject.Message) bool {
	value, ok := e.store.Get(msg.Id, msg.Address)
	if !ok {
		return false
	}

	replyID := msg.Id
	if msg.Id == remoteobject.HeartbeatPing {
		replyID = remoteobject.HeartbeatPong
	}

	return e.router.SendTo(protocolID, remoteobject.Message{
		Id:      replyID,
		Address: msg.Address,
		Value:   value,
	})
}

func (e *Engine) write(protocolID string, msg remoteobject.Message) bool {
	committed, _ := e.store.Write(msg.Id, msg.Address, msg.Value)

	e.hub.Notify(e.store.Snapshot())

	outMsg := remoteobject.Message{Id: msg.Id, Address: msg.Address, Value: committed}

	if contains(e.router.ProtocolsA(), protocolID) {
		return e.forwardTo(e.router.ProtocolsB(), outMsg)
	}
	if contains(e.router.ProtocolsB(), protocolID) {
		return e.forwardTo(e.router.ProtocolsA(), outMsg)
	}
	return false
}

func (e *Engine) forwardTo(targets []string, msg remoteobject.Message) bool {
	success := true
	for _, target := range targets {
		success = e.router.SendTo(target, msg) && success
	}
	return success
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
