// Package bridge adapts decoded RTTrP packets into semantic remote-object
// messages and forwards them to the upstream node.
package bridge

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rttrpmbridge/core/remoteobject"
	"github.com/rttrpmbridge/core/rttrpm"
)

// NodeRouter is the upstream collaborator a Processor delivers semantic
// messages to. Grounded on ProcessingEngineNode as referenced throughout
// RTTrPMProtocolProcessor.cpp and spec.md §6's inbound callback
// on_received_from_protocol.
type NodeRouter interface {
	Deliver(protocolID string, msg remoteobject.Message) bool
}

// Option configures a Processor at construction time.
type Option func(*Processor)

// WithSenderFilter restricts the processor to packets from exactly one
// source IP; the empty string (the default) accepts any sender.
func WithSenderFilter(ip string) Option {
	return func(p *Processor) { p.senderFilter = ip }
}

// WithLogger overrides the processor's logger. The default is the global
// zerolog logger with a "component" field of "bridge.Processor".
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

type muteKey struct {
	id   remoteobject.Id
	addr remoteobject.Address
}

// Processor is the RTTrP protocol adapter (§4.D): it filters by sender,
// tracks the trackable scope opened by each Trackable module, maps
// TrackedPointPosition modules to SourcePos_XY/CoordMap_SourcePos_XY
// messages, and forwards unmuted messages to the node. The protocol never
// initiates writes (RTTrP is receive-only).
type Processor struct {
	protocolID   string
	router       NodeRouter
	mappingArea  int
	senderFilter string
	logger       zerolog.Logger

	mu    sync.RWMutex
	muted map[muteKey]bool
}

// NewProcessor constructs a Processor that delivers to router under
// protocolID, tagging every emitted address with mappingArea (pass
// remoteobject.Unaddressed for "absolute/no mapping").
func NewProcessor(protocolID string, router NodeRouter, mappingArea int, opts ...Option) *Processor {
	p := &Processor{
		protocolID:  protocolID,
		router:      router,
		mappingArea: mappingArea,
		logger:      log.With().Str("component", "bridge.Processor").Logger(),
		muted:       make(map[muteKey]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mute suppresses emission of (id, addr) until Unmute is called.
func (p *Processor) Mute(id remoteobject.Id, addr remoteobject.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted[muteKey{id, addr}] = true
}

// Unmute re-enables emission of (id, addr).
func (p *Processor) Unmute(id remoteobject.Id, addr remoteobject.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.muted, muteKey{id, addr})
}

func (p *Processor) isMuted(id remoteobject.Id, addr remoteobject.Address) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.muted[muteKey{id, addr}]
}

// HandleRTTrPMessage is the rttrpm.Receiver listener this processor
// registers (as either a realtime or queued listener, per deployment
// choice). It applies the sender filter, then walks the packet's
// trackables in order, emitting one message per recognised, unmuted
// sub-module. Grounded on RTTrPMProtocolProcessor::RTTrPMModuleReceived.
func (p *Processor) HandleRTTrPMessage(msg rttrpm.Message) {
	if p.senderFilter != "" && msg.SenderIP != p.senderFilter {
		p.logger.Debug().Str("correlation_id", msg.ID.String()).Str("sender", msg.SenderIP).Msg("dropping packet: sender filter mismatch")
		return
	}

	for _, group := range msg.Packet.Trackables {
		channel, err := strconv.Atoi(group.Trackable.Name)
		if err != nil {
			p.logger.Debug().Str("correlation_id", msg.ID.String()).Str("name", group.Trackable.Name).Msg("dropping trackable: non-numeric name")
			continue
		}
		addr := remoteobject.Address{Channel: channel, Mapping: p.mappingArea}

		for _, sub := range group.SubModules {
			p.emit(addr, sub)
		}
	}
}

func (p *Processor) emit(addr remoteobject.Address, sub rttrpm.Module) {
	switch v := sub.(type) {
	case rttrpm.TrackedPointPosition:
		id := remoteobject.SourcePosXY
		if p.mappingArea != remoteobject.Unaddressed {
			id = remoteobject.CoordMapSourcePosXY
		}
		p.deliver(id, addr, remoteobject.Float(v.X, v.Y))
	default:
		// Decoded for completeness; no semantic remote-object mapping is
		// defined for this module kind.
	}
}

func (p *Processor) deliver(id remoteobject.Id, addr remoteobject.Address, value remoteobject.Value) {
	if p.isMuted(id, addr) {
		return
	}
	p.router.Deliver(p.protocolID, remoteobject.Message{Id: id, Address: addr, Value: value})
}
