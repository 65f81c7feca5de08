// Package simulation implements the in-memory device simulation engine: a
// current-value store addressed by (id, channel, mapping), poll/write
// handling with coupled-field propagation, and a periodic oscillating
// value generator.
package simulation

import (
	"fmt"
	"math"
	"sync"

	"github.com/rttrpmbridge/core/remoteobject"
)

const deviceName = "DS100_DeviceSimulation"

// Store is the two-level current-value map id -> address -> value, guarded
// by a single read/write lock held for the whole duration of any
// initialisation, write+propagation+commit, poll lookup, tick update, or
// snapshot walk. Grounded on DS100_DeviceSimulation's m_currentValLock
// usage throughout InitDataValues/SetDataValue/UpdateDataValues/
// ReplyToDataRequest/notifyListeners; spec.md §5 explicitly sanctions a
// read/write lock here as a contention reduction over a single mutex.
type Store struct {
	mu     sync.RWMutex
	values map[remoteobject.Id]map[remoteobject.Address]remoteobject.Value
	phase  float64
}

// NewStore returns an empty store; call Init before using it.
func NewStore() *Store {
	return &Store{values: make(map[remoteobject.Id]map[remoteobject.Address]remoteobject.Value)}
}

func addressRange(addressed bool, count int) []int {
	if !addressed {
		return []int{remoteobject.Unaddressed}
	}
	if count <= 0 {
		return nil
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// addresses enumerates every (channel, mapping) pair id should have a store
// entry for, mapping outer and channel inner to match
// InitDataValues/UpdateDataValues's nested loop order.
func addresses(id remoteobject.Id, channelCount, mappingCount int) []remoteobject.Address {
	mappings := addressRange(remoteobject.IsMappingAddressed(id), mappingCount)
	channels := addressRange(remoteobject.IsChannelAddressed(id), channelCount)

	var out []remoteobject.Address
	for _, m := range mappings {
		for _, c := range channels {
			out = append(out, remoteobject.Address{Channel: c, Mapping: m})
		}
	}
	return out
}

func initialValue(id remoteobject.Id, addr remoteobject.Address) remoteobject.Value {
	switch id {
	case remoteobject.SourcePosXY:
		return remoteobject.Float(0, 0)
	case remoteobject.SourceDelayMode, remoteobject.MatrixInMute, remoteobject.MatrixOutMute:
		return remoteobject.Int(0)
	case remoteobject.MatrixInChannelName:
		return remoteobject.String(fmt.Sprintf("MatrixInput%d", addr.Channel))
	case remoteobject.MatrixOutChannelName:
		return remoteobject.String(fmt.Sprintf("MatrixOutput%d", addr.Channel))
	default:
		return remoteobject.Float(0)
	}
}

// Init (re-)populates the store for the given simulated channel and mapping
// counts: the heartbeat pair, the device name, and every (id, address)
// combination named by remoteobject.SimulatedIds. Grounded on
// DS100_DeviceSimulation::InitDataValues.
func (s *Store) Init(channelCount, mappingCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[remoteobject.Id]map[remoteobject.Address]remoteobject.Value)
	s.phase = 0

	s.values[remoteobject.HeartbeatPing] = map[remoteobject.Address]remoteobject.Value{
		remoteobject.UnaddressedKey: remoteobject.None,
	}
	s.values[remoteobject.HeartbeatPong] = map[remoteobject.Address]remoteobject.Value{
		remoteobject.UnaddressedKey: remoteobject.None,
	}
	s.values[remoteobject.DeviceName] = map[remoteobject.Address]remoteobject.Value{
		remoteobject.UnaddressedKey: remoteobject.String(deviceName),
	}

	for _, id := range remoteobject.SimulatedIds {
		if id == remoteobject.DeviceName {
			continue // already seeded at the unaddressed key above
		}
		entries := make(map[remoteobject.Address]remoteobject.Value)
		for _, addr := range addresses(id, channelCount, mappingCount) {
			entries[addr] = initialValue(id, addr)
		}
		s.values[id] = entries
	}
}

// Get returns the stored value for (id, addr), and whether it exists.
func (s *Store) Get(id remoteobject.Id, addr remoteobject.Address) (remoteobject.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id][addr]
	return v.Clone(), ok
}

// Snapshot walks the entire store, building address -> id -> floats: float
// payloads are copied, int payloads widened to float64, and string/none
// payloads omitted. Grounded on DS100_DeviceSimulation::notifyListeners'
// whole-map handoff to each DS100_DeviceSimulation_Listener.
func (s *Store) Snapshot() map[remoteobject.Address]map[remoteobject.Id][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[remoteobject.Address]map[remoteobject.Id][]float64)
	for id, entries := range s.values {
		for addr, v := range entries {
			var floats []float64
			switch v.Kind {
			case remoteobject.KindFloat:
				floats = append([]float64(nil), v.Floats...)
			case remoteobject.KindInt:
				floats = make([]float64, len(v.Ints))
				for i, n := range v.Ints {
					floats[i] = float64(n)
				}
			default:
				continue
			}
			if out[addr] == nil {
				out[addr] = make(map[remoteobject.Id][]float64)
			}
			out[addr][id] = floats
		}
	}
	return out
}

// Write commits value at (id, addr), performing the SourcePos_X/Y/XY
// coupled-field propagation first, and returns the value stored for id at
// addr. The primary write always commits, even when value's arity or kind
// does not match id's declared schema; only the coupled-field propagation
// checks arity, and skips just the mismatching side. ok is always true;
// it is retained so callers that need to distinguish a future rejection
// reason are not forced to change shape. Grounded on
// DS100_DeviceSimulation::SetDataValue, which applies no schema/arity gate
// to the primary id and only guards the cross-field propagation.
func (s *Store) Write(id remoteobject.Id, addr remoteobject.Address, value remoteobject.Value) (remoteobject.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.propagateLocked(id, addr, value)

	if s.values[id] == nil {
		s.values[id] = make(map[remoteobject.Address]remoteobject.Value)
	}
	committed := value.Clone()
	s.values[id][addr] = committed
	return committed.Clone(), true
}

// propagateLocked performs the best-effort SourcePos_X/Y/XY cross-writes.
// Arity mismatches silently skip the corresponding propagation; the
// primary write (performed by the caller after this returns) always
// commits regardless. Must be called with s.mu held for writing.
func (s *Store) propagateLocked(id remoteobject.Id, addr remoteobject.Address, value remoteobject.Value) {
	switch id {
	case remoteobject.SourcePosX:
		if xy, ok := s.values[remoteobject.SourcePosXY][addr]; ok {
			if xy.Kind == remoteobject.KindFloat && len(xy.Floats) == 2 && value.Kind == remoteobject.KindFloat && len(value.Floats) == 1 {
				xy.Floats[0] = value.Floats[0]
				s.values[remoteobject.SourcePosXY][addr] = xy
			}
		}
	case remoteobject.SourcePosY:
		if xy, ok := s.values[remoteobject.SourcePosXY][addr]; ok {
			if xy.Kind == remoteobject.KindFloat && len(xy.Floats) == 2 && value.Kind == remoteobject.KindFloat && len(value.Floats) == 1 {
				xy.Floats[1] = value.Floats[0]
				s.values[remoteobject.SourcePosXY][addr] = xy
			}
		}
	case remoteobject.SourcePosXY:
		if value.Kind != remoteobject.KindFloat || len(value.Floats) != 2 {
			return
		}
		if x, ok := s.values[remoteobject.SourcePosX][addr]; ok {
			if x.Kind == remoteobject.KindFloat && len(x.Floats) == 1 {
				x.Floats[0] = value.Floats[0]
				s.values[remoteobject.SourcePosX][addr] = x
			}
		}
		if y, ok := s.values[remoteobject.SourcePosY][addr]; ok {
			if y.Kind == remoteobject.KindFloat && len(y.Floats) == 1 {
				y.Floats[0] = value.Floats[1]
				s.values[remoteobject.SourcePosY][addr] = y
			}
		}
	}
}

// Tick advances the rolling phase by 0.1 and regenerates every non-static
// simulated id's value from the sin/cos oscillator pair, in place.
// Grounded on DS100_DeviceSimulation::UpdateDataValues.
func (s *Store) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase += 0.1

	for _, id := range remoteobject.SimulatedIds {
		if remoteobject.IsStatic(id) {
			continue
		}
		entries := s.values[id]
		for addr, v := range entries {
			s1 := 0.5 * (math.Sin(s.phase+0.1*float64(addr.Channel)) + 1)
			s2 := 0.5 * (math.Cos(s.phase+0.1*float64(addr.Channel)) + 1)
			entries[addr] = tickValue(id, v, s1, s2)
		}
	}
}

func tickValue(id remoteobject.Id, v remoteobject.Value, s1, s2 float64) remoteobject.Value {
	switch v.Kind {
	case remoteobject.KindFloat:
		switch len(v.Floats) {
		case 1:
			switch id {
			case remoteobject.MatrixInGain, remoteobject.MatrixInLevelPreMute, remoteobject.MatrixInReverbSendGain,
				remoteobject.MatrixOutGain, remoteobject.MatrixOutLevelPostMute:
				return remoteobject.Float(remoteobject.ScaleToRange(id, s1))
			case remoteobject.SourcePosY:
				return remoteobject.Float(s2)
			default:
				return remoteobject.Float(s1)
			}
		case 2:
			return remoteobject.Float(s1, s2)
		}
	case remoteobject.KindInt:
		if len(v.Ints) == 1 {
			switch id {
			case remoteobject.SourceDelayMode:
				return remoteobject.Int(int64(math.Floor(s1 * 3)))
			case remoteobject.MatrixInMute, remoteobject.MatrixOutMute:
				return remoteobject.Int(int64(math.Round(s1)))
			default:
				return remoteobject.Int(int64(s1))
			}
		}
	}
	return v
}
