package remoteobject

// schemaEntry captures the declared shape of one Id: its value kind and
// arity, and whether it is addressed by channel, by mapping, by both, or by
// neither. Grounded on the switch statements in the original
// DS100_DeviceSimulation::InitDataValues/IsDataRequestPollMessage/
// IsStaticValueRemoteObject.
type schemaEntry struct {
	kind              Kind
	arity             int
	channelAddressed  bool
	mappingAddressed  bool
	static            bool // never mutated by the tick
	pollable          bool // a None-valued message for this id requests a reply
}

var schema = map[Id]schemaEntry{
	SourcePosX:              {kind: KindFloat, arity: 1, channelAddressed: true, mappingAddressed: true, pollable: true},
	SourcePosY:              {kind: KindFloat, arity: 1, channelAddressed: true, mappingAddressed: true, pollable: true},
	SourcePosXY:             {kind: KindFloat, arity: 2, channelAddressed: true, mappingAddressed: true, pollable: true},
	CoordMapSourcePosXY:     {kind: KindFloat, arity: 2, channelAddressed: true, mappingAddressed: true, pollable: true},
	SourceSpread:            {kind: KindFloat, arity: 1, channelAddressed: true, pollable: true},
	SourceDelayMode:         {kind: KindInt, arity: 1, channelAddressed: true, pollable: true},
	MatrixInGain:            {kind: KindFloat, arity: 1, channelAddressed: true, pollable: true},
	MatrixInMute:            {kind: KindInt, arity: 1, channelAddressed: true, pollable: true},
	MatrixInLevelPreMute:    {kind: KindFloat, arity: 1, channelAddressed: true, pollable: true},
	MatrixInReverbSendGain:  {kind: KindFloat, arity: 1, channelAddressed: true, pollable: true},
	MatrixInChannelName:     {kind: KindString, channelAddressed: true, static: true, pollable: true},
	MatrixOutGain:           {kind: KindFloat, arity: 1, channelAddressed: true, pollable: true},
	MatrixOutMute:           {kind: KindInt, arity: 1, channelAddressed: true, pollable: true},
	MatrixOutLevelPostMute:  {kind: KindFloat, arity: 1, channelAddressed: true, pollable: true},
	MatrixOutChannelName:    {kind: KindString, channelAddressed: true, static: true, pollable: true},
	DeviceName:              {kind: KindString, static: true, pollable: true},
	HeartbeatPing:           {kind: KindNone, pollable: true},
	HeartbeatPong:           {kind: KindNone},
	Invalid:                 {kind: KindNone},
}

// IsChannelAddressed reports whether id's Address.Channel is meaningful
// (as opposed to always Unaddressed).
func IsChannelAddressed(id Id) bool { return schema[id].channelAddressed }

// IsMappingAddressed reports whether id's Address.Mapping is meaningful.
func IsMappingAddressed(id Id) bool { return schema[id].mappingAddressed }

// IsStatic reports whether id's value is fixed at initialisation and never
// touched by the periodic tick (DeviceName and the two channel-name ids).
func IsStatic(id Id) bool { return schema[id].static }

// IsPollable reports whether a None-valued message addressed to id
// constitutes a poll (request for the current value) rather than a no-op.
// HeartbeatPong and Invalid are never pollable.
func IsPollable(id Id) bool { return schema[id].pollable }

// KindOf returns id's declared value tag.
func KindOf(id Id) Kind { return schema[id].kind }

// Arity returns id's declared element count for Float/Int-kinded ids (1 for
// scalars, 2 for SourcePosXY/CoordMapSourcePosXY). Meaningless for
// KindString/KindNone.
func Arity(id Id) int { return schema[id].arity }

// MatchesSchema reports whether v's tag and arity agree with id's
// declaration. The simulation store does not call it: a primary write
// commits whatever value it is given.
func MatchesSchema(id Id, v Value) bool {
	e, ok := schema[id]
	if !ok {
		return false
	}
	if v.Kind != e.kind {
		return false
	}
	switch e.kind {
	case KindFloat:
		return len(v.Floats) == e.arity
	case KindInt:
		return len(v.Ints) == e.arity
	default:
		return true
	}
}

// dBRange is a linear [lo, hi] mapping target for the tick generator's
// 0..1 oscillator output, grounded on
// ProcessingEngineConfig::GetRemoteObjectRange referenced from
// DS100_DeviceSimulation::UpdateDataValues.
type dBRange struct{ lo, hi float64 }

var ranges = map[Id]dBRange{
	MatrixInGain:           {-120, 24},
	MatrixInLevelPreMute:   {-120, 24},
	MatrixInReverbSendGain: {-120, 24},
	MatrixOutGain:          {-120, 24},
	MatrixOutLevelPostMute: {-120, 24},
}

// Range reports id's declared [lo, hi] output range, if it has one (gain
// and level ids only). ok is false for every other id.
func Range(id Id) (lo, hi float64, ok bool) {
	r, ok := ranges[id]
	return r.lo, r.hi, ok
}

// ScaleToRange linearly maps s (expected in [0,1]) into id's declared
// range; it returns s unchanged if id has no declared range.
func ScaleToRange(id Id, s float64) float64 {
	lo, hi, ok := Range(id)
	if !ok {
		return s
	}
	return lo + s*(hi-lo)
}

// SimulatedIds is the closed list of ids the device simulation engine
// initialises and ticks, grounded on
// DS100_DeviceSimulation::setStateXml's m_simulatedRemoteObjects
// assignment. DeviceName is listed here but seeded separately by the
// engine's initialisation (it is not part of the per-address sweep); the
// heartbeat pair is not listed and is likewise seeded separately.
var SimulatedIds = []Id{
	SourcePosXY,
	SourcePosX,
	SourcePosY,
	SourceSpread,
	SourceDelayMode,
	MatrixInReverbSendGain,
	MatrixInLevelPreMute,
	MatrixInGain,
	MatrixInMute,
	MatrixOutLevelPostMute,
	MatrixOutGain,
	MatrixOutMute,
	MatrixInChannelName,
	MatrixOutChannelName,
	DeviceName,
}
