// Package remoteobject defines the data model shared by every component of
// the bridge: the closed set of semantic fields a simulated mixing device
// exposes, the addressing scheme used to disambiguate instances of those
// fields, and the tagged value union carried by messages that read or write
// them.
package remoteobject

// Id identifies one semantic field of the simulated device: a position, a
// gain, a mute, a name, or a transport-control pseudo-field. The set is
// closed; callers never invent new ids at runtime.
type Id int

const (
	// Invalid marks a message whose id could not be determined. It is
	// never pollable.
	Invalid Id = iota

	// SourcePosX is the x component of a source's absolute position.
	SourcePosX
	// SourcePosY is the y component of a source's absolute position.
	SourcePosY
	// SourcePosXY is the combined (x, y) absolute position, coupled with
	// SourcePosX/SourcePosY at the same address (see Store propagation).
	SourcePosXY
	// CoordMapSourcePosXY is the coordinate-mapped counterpart of
	// SourcePosXY, emitted instead of the absolute id when a mapping area
	// is configured (see bridge.Processor).
	CoordMapSourcePosXY
	// SourceSpread is the spread of a positioned source, 0..1.
	SourceSpread
	// SourceDelayMode is a tri-state (0, 1, 2) delay mode selector.
	SourceDelayMode

	// MatrixInGain is a matrix input's gain, in dB.
	MatrixInGain
	// MatrixInMute is a matrix input's mute state, 0 or 1.
	MatrixInMute
	// MatrixInLevelPreMute is a matrix input's pre-mute level meter, in dB.
	MatrixInLevelPreMute
	// MatrixInReverbSendGain is a matrix input's reverb send gain, in dB.
	MatrixInReverbSendGain
	// MatrixInChannelName is a matrix input's static display name.
	MatrixInChannelName

	// MatrixOutGain is a matrix output's gain, in dB.
	MatrixOutGain
	// MatrixOutMute is a matrix output's mute state, 0 or 1.
	MatrixOutMute
	// MatrixOutLevelPostMute is a matrix output's post-mute level meter, in dB.
	MatrixOutLevelPostMute
	// MatrixOutChannelName is a matrix output's static display name.
	MatrixOutChannelName

	// DeviceName is the simulated device's static display name.
	DeviceName

	// HeartbeatPing, when polled, always draws a HeartbeatPong reply.
	HeartbeatPing
	// HeartbeatPong is never itself a valid poll target.
	HeartbeatPong
)

// String renders the id the way it would appear in a log line; it is not a
// wire format.
func (id Id) String() string {
	switch id {
	case SourcePosX:
		return "SourcePos_X"
	case SourcePosY:
		return "SourcePos_Y"
	case SourcePosXY:
		return "SourcePos_XY"
	case CoordMapSourcePosXY:
		return "CoordMap_SourcePos_XY"
	case SourceSpread:
		return "SourceSpread"
	case SourceDelayMode:
		return "SourceDelayMode"
	case MatrixInGain:
		return "MatrixIn_Gain"
	case MatrixInMute:
		return "MatrixIn_Mute"
	case MatrixInLevelPreMute:
		return "MatrixIn_LevelPreMute"
	case MatrixInReverbSendGain:
		return "MatrixIn_ReverbSendGain"
	case MatrixInChannelName:
		return "MatrixIn_ChannelName"
	case MatrixOutGain:
		return "MatrixOut_Gain"
	case MatrixOutMute:
		return "MatrixOut_Mute"
	case MatrixOutLevelPostMute:
		return "MatrixOut_LevelPostMute"
	case MatrixOutChannelName:
		return "MatrixOut_ChannelName"
	case DeviceName:
		return "DeviceName"
	case HeartbeatPing:
		return "HeartbeatPing"
	case HeartbeatPong:
		return "HeartbeatPong"
	default:
		return "Invalid"
	}
}
