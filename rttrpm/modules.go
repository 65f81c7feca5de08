package rttrpm

import "math"

// ModuleType tags the payload that follows a module's 3-byte prefix (1-byte
// type, 2-byte payload size). The concrete tag values are this
// implementation's own wire assignment: the retrieved reference sources
// document the dispatch switch in RTTrPMReceiver::HandleBuffer but not the
// PacketModules.h payload layouts themselves, so the exact tag numbers and
// field orders below are a self-consistent design decision recorded in
// DESIGN.md rather than a byte-for-byte port.
type ModuleType byte

const (
	ModuleInvalid                  ModuleType = 0
	ModuleTrackable                ModuleType = 1
	ModuleCentroidPosition         ModuleType = 2
	ModuleTrackedPointPosition     ModuleType = 3
	ModuleOrientationQuaternion    ModuleType = 4
	ModuleOrientationEuler         ModuleType = 5
	ModuleCentroidAccelAndVelo     ModuleType = 6
	ModuleTrackedPointAccelAndVelo ModuleType = 7
	ModuleZoneCollisionDetection   ModuleType = 8
)

// moduleHeaderSize is the length of the per-module prefix: a 1-byte type tag
// and a 2-byte payload size, both read before any type-specific decoding.
const moduleHeaderSize = 3

// Module is any decoded RTTrP sub-module. Unrecognised types decode to
// UnknownModule rather than being discarded, so a caller can still see the
// packet's module count agree with the header.
type Module interface {
	Type() ModuleType
}

// Trackable opens an addressing scope: its Name (parsed elsewhere as a
// decimal channel id) and sub-module count apply to every sub-module that
// follows, until the next Trackable or end of packet.
type Trackable struct {
	Name           string
	SubModuleCount int
	HasTimestamp   bool
	Timestamp      uint32
}

func (Trackable) Type() ModuleType { return ModuleTrackable }

// CentroidPosition is the tracked rigid body's centroid in 3-space.
type CentroidPosition struct{ X, Y, Z float64 }

func (CentroidPosition) Type() ModuleType { return ModuleCentroidPosition }

// TrackedPointPosition is one named point's position within a trackable.
type TrackedPointPosition struct {
	PointIndex int
	X, Y, Z    float64
}

func (TrackedPointPosition) Type() ModuleType { return ModuleTrackedPointPosition }

// OrientationQuaternion is the trackable's orientation as a unit quaternion.
type OrientationQuaternion struct{ W, X, Y, Z float64 }

func (OrientationQuaternion) Type() ModuleType { return ModuleOrientationQuaternion }

// OrientationEuler is the trackable's orientation as Euler angles, in the
// rotation order named by Order.
type OrientationEuler struct {
	Order            byte
	Yaw, Pitch, Roll float64
}

func (OrientationEuler) Type() ModuleType { return ModuleOrientationEuler }

// CentroidAccelAndVelo carries the centroid's instantaneous acceleration and
// velocity vectors.
type CentroidAccelAndVelo struct {
	AccelX, AccelY, AccelZ float64
	VeloX, VeloY, VeloZ    float64
}

func (CentroidAccelAndVelo) Type() ModuleType { return ModuleCentroidAccelAndVelo }

// TrackedPointAccelAndVelo is the per-point counterpart of
// CentroidAccelAndVelo.
type TrackedPointAccelAndVelo struct {
	PointIndex             int
	AccelX, AccelY, AccelZ float64
	VeloX, VeloY, VeloZ    float64
}

func (TrackedPointAccelAndVelo) Type() ModuleType { return ModuleTrackedPointAccelAndVelo }

// Zone is one entry of a ZoneCollisionDetection module: a zone id and an
// enter(1)/exit(0) event byte.
type Zone struct {
	ZoneID int
	Event  byte
}

// ZoneCollisionDetection reports every zone boundary crossed since the last
// report.
type ZoneCollisionDetection struct{ Zones []Zone }

func (ZoneCollisionDetection) Type() ModuleType { return ModuleZoneCollisionDetection }

// UnknownModule is produced for a type tag this decoder does not recognise;
// the cursor still advances by the module's declared payload size so
// decoding of the rest of the packet is unaffected.
type UnknownModule struct{ RawType ModuleType }

func (m UnknownModule) Type() ModuleType { return m.RawType }

type cursor struct {
	buf   []byte
	pos   int
	order Header
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) byte() (byte, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	b := c.buf[c.pos]
	c.pos++
	return b, true
}

func (c *cursor) uint16() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := c.order.IntOrder().Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v, true
}

func (c *cursor) uint32() (uint32, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	v := c.order.IntOrder().Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, true
}

func (c *cursor) float32() (float64, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	bits := c.order.FloatOrder().Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return float64(math.Float32frombits(bits)), true
}

func (c *cursor) bytesN(n int) ([]byte, bool) {
	if c.remaining() < n {
		return nil, false
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, true
}

// DecodeModule decodes one module starting at pos: a 3-byte prefix (type tag,
// payload size) followed by size bytes of type-specific payload. h supplies
// the byte order for both the prefix and the payload, as signalled by the
// packet's header. It returns the decoded module and the position
// immediately after the payload. ok is false if the buffer is too short to
// hold the declared payload, in which case pos is unchanged and decoding of
// the packet must stop.
func DecodeModule(data []byte, pos int, h Header) (Module, int, bool) {
	if pos+moduleHeaderSize > len(data) {
		return nil, pos, false
	}
	typ := ModuleType(data[pos])
	size := int(h.IntOrder().Uint16(data[pos+1 : pos+3]))
	payloadStart := pos + moduleHeaderSize
	payloadEnd := payloadStart + size
	if payloadEnd > len(data) {
		return nil, pos, false
	}

	c := &cursor{buf: data[payloadStart:payloadEnd], order: h}

	switch typ {
	case ModuleTrackable:
		m, ok := decodeTrackable(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	case ModuleCentroidPosition:
		m, ok := decodeCentroidPosition(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	case ModuleTrackedPointPosition:
		m, ok := decodeTrackedPointPosition(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	case ModuleOrientationQuaternion:
		m, ok := decodeOrientationQuaternion(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	case ModuleOrientationEuler:
		m, ok := decodeOrientationEuler(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	case ModuleCentroidAccelAndVelo:
		m, ok := decodeCentroidAccelAndVelo(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	case ModuleTrackedPointAccelAndVelo:
		m, ok := decodeTrackedPointAccelAndVelo(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	case ModuleZoneCollisionDetection:
		m, ok := decodeZoneCollisionDetection(c)
		if !ok {
			return nil, pos, false
		}
		return m, payloadEnd, true
	default:
		// Unknown type: the peeked type tag and declared size are all that
		// is needed to skip it and keep decoding the rest of the packet.
		return UnknownModule{RawType: typ}, payloadEnd, true
	}
}

func decodeTrackable(c *cursor) (Trackable, bool) {
	nameLen, ok := c.byte()
	if !ok {
		return Trackable{}, false
	}
	nameBytes, ok := c.bytesN(int(nameLen))
	if !ok {
		return Trackable{}, false
	}
	subCount, ok := c.byte()
	if !ok {
		return Trackable{}, false
	}
	hasTS, ok := c.byte()
	if !ok {
		return Trackable{}, false
	}
	t := Trackable{
		Name:           string(nameBytes),
		SubModuleCount: int(subCount),
		HasTimestamp:   hasTS != 0,
	}
	if t.HasTimestamp {
		ts, ok := c.uint32()
		if !ok {
			return Trackable{}, false
		}
		t.Timestamp = ts
	}
	return t, true
}

func decodeCentroidPosition(c *cursor) (CentroidPosition, bool) {
	x, ok1 := c.float32()
	y, ok2 := c.float32()
	z, ok3 := c.float32()
	if !(ok1 && ok2 && ok3) {
		return CentroidPosition{}, false
	}
	return CentroidPosition{X: x, Y: y, Z: z}, true
}

func decodeTrackedPointPosition(c *cursor) (TrackedPointPosition, bool) {
	idx, ok := c.byte()
	if !ok {
		return TrackedPointPosition{}, false
	}
	x, ok1 := c.float32()
	y, ok2 := c.float32()
	z, ok3 := c.float32()
	if !(ok1 && ok2 && ok3) {
		return TrackedPointPosition{}, false
	}
	return TrackedPointPosition{PointIndex: int(idx), X: x, Y: y, Z: z}, true
}

func decodeOrientationQuaternion(c *cursor) (OrientationQuaternion, bool) {
	w, ok1 := c.float32()
	x, ok2 := c.float32()
	y, ok3 := c.float32()
	z, ok4 := c.float32()
	if !(ok1 && ok2 && ok3 && ok4) {
		return OrientationQuaternion{}, false
	}
	return OrientationQuaternion{W: w, X: x, Y: y, Z: z}, true
}

func decodeOrientationEuler(c *cursor) (OrientationEuler, bool) {
	order, ok := c.byte()
	if !ok {
		return OrientationEuler{}, false
	}
	yaw, ok1 := c.float32()
	pitch, ok2 := c.float32()
	roll, ok3 := c.float32()
	if !(ok1 && ok2 && ok3) {
		return OrientationEuler{}, false
	}
	return OrientationEuler{Order: order, Yaw: yaw, Pitch: pitch, Roll: roll}, true
}

func decodeCentroidAccelAndVelo(c *cursor) (CentroidAccelAndVelo, bool) {
	vals := make([]float64, 6)
	for i := range vals {
		v, ok := c.float32()
		if !ok {
			return CentroidAccelAndVelo{}, false
		}
		vals[i] = v
	}
	return CentroidAccelAndVelo{
		AccelX: vals[0], AccelY: vals[1], AccelZ: vals[2],
		VeloX: vals[3], VeloY: vals[4], VeloZ: vals[5],
	}, true
}

func decodeTrackedPointAccelAndVelo(c *cursor) (TrackedPointAccelAndVelo, bool) {
	idx, ok := c.byte()
	if !ok {
		return TrackedPointAccelAndVelo{}, false
	}
	vals := make([]float64, 6)
	for i := range vals {
		v, ok := c.float32()
		if !ok {
			return TrackedPointAccelAndVelo{}, false
		}
		vals[i] = v
	}
	return TrackedPointAccelAndVelo{
		PointIndex: int(idx),
		AccelX:     vals[0], AccelY: vals[1], AccelZ: vals[2],
		VeloX: vals[3], VeloY: vals[4], VeloZ: vals[5],
	}, true
}

func decodeZoneCollisionDetection(c *cursor) (ZoneCollisionDetection, bool) {
	count, ok := c.byte()
	if !ok {
		return ZoneCollisionDetection{}, false
	}
	zones := make([]Zone, 0, count)
	for i := 0; i < int(count); i++ {
		id, ok := c.uint16()
		if !ok {
			return ZoneCollisionDetection{}, false
		}
		event, ok := c.byte()
		if !ok {
			return ZoneCollisionDetection{}, false
		}
		zones = append(zones, Zone{ZoneID: int(id), Event: event})
	}
	return ZoneCollisionDetection{Zones: zones}, true
}
