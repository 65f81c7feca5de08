package rttrpm

import "encoding/binary"

// Signature is one of the four byte-order markers a RTTrP header can carry
// for its integer or float fields.
type Signature uint16

const (
	BigEndianInt      Signature = 0x4154
	LittleEndianInt   Signature = 0x5441
	BigEndianFloat    Signature = 0x4334
	LittleEndianFloat Signature = 0x3443
)

// HeaderSize is the fixed length, in bytes, of the RTTrP preamble.
const HeaderSize = 18

// Header is the fixed 18-byte RTTrP preamble: two signatures selecting
// per-field byte order, a version, a packet id, a format tag, a total
// packet size, a user context, and a module count. Grounded on
// RTTrPMHeader.cpp/.h, generalised from the original's big-endian-only
// acceptance to the full per-spec contract: either byte order is
// recognised for the integer signature, and the float signature
// independently selects float byte order.
type Header struct {
	intSignature   Signature
	floatSignature Signature
	version        uint16
	packetID       uint32
	format         byte
	size           uint16
	context        uint32
	numModules     byte

	intOrder   binary.ByteOrder
	floatOrder binary.ByteOrder
}

func (h Header) GetIntSignature() Signature   { return h.intSignature }
func (h Header) GetFloatSignature() Signature { return h.floatSignature }
func (h Header) GetVersion() uint16           { return h.version }
func (h Header) GetPacketID() uint32          { return h.packetID }
func (h Header) GetPacketFormat() byte        { return h.format }
func (h Header) GetPacketSize() uint16        { return h.size }
func (h Header) GetContext() uint32           { return h.context }
func (h Header) GetNumberOfModules() byte     { return h.numModules }

// IntOrder returns the byte order to use for integer fields in the modules
// that follow this header.
func (h Header) IntOrder() binary.ByteOrder { return h.intOrder }

// FloatOrder returns the byte order to use for float fields in the modules
// that follow this header.
func (h Header) FloatOrder() binary.ByteOrder { return h.floatOrder }

func intByteOrder(sig Signature) (binary.ByteOrder, bool) {
	switch sig {
	case BigEndianInt:
		return binary.BigEndian, true
	case LittleEndianInt:
		return binary.LittleEndian, true
	default:
		return nil, false
	}
}

func floatByteOrder(sig Signature) binary.ByteOrder {
	if sig == LittleEndianFloat {
		return binary.LittleEndian
	}
	// BigEndianFloat, or anything unrecognised, defaults to big endian:
	// an unrecognised float signature is not fatal to the packet (only
	// the integer signature gates emptiness, per contract).
	return binary.BigEndian
}

// DecodeHeader parses the RTTrP preamble starting at pos in data. On
// success it returns the decoded header and the new cursor position
// (pos+HeaderSize). If the buffer is too short to hold a header, or the
// integer signature is not recognised, it returns a zero-sized Header
// (GetPacketSize() == 0) and the original pos unchanged — callers must
// treat a zero-sized header as a no-op, never as modules to decode.
func DecodeHeader(data []byte, pos int) (Header, int) {
	if pos < 0 || pos+HeaderSize > len(data) {
		return Header{}, pos
	}

	buf := data[pos : pos+HeaderSize]
	intSig := Signature(binary.BigEndian.Uint16(buf[0:2]))
	floatSig := Signature(binary.BigEndian.Uint16(buf[2:4]))

	intOrder, ok := intByteOrder(intSig)
	if !ok {
		return Header{}, pos
	}
	floatOrder := floatByteOrder(floatSig)

	h := Header{
		intSignature:   intSig,
		floatSignature: floatSig,
		version:        intOrder.Uint16(buf[4:6]),
		packetID:       intOrder.Uint32(buf[6:10]),
		format:         buf[10],
		size:           intOrder.Uint16(buf[11:13]),
		context:        intOrder.Uint32(buf[13:17]),
		numModules:     buf[17],
		intOrder:       intOrder,
		floatOrder:     floatOrder,
	}
	return h, pos + HeaderSize
}
