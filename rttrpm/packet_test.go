package rttrpm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePacketOneTrackableOnePoint(t *testing.T) {
	trackablePayload := append([]byte{1, '7'}, 1, 0) // name "7", 1 sub-module, no timestamp
	pointPayload := append([]byte{0}, float32BE(0.25)...)
	pointPayload = append(pointPayload, float32BE(0.75)...)
	pointPayload = append(pointPayload, float32BE(0)...)

	body := appendModule(nil, ModuleTrackable, trackablePayload)
	body = appendModule(body, ModuleTrackedPointPosition, pointPayload)

	buf := buildHeader(t, BigEndianInt, BigEndianFloat, binary.BigEndian, 1, 1, 0, uint16(HeaderSize+len(body)), 0, 1)
	buf = append(buf, body...)

	pkt, ok := DecodePacket(buf)
	require.True(t, ok)
	require.Len(t, pkt.Trackables, 1)
	require.Equal(t, "7", pkt.Trackables[0].Trackable.Name)
	require.Len(t, pkt.Trackables[0].SubModules, 1)

	p, isPoint := pkt.Trackables[0].SubModules[0].(TrackedPointPosition)
	require.True(t, isPoint)
	require.InDelta(t, 0.25, p.X, 1e-6)
	require.InDelta(t, 0.75, p.Y, 1e-6)
}

func TestDecodePacketZeroSizeHeaderIsNoOp(t *testing.T) {
	buf := buildHeader(t, Signature(0), BigEndianFloat, binary.BigEndian, 1, 1, 0, 0, 0, 1)

	_, ok := DecodePacket(buf)
	require.False(t, ok)
}

func TestDecodePacketMultipleTrackablesNoSubmodules(t *testing.T) {
	var body []byte
	body = appendModule(body, ModuleTrackable, append([]byte{1, 'A'}, 0, 0))
	body = appendModule(body, ModuleTrackable, append([]byte{1, 'B'}, 0, 0))

	buf := buildHeader(t, BigEndianInt, BigEndianFloat, binary.BigEndian, 1, 1, 0, uint16(HeaderSize+len(body)), 0, 2)
	buf = append(buf, body...)

	pkt, ok := DecodePacket(buf)
	require.True(t, ok)
	require.Len(t, pkt.Trackables, 2)
	require.Equal(t, "A", pkt.Trackables[0].Trackable.Name)
	require.Equal(t, "B", pkt.Trackables[1].Trackable.Name)
}
