package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rttrpmbridge/core/remoteobject"
	"github.com/rttrpmbridge/core/rttrpm"
)

type fakeRouter struct {
	delivered []delivery
	result    bool
}

type delivery struct {
	protocolID string
	msg        remoteobject.Message
}

func newFakeRouter() *fakeRouter { return &fakeRouter{result: true} }

func (f *fakeRouter) Deliver(protocolID string, msg remoteobject.Message) bool {
	f.delivered = append(f.delivered, delivery{protocolID: protocolID, msg: msg})
	return f.result
}

func packetWithPoint(t *testing.T, trackableName string, x, y float32) rttrpm.Packet {
	t.Helper()
	return rttrpm.Packet{
		Trackables: []rttrpm.TrackableGroup{
			{
				Trackable: rttrpm.Trackable{Name: trackableName, SubModuleCount: 1},
				SubModules: []rttrpm.Module{
					rttrpm.TrackedPointPosition{PointIndex: 0, X: float64(x), Y: float64(y), Z: 0},
				},
			},
		},
	}
}

func TestProcessorEmitsCoordMappedPosition(t *testing.T) {
	router := newFakeRouter()
	p := NewProcessor("rttrpm", router, 2)

	p.HandleRTTrPMessage(rttrpm.Message{
		Packet:   packetWithPoint(t, "7", 0.25, 0.75),
		SenderIP: "10.0.0.5",
	})

	require.Len(t, router.delivered, 1)
	d := router.delivered[0]
	require.Equal(t, "rttrpm", d.protocolID)
	require.Equal(t, remoteobject.CoordMapSourcePosXY, d.msg.Id)
	require.Equal(t, remoteobject.Address{Channel: 7, Mapping: 2}, d.msg.Address)
	require.Equal(t, []float64{0.25, 0.75}, d.msg.Value.Floats)
}

func TestProcessorAbsoluteWhenMappingAreaIsSentinel(t *testing.T) {
	router := newFakeRouter()
	p := NewProcessor("rttrpm", router, remoteobject.Unaddressed)

	p.HandleRTTrPMessage(rttrpm.Message{Packet: packetWithPoint(t, "1", 0.1, 0.2)})

	require.Len(t, router.delivered, 1)
	require.Equal(t, remoteobject.SourcePosXY, router.delivered[0].msg.Id)
}

func TestProcessorSenderFilterDropsMismatch(t *testing.T) {
	router := newFakeRouter()
	p := NewProcessor("rttrpm", router, 2, WithSenderFilter("10.0.0.5"))

	p.HandleRTTrPMessage(rttrpm.Message{
		Packet:   packetWithPoint(t, "7", 0.25, 0.75),
		SenderIP: "10.0.0.6",
	})

	require.Empty(t, router.delivered)
}

func TestProcessorMuteSuppressesEmission(t *testing.T) {
	router := newFakeRouter()
	p := NewProcessor("rttrpm", router, 2)
	addr := remoteobject.Address{Channel: 7, Mapping: 2}
	p.Mute(remoteobject.CoordMapSourcePosXY, addr)

	p.HandleRTTrPMessage(rttrpm.Message{Packet: packetWithPoint(t, "7", 0.1, 0.2)})
	require.Empty(t, router.delivered)

	p.Unmute(remoteobject.CoordMapSourcePosXY, addr)
	p.HandleRTTrPMessage(rttrpm.Message{Packet: packetWithPoint(t, "7", 0.1, 0.2)})
	require.Len(t, router.delivered, 1)
}

func TestProcessorSkipsNonNumericTrackableName(t *testing.T) {
	router := newFakeRouter()
	p := NewProcessor("rttrpm", router, 2)

	p.HandleRTTrPMessage(rttrpm.Message{Packet: packetWithPoint(t, "not-a-number", 0.1, 0.2)})
	require.Empty(t, router.delivered)
}
