package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rttrpmbridge/core/remoteobject"
)

func TestSnapshotOmitsStringsAndWidensInts(t *testing.T) {
	s := NewStore()
	s.Init(1, 1)

	snap := s.Snapshot()

	_, hasDeviceName := snap[remoteobject.UnaddressedKey][remoteobject.DeviceName]
	require.False(t, hasDeviceName)

	addr := remoteobject.Address{Channel: 1, Mapping: remoteobject.Unaddressed}
	vals, ok := snap[addr][remoteobject.MatrixInMute]
	require.True(t, ok)
	require.Equal(t, []float64{0}, vals)
}

func TestSnapshotHubCoalescesUnderBackpressure(t *testing.T) {
	h := NewSnapshotHub()

	block := make(chan struct{})
	delivered := make(chan Snapshot, 8)
	h.AddListener(func(s Snapshot) {
		<-block
		delivered <- s
	})

	first := Snapshot{remoteobject.UnaddressedKey: {remoteobject.HeartbeatPing: nil}}
	second := Snapshot{remoteobject.UnaddressedKey: {remoteobject.HeartbeatPong: nil}}

	h.Notify(first)
	time.Sleep(10 * time.Millisecond) // let the listener goroutine pick up `first` and block
	h.Notify(second)
	h.Notify(second)

	close(block)

	got := <-delivered
	require.Contains(t, got, remoteobject.UnaddressedKey)
}
