package rttrpm

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validPacket(t *testing.T) []byte {
	t.Helper()
	trackablePayload := append([]byte{1, '3'}, 0, 0)
	body := appendModule(nil, ModuleTrackable, trackablePayload)
	buf := buildHeader(t, BigEndianInt, BigEndianFloat, binary.BigEndian, 1, 1, 0, uint16(HeaderSize+len(body)), 0, 1)
	return append(buf, body...)
}

func TestReceiverDeliversRealtimeBeforeQueued(t *testing.T) {
	r := New(0)
	require.NoError(t, r.Start())
	defer r.Stop()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	r.AddRealtimeListener(func(Message) {
		mu.Lock()
		order = append(order, "realtime")
		mu.Unlock()
	})
	r.AddQueuedListener(func(Message) {
		mu.Lock()
		order = append(order, "queued")
		mu.Unlock()
		close(done)
	})

	conn, err := net.DialUDP("udp", nil, r.Addr())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(validPacket(t))
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queued delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"realtime", "queued"}, order)
}

func TestReceiverStopIsIdempotent(t *testing.T) {
	r := New(0)
	require.NoError(t, r.Start())
	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())
}

func TestReceiverBindFailureReturnsError(t *testing.T) {
	blocker := New(0)
	require.NoError(t, blocker.Start())
	defer blocker.Stop()

	taken := blocker.Addr().Port
	dup := New(taken)
	require.Error(t, dup.Start())
}
