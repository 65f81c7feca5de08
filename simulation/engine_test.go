package simulation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rttrpmbridge/core/remoteobject"
)

type fakeRouter struct {
	mu     sync.Mutex
	a, b   []string
	sent   []sentMessage
	result bool
}

type sentMessage struct {
	protocolID string
	msg        remoteobject.Message
}

func newFakeRouter(a, b []string) *fakeRouter {
	return &fakeRouter{a: a, b: b, result: true}
}

func (f *fakeRouter) SendTo(protocolID string, msg remoteobject.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{protocolID: protocolID, msg: msg})
	return f.result
}

func (f *fakeRouter) ProtocolsA() []string { return f.a }
func (f *fakeRouter) ProtocolsB() []string { return f.b }

func (f *fakeRouter) sentTo(protocolID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, s := range f.sent {
		if s.protocolID == protocolID {
			out = append(out, s)
		}
	}
	return out
}

func TestEnginePollHeartbeat(t *testing.T) {
	router := newFakeRouter([]string{"p"}, []string{"q"})
	e := NewEngine(router, 4, 1, 0)
	defer e.Stop()

	ok := e.OnReceivedMessageFromProtocol("p", remoteobject.Message{
		Id:      remoteobject.HeartbeatPing,
		Address: remoteobject.UnaddressedKey,
		Value:   remoteobject.None,
	})
	require.True(t, ok)

	sent := router.sentTo("p")
	require.Len(t, sent, 1)
	require.Equal(t, remoteobject.HeartbeatPong, sent[0].msg.Id)
	require.True(t, sent[0].msg.Value.IsEmpty())
}

func TestEngineWriteXForwardsAToB(t *testing.T) {
	router := newFakeRouter([]string{"p"}, []string{"q"})
	e := NewEngine(router, 4, 1, 0)
	defer e.Stop()

	addr := remoteobject.Address{Channel: 3, Mapping: 1}
	ok := e.OnReceivedMessageFromProtocol("p", remoteobject.Message{
		Id:      remoteobject.SourcePosX,
		Address: addr,
		Value:   remoteobject.Float(0.7),
	})
	require.True(t, ok)

	v, found := e.Get(remoteobject.SourcePosX, addr)
	require.True(t, found)
	require.Equal(t, 0.7, v.Floats[0])

	xy, found := e.Get(remoteobject.SourcePosXY, addr)
	require.True(t, found)
	require.Equal(t, 0.7, xy.Floats[0])

	sent := router.sentTo("q")
	require.Len(t, sent, 1)
	require.Equal(t, remoteobject.SourcePosX, sent[0].msg.Id)
}

func TestEngineWriteFromUnknownProtocolIsDropped(t *testing.T) {
	router := newFakeRouter([]string{"p"}, []string{"q"})
	e := NewEngine(router, 4, 1, 0)
	defer e.Stop()

	ok := e.OnReceivedMessageFromProtocol("stranger", remoteobject.Message{
		Id:      remoteobject.SourcePosX,
		Address: remoteobject.Address{Channel: 1, Mapping: 1},
		Value:   remoteobject.Float(0.1),
	})
	require.False(t, ok)
}

func TestEngineTickNotifiesSnapshotListener(t *testing.T) {
	router := newFakeRouter([]string{"p"}, []string{"q"})
	e := NewEngine(router, 1, 1, 5*time.Millisecond)
	defer e.Stop()

	received := make(chan Snapshot, 1)
	e.AddSnapshotListener(func(s Snapshot) {
		select {
		case received <- s:
		default:
		}
	})

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick-driven snapshot")
	}
}
