package remoteobject

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchesSchemaArity(t *testing.T) {
	require.True(t, MatchesSchema(SourcePosXY, Float(0.1, 0.2)))
	require.False(t, MatchesSchema(SourcePosXY, Float(0.1)))
	require.True(t, MatchesSchema(SourcePosX, Float(0.1)))
	require.False(t, MatchesSchema(SourcePosX, Int(1)))
	require.True(t, MatchesSchema(MatrixInMute, Int(0)))
	require.True(t, MatchesSchema(DeviceName, String("DS100_DeviceSimulation")))
	require.True(t, MatchesSchema(HeartbeatPing, None))
}

func TestAddressingRules(t *testing.T) {
	require.True(t, IsChannelAddressed(SourcePosXY))
	require.True(t, IsMappingAddressed(SourcePosXY))
	require.True(t, IsChannelAddressed(MatrixInGain))
	require.False(t, IsMappingAddressed(MatrixInGain))
	require.False(t, IsChannelAddressed(DeviceName))
	require.False(t, IsMappingAddressed(DeviceName))
}

func TestStaticFixity(t *testing.T) {
	require.True(t, IsStatic(DeviceName))
	require.True(t, IsStatic(MatrixInChannelName))
	require.True(t, IsStatic(MatrixOutChannelName))
	require.False(t, IsStatic(MatrixInGain))
}

func TestRange(t *testing.T) {
	lo, hi, ok := Range(MatrixInGain)
	require.True(t, ok)
	require.Equal(t, -120.0, lo)
	require.Equal(t, 24.0, hi)

	require.Equal(t, lo+0.5*(hi-lo), ScaleToRange(MatrixInGain, 0.5))

	_, _, ok = Range(SourcePosX)
	require.False(t, ok)
	require.Equal(t, 0.5, ScaleToRange(SourcePosX, 0.5))
}

func TestValueClone(t *testing.T) {
	v := Float(1, 2)
	c := v.Clone()
	c.Floats[0] = 99
	require.Equal(t, 1.0, v.Floats[0])
	require.True(t, v.Equal(Float(1, 2)))
	require.False(t, v.Equal(c))
}

func TestPollability(t *testing.T) {
	require.True(t, IsPollable(HeartbeatPing))
	require.False(t, IsPollable(HeartbeatPong))
	require.False(t, IsPollable(Invalid))
	require.True(t, IsPollable(MatrixInGain))
}
