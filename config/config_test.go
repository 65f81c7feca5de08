package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSimulationOptionsDefaults(t *testing.T) {
	raw := map[string]interface{}{
		"MODE": "DS100_DeviceSimulation",
	}

	opts, err := DecodeSimulationOptions(raw)
	require.NoError(t, err)
	require.Equal(t, 64, opts.SimulatedChannelCount)
	require.Equal(t, 1, opts.SimulatedMappingCount)
	require.Equal(t, 50, opts.RefreshIntervalMs)
}

func TestDecodeSimulationOptionsOverrides(t *testing.T) {
	raw := map[string]interface{}{
		"MODE":            "DS100_DeviceSimulation",
		"SIMCHCNT":        map[string]interface{}{"COUNT": 8},
		"SIMMAPCNT":       map[string]interface{}{"COUNT": 2},
		"REFRESHINTERVAL": map[string]interface{}{"INTERVAL": 0},
	}

	opts, err := DecodeSimulationOptions(raw)
	require.NoError(t, err)
	require.Equal(t, 8, opts.SimulatedChannelCount)
	require.Equal(t, 2, opts.SimulatedMappingCount)
	require.Equal(t, 0, opts.RefreshIntervalMs)
}

func TestDecodeSimulationOptionsWrongModeRejected(t *testing.T) {
	raw := map[string]interface{}{"MODE": "Something_Else"}

	_, err := DecodeSimulationOptions(raw)
	require.Error(t, err)
}

func TestDecodeRTTrPOptionsRequiresHostPort(t *testing.T) {
	raw := map[string]interface{}{
		"MAPPINGAREA": map[string]interface{}{"ID": -1},
	}

	_, err := DecodeRTTrPOptions(raw)
	require.Error(t, err)
}

func TestDecodeRTTrPOptionsRequiresMappingArea(t *testing.T) {
	raw := map[string]interface{}{
		"HOSTPORT": map[string]interface{}{"PORT": 9000},
	}

	_, err := DecodeRTTrPOptions(raw)
	require.Error(t, err)
}

func TestDecodeRTTrPOptionsSentinelMappingAreaPermitted(t *testing.T) {
	raw := map[string]interface{}{
		"HOSTPORT":    map[string]interface{}{"PORT": 9000},
		"MAPPINGAREA": map[string]interface{}{"ID": -1},
	}

	opts, err := DecodeRTTrPOptions(raw)
	require.NoError(t, err)
	require.Equal(t, 9000, opts.Port)
	require.Equal(t, -1, opts.MappingArea)
}
