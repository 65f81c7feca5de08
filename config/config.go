// Package config decodes the untyped configuration tree supplied by the
// host into the flat option structs the simulation engine and RTTrP
// processor consume.
package config

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// simulationModeName is the only MODE value this core accepts for the
// device simulation handler (§6).
const simulationModeName = "DS100_DeviceSimulation"

const (
	defaultSimulatedChannelCount = 64
	defaultSimulatedMappingCount = 1
	defaultRefreshIntervalMs     = 50
)

// SimulationOptions is the flat option set the simulation engine is built
// from.
type SimulationOptions struct {
	SimulatedChannelCount int
	SimulatedMappingCount int
	RefreshIntervalMs     int
}

// RTTrPOptions is the flat option set the RTTrP receiver and processor are
// built from.
type RTTrPOptions struct {
	Port        int
	MappingArea int
}

type simChCntTag struct {
	Count int `mapstructure:"COUNT"`
}

type simMapCntTag struct {
	Count int `mapstructure:"COUNT"`
}

type refreshIntervalTag struct {
	Interval int `mapstructure:"INTERVAL"`
}

type hostPortTag struct {
	Port int `mapstructure:"PORT"`
}

type mappingAreaTag struct {
	ID int `mapstructure:"ID"`
}

type tree struct {
	Mode            string             `mapstructure:"MODE"`
	SimChCnt        simChCntTag        `mapstructure:"SIMCHCNT"`
	SimMapCnt       simMapCntTag       `mapstructure:"SIMMAPCNT"`
	RefreshInterval refreshIntervalTag `mapstructure:"REFRESHINTERVAL"`
	HostPort        hostPortTag        `mapstructure:"HOSTPORT"`
	MappingArea     mappingAreaTag     `mapstructure:"MAPPINGAREA"`
}

func decodeTree(raw map[string]interface{}) (tree, error) {
	var t tree
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &t,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return tree{}, fmt.Errorf("config: build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return tree{}, fmt.Errorf("config: decode tree: %w", err)
	}
	return t, nil
}

func hasPath(raw map[string]interface{}, section, field string) bool {
	sub, ok := raw[section].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = sub[field]
	return ok
}

// DecodeSimulationOptions validates that raw's MODE selects the device
// simulation handler and decodes SIMCHCNT.COUNT/SIMMAPCNT.COUNT/
// REFRESHINTERVAL.INTERVAL, applying the documented defaults (§6) for any
// absent optional field. It rejects a tree whose MODE is anything else.
func DecodeSimulationOptions(raw map[string]interface{}) (SimulationOptions, error) {
	t, err := decodeTree(raw)
	if err != nil {
		return SimulationOptions{}, err
	}
	if t.Mode != simulationModeName {
		return SimulationOptions{}, fmt.Errorf("config: MODE %q is not %q", t.Mode, simulationModeName)
	}

	opts := SimulationOptions{
		SimulatedChannelCount: defaultSimulatedChannelCount,
		SimulatedMappingCount: defaultSimulatedMappingCount,
		RefreshIntervalMs:     defaultRefreshIntervalMs,
	}
	if hasPath(raw, "SIMCHCNT", "COUNT") {
		opts.SimulatedChannelCount = t.SimChCnt.Count
	}
	if hasPath(raw, "SIMMAPCNT", "COUNT") {
		opts.SimulatedMappingCount = t.SimMapCnt.Count
	}
	if hasPath(raw, "REFRESHINTERVAL", "INTERVAL") {
		opts.RefreshIntervalMs = t.RefreshInterval.Interval
	}
	return opts, nil
}

// DecodeRTTrPOptions decodes HOSTPORT.PORT (required) and MAPPINGAREA.ID
// (required, sentinel permitted) for the RTTrP processor and receiver.
func DecodeRTTrPOptions(raw map[string]interface{}) (RTTrPOptions, error) {
	t, err := decodeTree(raw)
	if err != nil {
		return RTTrPOptions{}, err
	}
	if !hasPath(raw, "HOSTPORT", "PORT") {
		return RTTrPOptions{}, errors.New("config: HOSTPORT.PORT is required")
	}
	if !hasPath(raw, "MAPPINGAREA", "ID") {
		return RTTrPOptions{}, errors.New("config: MAPPINGAREA.ID is required")
	}
	return RTTrPOptions{
		Port:        t.HostPort.Port,
		MappingArea: t.MappingArea.ID,
	}, nil
}
