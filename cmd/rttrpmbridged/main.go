// Command rttrpmbridged wires an RTTrP receiver, its bridge processor, and
// the DS100 device simulation engine into one running process: a thin main
// that parses a configuration file, constructs the collaborators, and
// blocks until asked to shut down.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rttrpmbridge/core/bridge"
	"github.com/rttrpmbridge/core/config"
	"github.com/rttrpmbridge/core/remoteobject"
	"github.com/rttrpmbridge/core/replay"
	"github.com/rttrpmbridge/core/rttrpm"
	"github.com/rttrpmbridge/core/simulation"
)

// protocolID identifies the RTTrP receiver as a node-API protocol
// participant; the simulation treats it as the sole type-A member, with no
// type-B peers wired up in this standalone process.
const protocolID = "rttrpm"

func main() {
	configPath := flag.String("config", "", "path to a JSON configuration tree (MODE/SIMCHCNT/.../HOSTPORT/MAPPINGAREA)")
	recordPath := flag.String("record", "", "optional path to append a bencoded replay log of received packets")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *configPath == "" {
		log.Fatal().Msg("rttrpmbridged: -config is required")
	}

	raw, err := loadConfigTree(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("rttrpmbridged: load configuration")
	}

	simOpts, err := config.DecodeSimulationOptions(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("rttrpmbridged: decode simulation options")
	}
	rttrpOpts, err := config.DecodeRTTrPOptions(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("rttrpmbridged: decode rttrp options")
	}

	rtr := &router{protocolID: protocolID, logger: log.With().Str("component", "cmd.router").Logger()}

	engine := simulation.NewEngine(
		rtr,
		simOpts.SimulatedChannelCount,
		simOpts.SimulatedMappingCount,
		time.Duration(simOpts.RefreshIntervalMs)*time.Millisecond,
	)
	defer engine.Stop()
	rtr.engine = engine

	processor := bridge.NewProcessor(protocolID, rtr, rttrpOpts.MappingArea)

	receiverOpts := []rttrpm.Option{}
	if *recordPath != "" {
		f, err := os.OpenFile(*recordPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Msg("rttrpmbridged: open replay log")
		}
		defer f.Close()
		receiverOpts = append(receiverOpts, rttrpm.WithRecorder(replay.NewRecorder(f)))
	}

	receiver := rttrpm.New(rttrpOpts.Port, receiverOpts...)
	receiver.AddQueuedListener(processor.HandleRTTrPMessage)

	if err := receiver.Start(); err != nil {
		log.Fatal().Err(err).Msg("rttrpmbridged: start rttrp receiver")
	}

	log.Info().Int("port", rttrpOpts.Port).Msg("rttrpmbridged: listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("rttrpmbridged: shutting down")

	if err := receiver.Stop(); err != nil {
		log.Error().Err(err).Msg("rttrpmbridged: stop rttrp receiver")
	}
}

func loadConfigTree(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// router satisfies both simulation.NodeRouter and bridge.NodeRouter,
// closing the loop between the RTTrP-facing processor and the simulation
// engine within a single process: the processor Delivers inbound writes
// straight to the engine. Every SendTo from the engine is logged at debug
// level and dropped, returning false: replies to protocolID cannot go out
// because the RTTrP receiver is receive-only, and no other protocol is
// wired up.
type router struct {
	protocolID string
	engine     *simulation.Engine
	logger     zerolog.Logger
}

func (r *router) Deliver(protocolID string, msg remoteobject.Message) bool {
	return r.engine.OnReceivedMessageFromProtocol(protocolID, msg)
}

func (r *router) SendTo(protocolID string, msg remoteobject.Message) bool {
	if protocolID != r.protocolID {
		r.logger.Debug().Str("protocol", protocolID).Msg("send to unknown protocol dropped")
		return false
	}
	r.logger.Debug().Str("id", msg.Id.String()).Msg("send over rttrp dropped: receiver is receive-only")
	return false
}

func (r *router) ProtocolsA() []string { return []string{r.protocolID} }
func (r *router) ProtocolsB() []string { return nil }
