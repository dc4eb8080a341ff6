package experiment

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/op/go-logging.v1"

	"manetperf/internal/addrutil"
	"manetperf/internal/config"
	"manetperf/internal/execx"
	"manetperf/internal/flowstats"
	"manetperf/internal/mobility"
	"manetperf/internal/model"
	"manetperf/internal/sim"
	"manetperf/internal/topology"
	"manetperf/internal/traffic"
)

// Backend produces the per-flow counters of one run.
type Backend interface {
	Name() string
	Execute(ctx context.Context, params model.ExperimentConfig) (map[model.FlowID]model.FlowRecord, error)
}

// NewBackend builds the backend selected by cfg.
func NewBackend(cfg config.Config, runner execx.Runner, log *logging.Logger) (Backend, error) {
	switch cfg.Backend.Kind {
	case config.BackendBuiltin:
		return NewBuiltinBackend(cfg, log)
	case config.BackendNS3:
		return &NS3Backend{
			Runner:      runner,
			Command:     cfg.Backend.Command,
			WorkDir:     cfg.Backend.WorkDir,
			FlowmonFile: cfg.Backend.FlowmonFile,
			Log:         log,
		}, nil
	default:
		return nil, errors.Errorf("unknown backend %q", cfg.Backend.Kind)
	}
}

// BuiltinBackend runs the in-process simulator.
type BuiltinBackend struct {
	Subnet   netip.Prefix
	Mobility mobility.Config
	Traffic  traffic.Config
	Radio    sim.RadioConfig
	Log      *logging.Logger
}

// NewBuiltinBackend copies the static parts of cfg; the swept parameters are
// taken from each Execute call.
func NewBuiltinBackend(cfg config.Config, log *logging.Logger) (*BuiltinBackend, error) {
	subnet, err := addrutil.ParseSubnet(cfg.Topology.Subnet)
	if err != nil {
		return nil, err
	}
	return &BuiltinBackend{
		Subnet: subnet,
		Mobility: mobility.Config{
			Width:  cfg.Mobility.Width,
			Height: cfg.Mobility.Height,
			Pause:  cfg.Mobility.Pause,
		},
		Traffic: traffic.Config{
			PacketSize: cfg.Traffic.PacketSize,
			Port:       cfg.Traffic.Port,
			SrcPort:    traffic.DefaultConfig.SrcPort,
			DestOffset: cfg.Traffic.DestOffset,
			Start:      cfg.Traffic.Start,
		},
		Radio: sim.RadioConfig{
			Range:       cfg.Radio.Range,
			DataRate:    cfg.Radio.DataRate,
			HopOverhead: cfg.Radio.HopOverhead,
		},
		Log: log,
	}, nil
}

func (b *BuiltinBackend) Name() string { return config.BackendBuiltin }

func (b *BuiltinBackend) Execute(ctx context.Context, params model.ExperimentConfig) (map[model.FlowID]model.FlowRecord, error) {
	s := sim.New(params.Seed)
	network := sim.NewNetwork(s, b.Radio, b.Log)

	nodes, err := topology.Build(network, params.Nodes, b.Subnet)
	if err != nil {
		return nil, errors.Wrap(err, "could not build topology")
	}

	mob := b.Mobility
	mob.Speed = params.NodeSpeed
	mobility.Install(network, nodes, mob)

	tr := b.Traffic
	tr.PacketRate = params.PacketRate
	tr.Stop = params.Duration
	traffic.Install(network, nodes, tr)
	b.Log.Debugf("installed %d nodes, data rate %d bps", len(nodes), tr.DataRate())

	if err := s.Run(ctx, params.Duration); err != nil {
		return nil, errors.Wrap(err, "simulation interrupted")
	}
	b.Log.Infof("simulation finished at %v after %d events", s.Now(), s.Executed())

	return network.FlowStats(), nil
}

// NS3Backend runs an external ns-3 scenario that accepts --nNodes,
// --packetRate, --nodeSpeed, --RngRun and --flowmonFile, and reads back the
// FlowMonitor XML it writes.
type NS3Backend struct {
	Runner      execx.Runner
	Command     []string
	WorkDir     string
	FlowmonFile string
	Log         *logging.Logger
}

func (b *NS3Backend) Name() string { return config.BackendNS3 }

func (b *NS3Backend) Execute(ctx context.Context, params model.ExperimentConfig) (map[model.FlowID]model.FlowRecord, error) {
	if len(b.Command) == 0 {
		return nil, errors.New("ns3 backend has no command")
	}

	flowmon := b.FlowmonFile
	if !filepath.IsAbs(flowmon) && b.WorkDir != "" {
		flowmon = filepath.Join(b.WorkDir, flowmon)
	}
	// A stale dump from an earlier run must never be read back.
	if err := os.Remove(flowmon); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "could not remove previous flow monitor output")
	}

	args := append([]string{}, b.Command[1:]...)
	args = append(args,
		fmt.Sprintf("--nNodes=%d", params.Nodes),
		fmt.Sprintf("--packetRate=%d", params.PacketRate),
		fmt.Sprintf("--nodeSpeed=%g", params.NodeSpeed),
		fmt.Sprintf("--RngRun=%d", params.Seed),
		fmt.Sprintf("--flowmonFile=%s", b.FlowmonFile),
	)

	b.Log.Infof("running %s %v", b.Command[0], args)
	if err := b.Runner.Run(ctx, b.WorkDir, b.Command[0], args...); err != nil {
		return nil, errors.Wrap(err, "ns-3 scenario failed")
	}

	return flowstats.ReadFlowMonitorFile(flowmon)
}
