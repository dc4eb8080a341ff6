package main

import (
	stdlog "log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"manetperf/internal/config"
	"manetperf/internal/execx"
	"manetperf/internal/experiment"
	"manetperf/internal/instrument"
	"manetperf/internal/log"
	"manetperf/internal/store"
)

// experimentFlags are the per-run overrides shared by run, sweep and
// aggregate. A flag only replaces the config value when it was given.
type experimentFlags struct {
	nodes           uint32
	packetRate      uint32
	nodeSpeed       float64
	seed            int64
	csv             string
	backend         string
	history         string
	metricsTextfile string
}

func (f *experimentFlags) register(fs *pflag.FlagSet) {
	fs.Uint32Var(&f.nodes, "nodes", config.DefaultNodes, "number of nodes")
	fs.Uint32Var(&f.packetRate, "packet-rate", config.DefaultPacketRate, "packets per second per node")
	fs.Float64Var(&f.nodeSpeed, "node-speed", config.DefaultNodeSpeed, "node speed in m/s")
	fs.Int64Var(&f.seed, "seed", config.DefaultSeed, "random seed")
	fs.StringVar(&f.csv, "csv", config.DefaultResultPath, "result CSV file")
	fs.StringVar(&f.backend, "backend", config.DefaultBackend, "simulation backend (builtin, ns3)")
	fs.StringVar(&f.history, "history", "", "bbolt run history database")
	fs.StringVar(&f.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after each run")
}

func (f *experimentFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("nodes") {
		cfg.Experiment.Nodes = f.nodes
	}
	if fs.Changed("packet-rate") {
		cfg.Experiment.PacketRate = f.packetRate
	}
	if fs.Changed("node-speed") {
		cfg.Experiment.NodeSpeed = f.nodeSpeed
	}
	if fs.Changed("seed") {
		cfg.Experiment.Seed = f.seed
	}
	if fs.Changed("csv") {
		cfg.Output.ResultPath = f.csv
	}
	if fs.Changed("backend") {
		cfg.Backend.Kind = f.backend
		if cfg.Backend.Kind == config.BackendNS3 && cfg.Backend.FlowmonFile == "" {
			cfg.Backend.FlowmonFile = config.DefaultFlowmonFile
		}
	}
	if fs.Changed("history") {
		cfg.Output.HistoryPath = f.history
	}
	if fs.Changed("metrics-textfile") {
		cfg.Output.MetricsTextfile = f.metricsTextfile
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// resolveConfig loads the config file and layers the global and experiment
// flags on top.
func resolveConfig(opts *globalOptions, fs *pflag.FlagSet, flags *experimentFlags) (config.Config, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if flags != nil {
		flags.apply(fs, &cfg)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// session bundles what a command needs to run experiments.
type session struct {
	cfg     config.Config
	logs    *log.Backend
	history *store.History
	runner  *experiment.Runner
}

func (s *session) Close() {
	if s.history != nil {
		s.history.Close()
	}
	s.logs.Close()
}

// newSession wires the logger, the optional sinks and, when withBackend is
// set, the configured backend.
func newSession(cfg config.Config, withBackend bool) (*session, error) {
	logs, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logs: logs}

	s.runner = &experiment.Runner{
		ResultPath:      cfg.Output.ResultPath,
		MetricsTextfile: cfg.Output.MetricsTextfile,
		Printer:         stdlog.New(os.Stdout, "", 0),
		Log:             logs.GetLogger("experiment"),
	}

	if withBackend {
		backend, err := experiment.NewBackend(cfg, execx.NewOSRunner(os.Stderr, os.Stderr), logs.GetLogger(cfg.Backend.Kind))
		if err != nil {
			s.Close()
			return nil, err
		}
		s.runner.Backend = backend
	}

	if cfg.Output.HistoryPath != "" {
		if s.history, err = store.Open(cfg.Output.HistoryPath); err != nil {
			s.Close()
			return nil, err
		}
		s.runner.History = s.history
	}
	if cfg.Output.MetricsTextfile != "" {
		s.runner.Metrics = instrument.New()
	}
	return s, nil
}
