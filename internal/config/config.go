package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"manetperf/internal/addrutil"
	"manetperf/internal/log"
	"manetperf/internal/model"
)

const (
	DefaultNodes       = 20
	DefaultPacketRate  = 100
	DefaultNodeSpeed   = 5.0
	DefaultDuration    = 20 * time.Second
	DefaultSeed        = 1
	DefaultSubnet      = "10.1.1.0/24"
	DefaultAreaSize    = 100.0
	DefaultPacketSize  = 64
	DefaultPort        = 9
	DefaultDestOffset  = 5
	DefaultAppStart    = time.Second
	DefaultRadioRange  = 120.0
	DefaultPHYRate     = 6e6
	DefaultHopOverhead = 100 * time.Microsecond
	DefaultBackend     = BackendBuiltin
	DefaultResultPath  = "task1_result.csv"
	DefaultLogLevel    = "NOTICE"
	DefaultFlowmonFile = "flowmon.xml"
)

// Backend names.
const (
	BackendBuiltin = "builtin"
	BackendNS3     = "ns3"
)

// Config is the full experiment description.
type Config struct {
	Experiment ExperimentConfig `yaml:"experiment" toml:"experiment"`
	Topology   TopologyConfig   `yaml:"topology" toml:"topology"`
	Mobility   MobilityConfig   `yaml:"mobility" toml:"mobility"`
	Traffic    TrafficConfig    `yaml:"traffic" toml:"traffic"`
	Radio      RadioConfig      `yaml:"radio" toml:"radio"`
	Backend    BackendConfig    `yaml:"backend" toml:"backend"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// ExperimentConfig holds the swept parameters.
type ExperimentConfig struct {
	Nodes      uint32        `yaml:"nodes" toml:"nodes"`
	PacketRate uint32        `yaml:"packet_rate" toml:"packet_rate"`
	NodeSpeed  float64       `yaml:"node_speed" toml:"node_speed"`
	Duration   time.Duration `yaml:"duration" toml:"duration"`
	Seed       int64         `yaml:"seed" toml:"seed"`
}

type TopologyConfig struct {
	Subnet string `yaml:"subnet" toml:"subnet"`
}

type MobilityConfig struct {
	Width  float64       `yaml:"width" toml:"width"`
	Height float64       `yaml:"height" toml:"height"`
	Pause  time.Duration `yaml:"pause" toml:"pause"`
}

type TrafficConfig struct {
	PacketSize int           `yaml:"packet_size" toml:"packet_size"`
	Port       uint16        `yaml:"port" toml:"port"`
	DestOffset uint32        `yaml:"dest_offset" toml:"dest_offset"`
	Start      time.Duration `yaml:"start" toml:"start"`
}

type RadioConfig struct {
	Range       float64       `yaml:"range" toml:"range"`
	DataRate    float64       `yaml:"data_rate" toml:"data_rate"`
	HopOverhead time.Duration `yaml:"hop_overhead" toml:"hop_overhead"`
}

// BackendConfig selects the engine that produces flow counters.
type BackendConfig struct {
	Kind string `yaml:"kind" toml:"kind"`
	// Command is the ns-3 scenario invocation, e.g. ["./ns3", "run", "task1", "--"].
	Command     []string `yaml:"command,omitempty" toml:"command,omitempty"`
	FlowmonFile string   `yaml:"flowmon_file,omitempty" toml:"flowmon_file,omitempty"`
	WorkDir     string   `yaml:"work_dir,omitempty" toml:"work_dir,omitempty"`
}

type OutputConfig struct {
	ResultPath      string `yaml:"result_path" toml:"result_path"`
	HistoryPath     string `yaml:"history_path,omitempty" toml:"history_path,omitempty"`
	MetricsTextfile string `yaml:"metrics_textfile,omitempty" toml:"metrics_textfile,omitempty"`
}

type LoggingConfig struct {
	File    string `yaml:"file,omitempty" toml:"file,omitempty"`
	Level   string `yaml:"level" toml:"level"`
	Disable bool   `yaml:"disable,omitempty" toml:"disable,omitempty"`
}

// Default returns a config with every default applied.
func Default() Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return cfg
}

// Load reads a YAML or TOML config file, chosen by extension. The file is
// decoded over the defaults, so keys it sets to zero stay zero.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "could not parse %s", path)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "could not parse %s", path)
	}

	applyBackendDefaults(&cfg)
	return cfg, nil
}

// Save writes a config file to disk in the format implied by its extension.
func Save(path string, cfg Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(&cfg); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values no run could use. Zero nodes and a zero packet rate
// are degenerate but allowed.
func Validate(cfg Config) error {
	if cfg.Experiment.NodeSpeed < 0 || math.IsNaN(cfg.Experiment.NodeSpeed) || math.IsInf(cfg.Experiment.NodeSpeed, 0) {
		return errors.New("experiment.node_speed must be a non-negative finite number")
	}
	if cfg.Experiment.Duration <= 0 {
		return errors.New("experiment.duration must be positive")
	}
	if cfg.Traffic.Start < 0 || cfg.Traffic.Start >= cfg.Experiment.Duration {
		return errors.New("traffic.start must lie within the experiment duration")
	}
	if cfg.Traffic.PacketSize <= 0 {
		return errors.New("traffic.packet_size must be positive")
	}
	if cfg.Mobility.Width <= 0 || cfg.Mobility.Height <= 0 {
		return errors.New("mobility area must be positive")
	}
	if cfg.Mobility.Pause < 0 {
		return errors.New("mobility.pause must not be negative")
	}
	if cfg.Radio.Range < 0 || cfg.Radio.DataRate < 0 {
		return errors.New("radio range and data_rate must not be negative")
	}
	if _, err := addrutil.ParseSubnet(cfg.Topology.Subnet); err != nil {
		return errors.Wrap(err, "topology.subnet")
	}
	switch cfg.Backend.Kind {
	case BackendBuiltin:
	case BackendNS3:
		if len(cfg.Backend.Command) == 0 {
			return errors.New("backend.command is required for the ns3 backend")
		}
	default:
		return errors.Errorf("unknown backend %q", cfg.Backend.Kind)
	}
	if cfg.Output.ResultPath == "" {
		return errors.New("output.result_path is required")
	}
	if _, err := log.ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ApplyDefaults fills in default values when empty. Zero experiment values
// count as empty here; use Load or explicit flags to run with them.
func ApplyDefaults(cfg *Config) {
	e := &cfg.Experiment
	if e.Nodes == 0 {
		e.Nodes = DefaultNodes
	}
	if e.PacketRate == 0 {
		e.PacketRate = DefaultPacketRate
	}
	if e.NodeSpeed == 0 {
		e.NodeSpeed = DefaultNodeSpeed
	}
	if e.Duration == 0 {
		e.Duration = DefaultDuration
	}
	if e.Seed == 0 {
		e.Seed = DefaultSeed
	}

	if cfg.Topology.Subnet == "" {
		cfg.Topology.Subnet = DefaultSubnet
	}

	if cfg.Mobility.Width == 0 {
		cfg.Mobility.Width = DefaultAreaSize
	}
	if cfg.Mobility.Height == 0 {
		cfg.Mobility.Height = DefaultAreaSize
	}

	if cfg.Traffic.PacketSize == 0 {
		cfg.Traffic.PacketSize = DefaultPacketSize
	}
	if cfg.Traffic.Port == 0 {
		cfg.Traffic.Port = DefaultPort
	}
	if cfg.Traffic.DestOffset == 0 {
		cfg.Traffic.DestOffset = DefaultDestOffset
	}
	if cfg.Traffic.Start == 0 {
		cfg.Traffic.Start = DefaultAppStart
	}

	if cfg.Radio.Range == 0 {
		cfg.Radio.Range = DefaultRadioRange
	}
	if cfg.Radio.DataRate == 0 {
		cfg.Radio.DataRate = DefaultPHYRate
	}
	if cfg.Radio.HopOverhead == 0 {
		cfg.Radio.HopOverhead = DefaultHopOverhead
	}

	if cfg.Backend.Kind == "" {
		cfg.Backend.Kind = DefaultBackend
	}
	applyBackendDefaults(cfg)

	if cfg.Output.ResultPath == "" {
		cfg.Output.ResultPath = DefaultResultPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
}

func applyBackendDefaults(cfg *Config) {
	if cfg.Backend.Kind == BackendNS3 && cfg.Backend.FlowmonFile == "" {
		cfg.Backend.FlowmonFile = DefaultFlowmonFile
	}
}

// ExperimentParams returns the immutable run parameters.
func (c Config) ExperimentParams() model.ExperimentConfig {
	return model.ExperimentConfig{
		Nodes:      c.Experiment.Nodes,
		PacketRate: c.Experiment.PacketRate,
		NodeSpeed:  c.Experiment.NodeSpeed,
		Duration:   c.Experiment.Duration,
		Seed:       c.Experiment.Seed,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
