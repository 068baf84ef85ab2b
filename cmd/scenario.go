package cmd

import (
	"os"

	"gopkg.in/yaml.v3"
)

// HostConfig describes one physical host to create in the example
// scenario's single datacenter.
type HostConfig struct {
	Pes         int     `yaml:"pes"`
	MipsPerPe   float64 `yaml:"mipsPerPe"`
	RAM         int64   `yaml:"ram"`
	BW          int64   `yaml:"bw"`
	VmScheduler string  `yaml:"vmScheduler"` // "time-shared" (default) or "space-shared"
}

// VmConfig describes one VM to submit to the datacenter.
type VmConfig struct {
	ID        int     `yaml:"id"`
	Pes       int     `yaml:"pes"`
	Mips      float64 `yaml:"mips"`
	RAM       int64   `yaml:"ram"`
	BW        int64   `yaml:"bw"`
	Scheduler string  `yaml:"scheduler"` // "time-shared" (default), "space-shared", "network-aware"
}

// CloudletConfig describes one cloudlet to submit against a VmConfig.ID.
type CloudletConfig struct {
	ID               int     `yaml:"id"`
	VmID             int     `yaml:"vmId"`
	Length           int64   `yaml:"length"`
	RequiredPEs      int     `yaml:"requiredPes"`
	FileTransferTime float64 `yaml:"fileTransferTime"`
}

// ScenarioConfig groups everything needed to assemble an example
// cloudsim run: the small-group-struct config pattern used throughout
// this module, loaded from an optional YAML file and overlaid with CLI
// flags in run.go.
type ScenarioConfig struct {
	AllocationPolicy string           `yaml:"allocationPolicy"` // "simple" (default) or "round-robin"
	TickInterval     float64          `yaml:"tickInterval"`
	TerminateAt      float64          `yaml:"terminateAt"`
	Hosts            []HostConfig     `yaml:"hosts"`
	Vms              []VmConfig       `yaml:"vms"`
	Cloudlets        []CloudletConfig `yaml:"cloudlets"`
}

// DefaultScenarioConfig returns a small, runnable one-host/one-vm/one-cloudlet
// scenario, used when no --config file is supplied.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		AllocationPolicy: "simple",
		TickInterval:     1.0,
		TerminateAt:      10.0,
		Hosts: []HostConfig{
			{Pes: 4, MipsPerPe: 1000, RAM: 8192, BW: 8192, VmScheduler: "time-shared"},
		},
		Vms: []VmConfig{
			{ID: 1, Pes: 2, Mips: 1000, RAM: 2048, BW: 1000, Scheduler: "time-shared"},
		},
		Cloudlets: []CloudletConfig{
			{ID: 1, VmID: 1, Length: 1000, RequiredPEs: 2},
		},
	}
}

// LoadScenarioConfig reads a ScenarioConfig from a YAML file at path; an
// empty path returns DefaultScenarioConfig unchanged.
func LoadScenarioConfig(path string) (ScenarioConfig, error) {
	cfg := DefaultScenarioConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	loaded := ScenarioConfig{}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, err
	}
	return loaded, nil
}
