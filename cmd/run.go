package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cloudsim "github.com/cloudsim-go/cloudsim"
	"github.com/cloudsim-go/cloudsim/alloc"
	"github.com/cloudsim-go/cloudsim/broker"
	"github.com/cloudsim-go/cloudsim/cis"
	"github.com/cloudsim-go/cloudsim/cloudlet"
	"github.com/cloudsim-go/cloudsim/datacenter"
	"github.com/cloudsim-go/cloudsim/host"
	"github.com/cloudsim-go/cloudsim/network"
	"github.com/cloudsim-go/cloudsim/vm"
)

var (
	configPath   string
	logLevel     string
	terminateAt  float64
	tickInterval float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an example datacenter/broker/VM/cloudlet scenario",
	RunE: func(_ *cobra.Command, _ []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)

		cfg, err := LoadScenarioConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading scenario config: %w", err)
		}
		if terminateAt > 0 {
			cfg.TerminateAt = terminateAt
		}
		if tickInterval > 0 {
			cfg.TickInterval = tickInterval
		}

		logrus.Infof("cloudsim: starting scenario with %d hosts, %d vms, %d cloudlets",
			len(cfg.Hosts), len(cfg.Vms), len(cfg.Cloudlets))

		eng := cloudsim.NewEngine(cloudsim.EngineConfig{})

		hosts := make([]*host.Host, 0, len(cfg.Hosts))
		for i, hc := range cfg.Hosts {
			hosts = append(hosts, host.NewHost(i+1, hc.RAM, hc.BW, newVmScheduler(hc)))
		}

		registry := cis.New("cis0")
		if _, err := eng.Register(registry); err != nil {
			return fmt.Errorf("registering cis: %w", err)
		}

		dc := datacenter.New("dc0", hosts, alloc.NewVmAllocationPolicy(cfg.AllocationPolicy), cfg.TickInterval)
		dcID, err := eng.Register(dc)
		if err != nil {
			return fmt.Errorf("registering datacenter: %w", err)
		}
		dc.RegisterWith(registry.ID())

		b := broker.New("broker0", dcID)
		for _, vc := range cfg.Vms {
			b.VmList = append(b.VmList, vm.NewVm(vc.ID, vc.Pes, vc.Mips, vc.RAM, vc.BW, newCloudletScheduler(vc)))
		}
		for _, cc := range cfg.Cloudlets {
			b.CloudletList = append(b.CloudletList, broker.CloudletPlacement{
				Cloudlet:         cloudlet.NewCloudlet(cc.ID, cc.Length, cc.RequiredPEs),
				VmID:             cc.VmID,
				FileTransferTime: cc.FileTransferTime,
			})
		}
		if _, err := eng.Register(b); err != nil {
			return fmt.Errorf("registering broker: %w", err)
		}

		if cfg.TerminateAt > 0 {
			eng.TerminateAt(cfg.TerminateAt)
		}

		if err := eng.Start(); err != nil {
			return fmt.Errorf("running simulation: %w", err)
		}

		printSummary(b)
		return nil
	},
}

func newVmScheduler(hc HostConfig) host.VmScheduler {
	switch hc.VmScheduler {
	case "space-shared":
		return host.NewSpaceSharedVmScheduler(hc.Pes, hc.MipsPerPe)
	case "", "time-shared":
		return host.NewTimeSharedVmScheduler(hc.Pes, hc.MipsPerPe)
	default:
		panic("unknown host vm scheduler " + hc.VmScheduler)
	}
}

func newCloudletScheduler(vc VmConfig) cloudlet.Scheduler {
	switch vc.Scheduler {
	case "space-shared":
		return cloudlet.NewSpaceSharedScheduler(vc.Pes)
	case "network-aware":
		return cloudlet.NewNetworkedTimeSharedScheduler(vc.Pes, network.NullPacketScheduler{})
	case "", "time-shared":
		return cloudlet.NewTimeSharedScheduler(vc.Pes)
	default:
		panic("unknown vm cloudlet scheduler " + vc.Scheduler)
	}
}

func printSummary(b *broker.DatacenterBroker) {
	fmt.Printf("vms created:        %d\n", len(b.VmsCreated))
	fmt.Printf("vms failed:         %d\n", len(b.VmsFailed))
	fmt.Printf("cloudlets accepted: %d\n", len(b.CloudletsAccepted))
	fmt.Printf("cloudlets rejected: %d\n", len(b.CloudletsRejected))
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a scenario YAML file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Float64Var(&terminateAt, "terminate-at", 0, "Override the scenario's terminate-at clock value")
	runCmd.Flags().Float64Var(&tickInterval, "tick", 0, "Override the scenario's datacenter tick interval")
}
