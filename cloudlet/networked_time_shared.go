package cloudlet

import (
	"github.com/sirupsen/logrus"

	"github.com/cloudsim-go/cloudsim/network"
)

// NetworkedTimeSharedScheduler is the time-shared discipline with an
// attached PacketScheduler: before computing instruction progress it
// charges part of the step's Δt to network transmission, the
// "network-aware" discipline named alongside space-shared and time-shared.
type NetworkedTimeSharedScheduler struct {
	*Base
}

// NewNetworkedTimeSharedScheduler builds a network-aware time-shared
// scheduler, wiring in the given PacketScheduler (a NullPacketScheduler is
// substituted if nil).
func NewNetworkedTimeSharedScheduler(pes int, ps network.PacketScheduler) *NetworkedTimeSharedScheduler {
	s := &NetworkedTimeSharedScheduler{}
	s.Base = newBase(pes, s, logrus.WithField("scheduler", "networked-time-shared"))
	s.SetPacketScheduler(ps)
	return s
}

func (s *NetworkedTimeSharedScheduler) allocatedMips(requiredPEs, totalUsedPes int, proc Processor) float64 {
	if totalUsedPes <= 0 {
		return 0
	}
	allocated := proc.TotalMips() * float64(requiredPEs) / float64(totalUsedPes)
	cap := float64(requiredPEs) * proc.MaxMips()
	if allocated > cap {
		return cap
	}
	return allocated
}

func (s *NetworkedTimeSharedScheduler) networkCharge(ei *ExecutionInfo, deltaTime float64) float64 {
	return s.PacketScheduler().ProcessCloudletTasks(ei.Cloudlet.ID, deltaTime)
}

var _ Scheduler = (*NetworkedTimeSharedScheduler)(nil)
var _ discipline = (*NetworkedTimeSharedScheduler)(nil)
