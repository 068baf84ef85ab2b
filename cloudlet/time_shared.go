package cloudlet

import (
	"github.com/sirupsen/logrus"
)

// TimeSharedScheduler lets cloudlets receive proportional time-slices of
// the VM's MIPS: allocation is proportional to requested PEs over total
// used PEs, capped at requiredPEs times the fastest single PE.
type TimeSharedScheduler struct {
	*Base
}

// NewTimeSharedScheduler builds a time-shared scheduler for a VM with the
// given PE count.
func NewTimeSharedScheduler(pes int) *TimeSharedScheduler {
	s := &TimeSharedScheduler{}
	s.Base = newBase(pes, s, logrus.WithField("scheduler", "time-shared"))
	return s
}

func (s *TimeSharedScheduler) allocatedMips(requiredPEs, totalUsedPes int, proc Processor) float64 {
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

func (s *TimeSharedScheduler) networkCharge(_ *ExecutionInfo, _ float64) float64 { return 0 }

var _ Scheduler = (*TimeSharedScheduler)(nil)
var _ discipline = (*TimeSharedScheduler)(nil)
