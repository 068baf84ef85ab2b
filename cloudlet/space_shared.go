package cloudlet

import "github.com/sirupsen/logrus"

// SpaceSharedScheduler reserves requiredPEs of the VM's PEs for each
// admitted cloudlet while it is in EXEC: its allocation is the sum of the
// first requiredPEs entries of the mips share, recomputed from the current
// mips share on every update rather than fixed at admission.
type SpaceSharedScheduler struct {
	*Base
}

// NewSpaceSharedScheduler builds a space-shared scheduler for a VM with the
// given PE count.
func NewSpaceSharedScheduler(pes int) *SpaceSharedScheduler {
	s := &SpaceSharedScheduler{}
	s.Base = newBase(pes, s, logrus.WithField("scheduler", "space-shared"))
	return s
}

func (s *SpaceSharedScheduler) allocatedMips(requiredPEs, _ int, proc Processor) float64 {
	return proc.Sum(requiredPEs)
}

func (s *SpaceSharedScheduler) networkCharge(_ *ExecutionInfo, _ float64) float64 { return 0 }

var _ Scheduler = (*SpaceSharedScheduler)(nil)
var _ discipline = (*SpaceSharedScheduler)(nil)
