// Package host models physical servers: fixed PE/RAM/BW capacity shared
// among hosted VMs via a VmScheduler.
package host

import "github.com/cloudsim-go/cloudsim/vm"

// VmScheduler shares a Host's PEs among its hosted VMs, producing the
// per-PE mips share each VM's cloudlet.Scheduler sees on its next tick.
type VmScheduler interface {
	// AllocatePesForVm admits v, returning the mips share it should see,
	// or false if the host cannot accommodate it.
	AllocatePesForVm(v *vm.Vm) ([]float64, bool)
	// DeallocatePesForVm releases v's reserved capacity.
	DeallocatePesForVm(v *vm.Vm)
	AvailableMips() float64
}

// SpaceSharedVmScheduler reserves a fixed, exclusive set of PEs per VM for
// its lifetime -- admission fails once the host runs out of free PEs, and
// no PE is ever shared between two VMs at once.
type SpaceSharedVmScheduler struct {
	pes          int
	mipsPerPe    float64
	allocatedVms map[int]int // vm id -> pes reserved
}

func NewSpaceSharedVmScheduler(pes int, mipsPerPe float64) *SpaceSharedVmScheduler {
	return &SpaceSharedVmScheduler{pes: pes, mipsPerPe: mipsPerPe, allocatedVms: map[int]int{}}
}

func (s *SpaceSharedVmScheduler) usedPes() int {
	used := 0
	for _, pes := range s.allocatedVms {
		used += pes
	}
	return used
}

func (s *SpaceSharedVmScheduler) AvailableMips() float64 {
	free := s.pes - s.usedPes()
	if free < 0 {
		return 0
	}
	return float64(free) * s.mipsPerPe
}

func (s *SpaceSharedVmScheduler) AllocatePesForVm(v *vm.Vm) ([]float64, bool) {
	// A VM that already holds a reservation keeps it when its share is
	// re-derived on a host tick.
	if s.pes-s.usedPes()+s.allocatedVms[v.ID] < v.Pes {
		return nil, false
	}
	s.allocatedVms[v.ID] = v.Pes
	share := make([]float64, v.Pes)
	for i := range share {
		share[i] = s.mipsPerPe
	}
	return share, true
}

func (s *SpaceSharedVmScheduler) DeallocatePesForVm(v *vm.Vm) {
	delete(s.allocatedVms, v.ID)
}

// TimeSharedVmScheduler always admits a VM and gives it a mips share
// proportional to the host's total capacity divided evenly among every
// currently hosted VM's PE count, oversubscribing when demand exceeds
// supply rather than rejecting admission.
type TimeSharedVmScheduler struct {
	pes          int
	mipsPerPe    float64
	hostedVmPes  map[int]int // vm id -> pe count, for fair-share division
}

func NewTimeSharedVmScheduler(pes int, mipsPerPe float64) *TimeSharedVmScheduler {
	return &TimeSharedVmScheduler{pes: pes, mipsPerPe: mipsPerPe, hostedVmPes: map[int]int{}}
}

func (s *TimeSharedVmScheduler) totalHostedPes() int {
	total := 0
	for _, pes := range s.hostedVmPes {
		total += pes
	}
	return total
}

func (s *TimeSharedVmScheduler) AvailableMips() float64 {
	return float64(s.pes) * s.mipsPerPe
}

func (s *TimeSharedVmScheduler) AllocatePesForVm(v *vm.Vm) ([]float64, bool) {
	s.hostedVmPes[v.ID] = v.Pes
	totalHosted := s.totalHostedPes()
	sharePerPe := s.mipsPerPe
	if totalHosted > s.pes {
		sharePerPe = s.mipsPerPe * float64(s.pes) / float64(totalHosted)
	}
	share := make([]float64, v.Pes)
	for i := range share {
		share[i] = sharePerPe
	}
	return share, true
}

func (s *TimeSharedVmScheduler) DeallocatePesForVm(v *vm.Vm) {
	delete(s.hostedVmPes, v.ID)
}

var _ VmScheduler = (*SpaceSharedVmScheduler)(nil)
var _ VmScheduler = (*TimeSharedVmScheduler)(nil)
