// Package vm models the virtual machine scheduling boundary: fixed PE/RAM/BW
// capacity owning one cloudlet.Scheduler.
package vm

import "github.com/cloudsim-go/cloudsim/cloudlet"

// Vm is a scheduling boundary with a fixed resource capacity, bridging
// cloudlet scheduling to host-level resource accounting.
type Vm struct {
	ID int

	Pes int
	Mips float64
	RAM  int64
	BW   int64

	Scheduler cloudlet.Scheduler

	hostID    int
	allocated bool
}

// NewVm builds a Vm with the given capacity and an already-constructed
// cloudlet scheduler (the caller picks the discipline: time-shared,
// space-shared, or network-aware).
func NewVm(id, pes int, mips float64, ram, bw int64, scheduler cloudlet.Scheduler) *Vm {
	return &Vm{ID: id, Pes: pes, Mips: mips, RAM: ram, BW: bw, Scheduler: scheduler, hostID: -1}
}

// TotalMips is the VM's aggregate processing capacity, in MIPS.
func (v *Vm) TotalMips() float64 { return v.Mips * float64(v.Pes) }

// HostID is the id of the Host currently hosting this Vm, or -1 if
// unallocated.
func (v *Vm) HostID() int { return v.hostID }

// IsAllocated reports whether a Host has claimed this Vm.
func (v *Vm) IsAllocated() bool { return v.allocated }

// SetHost records which Host is hosting this Vm; passing -1 deallocates it.
func (v *Vm) SetHost(hostID int) {
	v.hostID = hostID
	v.allocated = hostID >= 0
}

// UpdateProcessing advances the owned scheduler by one datacenter tick,
// returning the next predicted completion time the way
// cloudlet.Scheduler.UpdateVmProcessing does.
func (v *Vm) UpdateProcessing(currentTime float64, mipsShare []float64) float64 {
	return v.Scheduler.UpdateVmProcessing(currentTime, mipsShare)
}
