package host

import "github.com/cloudsim-go/cloudsim/vm"

// Host is a physical server hosting VMs via a VmScheduler; RAM and
// bandwidth are modeled only as capacity accountants, never provisioned in
// detail.
type Host struct {
	ID int

	RAM int64
	BW  int64

	Scheduler VmScheduler

	vms          map[int]*vm.Vm
	usedRAM      int64
	usedBW       int64
}

func NewHost(id int, ram, bw int64, scheduler VmScheduler) *Host {
	return &Host{ID: id, RAM: ram, BW: bw, Scheduler: scheduler, vms: map[int]*vm.Vm{}}
}

// VmCreate admits v if the host has free RAM/BW and the VmScheduler
// accepts its PE request; returns false otherwise, leaving the host
// unchanged.
func (h *Host) VmCreate(v *vm.Vm) bool {
	if h.RAM-h.usedRAM < v.RAM || h.BW-h.usedBW < v.BW {
		return false
	}
	share, ok := h.Scheduler.AllocatePesForVm(v)
	if !ok {
		return false
	}
	h.vms[v.ID] = v
	h.usedRAM += v.RAM
	h.usedBW += v.BW
	v.SetHost(h.ID)
	v.Scheduler.UpdateVmProcessing(0, share)
	return true
}

// VmDestroy releases v's host-level reservations.
func (h *Host) VmDestroy(v *vm.Vm) {
	if _, ok := h.vms[v.ID]; !ok {
		return
	}
	h.Scheduler.DeallocatePesForVm(v)
	delete(h.vms, v.ID)
	h.usedRAM -= v.RAM
	h.usedBW -= v.BW
	v.SetHost(-1)
}

// Vms returns the VMs currently hosted, in no particular order.
func (h *Host) Vms() []*vm.Vm {
	out := make([]*vm.Vm, 0, len(h.vms))
	for _, v := range h.vms {
		out = append(out, v)
	}
	return out
}

// FreeRAM / FreeBW report remaining capacity accountants.
func (h *Host) FreeRAM() int64 { return h.RAM - h.usedRAM }
func (h *Host) FreeBW() int64  { return h.BW - h.usedBW }

// UpdateVmsProcessing re-derives each hosted VM's mips share and advances
// its scheduler, returning the minimum next-event time across all VMs --
// the value a Datacenter tick reschedules itself at.
func (h *Host) UpdateVmsProcessing(currentTime float64) float64 {
	next := -1.0
	for _, v := range h.vms {
		share, _ := h.Scheduler.AllocatePesForVm(v)
		finish := v.UpdateProcessing(currentTime, share)
		if next < 0 || finish < next {
			next = finish
		}
	}
	if next < 0 {
		return -1
	}
	return next
}
