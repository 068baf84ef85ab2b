// Package alloc provides the VmAllocationPolicy extension point consumed by
// datacenter.Datacenter during VM admission and periodic consolidation.
package alloc

import (
	"fmt"

	"github.com/cloudsim-go/cloudsim/host"
	"github.com/cloudsim-go/cloudsim/vm"
)

// VmAllocationPolicy decides which Host a Vm lands on.
type VmAllocationPolicy interface {
	AllocateHostForVm(v *vm.Vm, hosts []*host.Host) (*host.Host, bool)
	DeallocateHostForVm(v *vm.Vm, hosts []*host.Host)
	// OptimizeAllocation proposes a new vm-id -> host-id placement for
	// live migration; an empty map means no change recommended.
	OptimizeAllocation(vms []*vm.Vm, hosts []*host.Host) map[int]int
}

// SimpleVmAllocationPolicy places each Vm on the first Host with enough
// free PEs, RAM, and bandwidth -- first-fit, the simplest policy that
// makes a Datacenter runnable without a caller supplying a real placement
// algorithm.
type SimpleVmAllocationPolicy struct{}

func (SimpleVmAllocationPolicy) AllocateHostForVm(v *vm.Vm, hosts []*host.Host) (*host.Host, bool) {
	for _, h := range hosts {
		if h.VmCreate(v) {
			return h, true
		}
	}
	return nil, false
}

func (SimpleVmAllocationPolicy) DeallocateHostForVm(v *vm.Vm, hosts []*host.Host) {
	for _, h := range hosts {
		if h.ID == v.HostID() {
			h.VmDestroy(v)
			return
		}
	}
}

func (SimpleVmAllocationPolicy) OptimizeAllocation(_ []*vm.Vm, _ []*host.Host) map[int]int {
	return nil
}

// RoundRobinVmAllocationPolicy cycles through hosts in order, skipping any
// that reject the VM, so repeated admissions spread load instead of
// piling onto the first host with room.
type RoundRobinVmAllocationPolicy struct {
	next int
}

func NewRoundRobinVmAllocationPolicy() *RoundRobinVmAllocationPolicy {
	return &RoundRobinVmAllocationPolicy{}
}

func (p *RoundRobinVmAllocationPolicy) AllocateHostForVm(v *vm.Vm, hosts []*host.Host) (*host.Host, bool) {
	if len(hosts) == 0 {
		return nil, false
	}
	for i := 0; i < len(hosts); i++ {
		idx := (p.next + i) % len(hosts)
		if hosts[idx].VmCreate(v) {
			p.next = (idx + 1) % len(hosts)
			return hosts[idx], true
		}
	}
	return nil, false
}

func (p *RoundRobinVmAllocationPolicy) DeallocateHostForVm(v *vm.Vm, hosts []*host.Host) {
	for _, h := range hosts {
		if h.ID == v.HostID() {
			h.VmDestroy(v)
			return
		}
	}
}

func (p *RoundRobinVmAllocationPolicy) OptimizeAllocation(_ []*vm.Vm, _ []*host.Host) map[int]int {
	return nil
}

// NewVmAllocationPolicy builds a VmAllocationPolicy by name; an empty
// string defaults to SimpleVmAllocationPolicy. Panics on unrecognized
// names, matching the constructor convention used elsewhere for
// unregistered policy identifiers.
func NewVmAllocationPolicy(name string) VmAllocationPolicy {
	switch name {
	case "", "simple":
		return SimpleVmAllocationPolicy{}
	case "round-robin":
		return NewRoundRobinVmAllocationPolicy()
	default:
		panic(fmt.Sprintf("unknown vm allocation policy %q", name))
	}
}

var (
	_ VmAllocationPolicy = SimpleVmAllocationPolicy{}
	_ VmAllocationPolicy = (*RoundRobinVmAllocationPolicy)(nil)
)
