package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsim-go/cloudsim/cloudlet"
	"github.com/cloudsim-go/cloudsim/host"
	"github.com/cloudsim-go/cloudsim/vm"
)

func newHosts() []*host.Host {
	return []*host.Host{
		host.NewHost(1, 1024, 1024, host.NewSpaceSharedVmScheduler(2, 1000)),
		host.NewHost(2, 1024, 1024, host.NewSpaceSharedVmScheduler(2, 1000)),
	}
}

func newVm(id int) *vm.Vm {
	return vm.NewVm(id, 2, 1000, 512, 10, cloudlet.NewTimeSharedScheduler(2))
}

func TestSimpleVmAllocationPolicy_PicksFirstHostWithRoom(t *testing.T) {
	hosts := newHosts()
	p := SimpleVmAllocationPolicy{}

	h, ok := p.AllocateHostForVm(newVm(1), hosts)
	require.True(t, ok)
	assert.Equal(t, 1, h.ID)
}

func TestSimpleVmAllocationPolicy_FallsThroughWhenFirstHostFull(t *testing.T) {
	hosts := newHosts()
	p := SimpleVmAllocationPolicy{}

	_, ok := p.AllocateHostForVm(newVm(1), hosts)
	require.True(t, ok)

	h2, ok := p.AllocateHostForVm(newVm(2), hosts)
	require.True(t, ok)
	assert.Equal(t, 2, h2.ID)
}

func TestRoundRobinVmAllocationPolicy_CyclesHosts(t *testing.T) {
	hosts := newHosts()
	p := NewRoundRobinVmAllocationPolicy()

	h1, ok := p.AllocateHostForVm(newVm(1), hosts)
	require.True(t, ok)
	assert.Equal(t, 1, h1.ID)

	h2, ok := p.AllocateHostForVm(newVm(2), hosts)
	require.True(t, ok)
	assert.Equal(t, 2, h2.ID)
}

func TestNewVmAllocationPolicy_PanicsOnUnknownName(t *testing.T) {
	assert.Panics(t, func() {
		NewVmAllocationPolicy("does-not-exist")
	})
}

func TestNewVmAllocationPolicy_DefaultsToSimple(t *testing.T) {
	p := NewVmAllocationPolicy("")
	_, ok := p.(SimpleVmAllocationPolicy)
	assert.True(t, ok)
}
