package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloudsim "github.com/cloudsim-go/cloudsim"
	"github.com/cloudsim-go/cloudsim/alloc"
	"github.com/cloudsim-go/cloudsim/cloudlet"
	"github.com/cloudsim-go/cloudsim/datacenter"
	"github.com/cloudsim-go/cloudsim/host"
	"github.com/cloudsim-go/cloudsim/vm"
)

func TestDatacenterBroker_CreatesVmsThenSubmitsCloudlets(t *testing.T) {
	eng := cloudsim.NewEngine(cloudsim.EngineConfig{})

	h := host.NewHost(1, 4096, 4096, host.NewSpaceSharedVmScheduler(4, 1000))
	dc := datacenter.New("dc0", []*host.Host{h}, alloc.SimpleVmAllocationPolicy{}, 1.0)
	dcID, err := eng.Register(dc)
	require.NoError(t, err)

	b := New("broker0", dcID)
	v := vm.NewVm(1, 2, 1000, 512, 100, cloudlet.NewTimeSharedScheduler(2))
	b.VmList = []*vm.Vm{v}
	b.CloudletList = []CloudletPlacement{
		{Cloudlet: cloudlet.NewCloudlet(1, 1000, 2), VmID: 1},
	}
	_, err = eng.Register(b)
	require.NoError(t, err)

	eng.TerminateAt(3.0)
	require.NoError(t, eng.Start())

	assert.True(t, b.Done())
	assert.Equal(t, []int{1}, b.VmsCreated)
	assert.Empty(t, b.VmsFailed)
	assert.Equal(t, []int{1}, b.CloudletsAccepted)
	assert.Empty(t, b.CloudletsRejected)
}

func TestDatacenterBroker_RecordsFailedVmCreation(t *testing.T) {
	eng := cloudsim.NewEngine(cloudsim.EngineConfig{})

	h := host.NewHost(1, 10, 10, host.NewSpaceSharedVmScheduler(1, 1000))
	dc := datacenter.New("dc0", []*host.Host{h}, alloc.SimpleVmAllocationPolicy{}, 1.0)
	dcID, err := eng.Register(dc)
	require.NoError(t, err)

	b := New("broker0", dcID)
	v := vm.NewVm(1, 1, 1000, 512, 100, cloudlet.NewTimeSharedScheduler(1))
	b.VmList = []*vm.Vm{v}
	_, err = eng.Register(b)
	require.NoError(t, err)

	eng.TerminateAt(2.0)
	require.NoError(t, eng.Start())

	assert.Equal(t, []int{1}, b.VmsFailed)
	assert.Empty(t, b.VmsCreated)
}
