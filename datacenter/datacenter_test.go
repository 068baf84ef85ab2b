package datacenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloudsim "github.com/cloudsim-go/cloudsim"
	"github.com/cloudsim-go/cloudsim/alloc"
	"github.com/cloudsim-go/cloudsim/cloudlet"
	"github.com/cloudsim-go/cloudsim/host"
	"github.com/cloudsim-go/cloudsim/vm"
)

// driver is a minimal entity standing in for a broker: it submits one VM
// creation request at Start and records the ack it gets back.
type driver struct {
	cloudsim.BaseEntity
	datacenterID int
	vm           *vm.Vm
	ack          *VmCreateAck
}

func (d *driver) Start(eng *cloudsim.Engine) {
	_ = eng.Schedule(d.ID(), d.datacenterID, 0, TagVmCreate, &VmCreateRequest{Vm: d.vm})
	eng.Wait(d, nil)
}

func (d *driver) Run(eng *cloudsim.Engine) {
	if ev := d.EventBuffer(); ev != nil {
		if ack, ok := ev.Payload.(*VmCreateAck); ok {
			d.ack = ack
		}
	}
	eng.Wait(d, nil)
}

func (d *driver) Shutdown(_ *cloudsim.Engine) {}

func TestDatacenter_HandlesVmCreateRequest_AcksSuccess(t *testing.T) {
	eng := cloudsim.NewEngine(cloudsim.EngineConfig{})

	h := host.NewHost(1, 4096, 4096, host.NewSpaceSharedVmScheduler(4, 1000))
	dc := New("dc0", []*host.Host{h}, alloc.SimpleVmAllocationPolicy{}, 1.0)
	dcID, err := eng.Register(dc)
	require.NoError(t, err)

	v := vm.NewVm(1, 2, 1000, 512, 100, cloudlet.NewTimeSharedScheduler(2))
	drv := &driver{BaseEntity: cloudsim.NewBaseEntity("driver"), datacenterID: dcID, vm: v}
	_, err = eng.Register(drv)
	require.NoError(t, err)

	eng.TerminateAt(2.0)
	require.NoError(t, eng.Start())

	require.NotNil(t, drv.ack)
	assert.True(t, drv.ack.Success)
	assert.Equal(t, 1, drv.ack.VmID)
	assert.True(t, v.IsAllocated())
}

func TestDatacenter_HandlesVmCreateRequest_AcksFailureWhenNoRoom(t *testing.T) {
	eng := cloudsim.NewEngine(cloudsim.EngineConfig{})

	h := host.NewHost(1, 100, 100, host.NewSpaceSharedVmScheduler(1, 1000))
	dc := New("dc0", []*host.Host{h}, alloc.SimpleVmAllocationPolicy{}, 1.0)
	dcID, err := eng.Register(dc)
	require.NoError(t, err)

	v := vm.NewVm(1, 1, 1000, 512, 100, cloudlet.NewTimeSharedScheduler(1))
	drv := &driver{BaseEntity: cloudsim.NewBaseEntity("driver"), datacenterID: dcID, vm: v}
	_, err = eng.Register(drv)
	require.NoError(t, err)

	eng.TerminateAt(2.0)
	require.NoError(t, eng.Start())

	require.NotNil(t, drv.ack)
	assert.False(t, drv.ack.Success)
}
