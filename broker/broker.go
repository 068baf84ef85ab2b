// Package broker implements DatacenterBroker, the entity that submits VM
// creation and cloudlet requests to a datacenter on behalf of an external
// workload, playing the driver role in an otherwise passive simulation.
package broker

import (
	"github.com/sirupsen/logrus"

	cloudsim "github.com/cloudsim-go/cloudsim"
	"github.com/cloudsim-go/cloudsim/cloudlet"
	"github.com/cloudsim-go/cloudsim/datacenter"
	"github.com/cloudsim-go/cloudsim/vm"
)

// CloudletPlacement pairs a cloudlet with the Vm it should run on.
type CloudletPlacement struct {
	Cloudlet         *cloudlet.Cloudlet
	VmID             int
	FileTransferTime float64
}

// DatacenterBroker owns a target datacenter id, a list of VMs to create,
// and a list of cloudlets, all submitted once every VM creation request
// has been acknowledged, whether it succeeded or failed.
// Construct it, populate VmList/CloudletList, and let Start drive
// submission; outcomes land in VmsCreated/CloudletsAccepted/CloudletsRejected.
type DatacenterBroker struct {
	cloudsim.BaseEntity

	DatacenterID int
	VmList       []*vm.Vm
	CloudletList []CloudletPlacement

	VmsCreated        []int
	VmsFailed         []int
	CloudletsAccepted []int
	CloudletsRejected []int

	pendingVmAcks       int
	pendingCloudletAcks int

	log *logrus.Entry
}

func New(name string, datacenterID int) *DatacenterBroker {
	return &DatacenterBroker{
		BaseEntity:   cloudsim.NewBaseEntity(name),
		DatacenterID: datacenterID,
		log:          logrus.WithField("entity", name),
	}
}

func (b *DatacenterBroker) Start(eng *cloudsim.Engine) {
	b.log.WithField("vms", len(b.VmList)).Info("broker submitting vm creation requests")
	b.pendingVmAcks = len(b.VmList)
	for _, v := range b.VmList {
		req := &datacenter.VmCreateRequest{Vm: v}
		if err := eng.Schedule(b.ID(), b.DatacenterID, 0, datacenter.TagVmCreate, req); err != nil {
			b.log.WithError(err).WithField("vm", v.ID).Warn("failed to submit vm creation request")
			b.pendingVmAcks--
		}
	}
	if b.pendingVmAcks == 0 {
		b.submitCloudlets(eng)
	}
	eng.Wait(b, nil)
}

func (b *DatacenterBroker) Run(eng *cloudsim.Engine) {
	ev := b.EventBuffer()
	if ev == nil {
		eng.Wait(b, nil)
		return
	}

	switch ev.Tag {
	case datacenter.TagVmCreate:
		b.handleVmCreateAck(eng, ev)
	case datacenter.TagCloudletSubmit:
		b.handleCloudletSubmitAck(ev)
	default:
		b.log.WithField("tag", ev.Tag).Warn("broker received unrecognized tag")
	}

	eng.Wait(b, nil)
}

func (b *DatacenterBroker) Shutdown(_ *cloudsim.Engine) {
	b.log.WithFields(logrus.Fields{
		"vms_created":        len(b.VmsCreated),
		"vms_failed":         len(b.VmsFailed),
		"cloudlets_accepted": len(b.CloudletsAccepted),
		"cloudlets_rejected": len(b.CloudletsRejected),
	}).Info("broker shutting down")
}

func (b *DatacenterBroker) handleVmCreateAck(eng *cloudsim.Engine, ev *cloudsim.Event) {
	ack, ok := ev.Payload.(*datacenter.VmCreateAck)
	if !ok {
		return
	}
	if ack.Success {
		b.VmsCreated = append(b.VmsCreated, ack.VmID)
	} else {
		b.VmsFailed = append(b.VmsFailed, ack.VmID)
	}
	b.pendingVmAcks--
	if b.pendingVmAcks <= 0 {
		b.submitCloudlets(eng)
	}
}

func (b *DatacenterBroker) submitCloudlets(eng *cloudsim.Engine) {
	b.pendingCloudletAcks = len(b.CloudletList)
	for _, p := range b.CloudletList {
		req := &datacenter.CloudletSubmitRequest{
			Cloudlet:         p.Cloudlet,
			VmID:             p.VmID,
			FileTransferTime: p.FileTransferTime,
		}
		if err := eng.Schedule(b.ID(), b.DatacenterID, 0, datacenter.TagCloudletSubmit, req); err != nil {
			b.log.WithError(err).WithField("cloudlet", p.Cloudlet.ID).Warn("failed to submit cloudlet")
			b.pendingCloudletAcks--
		}
	}
}

func (b *DatacenterBroker) handleCloudletSubmitAck(ev *cloudsim.Event) {
	ack, ok := ev.Payload.(*datacenter.CloudletSubmitAck)
	if !ok {
		return
	}
	if ack.Accepted {
		b.CloudletsAccepted = append(b.CloudletsAccepted, ack.CloudletID)
	} else {
		b.CloudletsRejected = append(b.CloudletsRejected, ack.CloudletID)
	}
	b.pendingCloudletAcks--
}

// Done reports whether every VM creation and cloudlet submission this
// broker issued has been acknowledged.
func (b *DatacenterBroker) Done() bool {
	return b.pendingVmAcks <= 0 && b.pendingCloudletAcks <= 0
}
