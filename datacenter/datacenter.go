// Package datacenter models the entity that owns a pool of hosts and an
// allocation policy, ticking its hosts periodically the way a real
// datacenter drives VM and cloudlet progress forward in simulated time.
package datacenter

import (
	"github.com/sirupsen/logrus"

	cloudsim "github.com/cloudsim-go/cloudsim"
	"github.com/cloudsim-go/cloudsim/alloc"
	"github.com/cloudsim-go/cloudsim/cloudlet"
	"github.com/cloudsim-go/cloudsim/host"
	"github.com/cloudsim-go/cloudsim/vm"
)

// Message tags understood by Datacenter.Run.
const (
	TagVmCreate        = 1000 + iota // payload: *VmCreateRequest
	TagCloudletSubmit                // payload: *CloudletSubmitRequest
	tagHostTick                      // internal self-scheduled tick, no payload
)

// TagRegisterDatacenter is the tag a CloudInformationService recognizes as
// a datacenter announcing itself, carrying a *RegisterDatacenterRequest.
const TagRegisterDatacenter = 2000

// RegisterDatacenterRequest announces a datacenter's presence and static
// characteristics to a directory entity.
type RegisterDatacenterRequest struct {
	DatacenterID    int
	Characteristics Characteristics
}

// VmCreateRequest asks the datacenter to place a Vm on one of its hosts.
type VmCreateRequest struct {
	Vm *vm.Vm
}

// VmCreateAck is sent back to the requester's entity id with the outcome.
type VmCreateAck struct {
	VmID    int
	Success bool
}

// CloudletSubmitRequest asks the datacenter to submit a Cloudlet to the
// scheduler of an already-created Vm.
type CloudletSubmitRequest struct {
	Cloudlet         *cloudlet.Cloudlet
	VmID             int
	FileTransferTime float64
}

// CloudletSubmitAck is sent back to the requester's entity id.
type CloudletSubmitAck struct {
	CloudletID int
	Accepted   bool
}

// Characteristics describes the static properties of a Datacenter's
// hardware/software stack, reported to a CloudInformationService when the
// datacenter registers with one.
type Characteristics struct {
	Architecture string
	OS           string
	VMM          string
	TimeZone     float64
	CostPerSec   float64
	CostPerMem   float64
	CostPerBW    float64
}

// Datacenter owns a set of hosts and a VmAllocationPolicy, and self-ticks
// to advance every hosted VM's cloudlet scheduler.
type Datacenter struct {
	cloudsim.BaseEntity

	Characteristics Characteristics
	Hosts           []*host.Host
	Policy          alloc.VmAllocationPolicy

	// TickInterval is the delay before the next host tick when no VM
	// reports a next-event time; when one does, the next tick is scheduled
	// at that time, even if it is further away than TickInterval.
	TickInterval float64

	// CisID is the entity id of a CloudInformationService to register
	// with at startup, set via RegisterWith.
	CisID           int
	registerWithCis bool

	log *logrus.Entry
}

// New builds a Datacenter over the given hosts, using policy for VM
// placement (a SimpleVmAllocationPolicy{} if nil).
func New(name string, hosts []*host.Host, policy alloc.VmAllocationPolicy, tickInterval float64) *Datacenter {
	if policy == nil {
		policy = alloc.SimpleVmAllocationPolicy{}
	}
	if tickInterval <= 0 {
		tickInterval = 1.0
	}
	return &Datacenter{
		BaseEntity:   cloudsim.NewBaseEntity(name),
		Hosts:        hosts,
		Policy:       policy,
		TickInterval: tickInterval,
		log:          logrus.WithField("entity", name),
	}
}

// RegisterWith arranges for the datacenter to announce itself to the
// given CloudInformationService entity id at Start.
func (d *Datacenter) RegisterWith(cisID int) {
	d.CisID = cisID
	d.registerWithCis = true
}

func (d *Datacenter) Start(eng *cloudsim.Engine) {
	d.log.Info("datacenter starting")
	if d.registerWithCis {
		req := &RegisterDatacenterRequest{DatacenterID: d.ID(), Characteristics: d.Characteristics}
		if err := eng.Schedule(d.ID(), d.CisID, 0, TagRegisterDatacenter, req); err != nil {
			d.log.WithError(err).Warn("failed to register with cis")
		}
	}
	if err := eng.Schedule(d.ID(), d.ID(), d.TickInterval, tagHostTick, nil); err != nil {
		d.log.WithError(err).Warn("failed to schedule first host tick")
	}
	eng.Wait(d, nil)
}

func (d *Datacenter) Run(eng *cloudsim.Engine) {
	ev := d.EventBuffer()
	if ev == nil {
		eng.Wait(d, nil)
		return
	}

	switch ev.Tag {
	case TagVmCreate:
		d.handleVmCreate(eng, ev)
	case TagCloudletSubmit:
		d.handleCloudletSubmit(eng, ev)
	case tagHostTick:
		d.handleHostTick(eng, ev)
	default:
		d.log.WithField("tag", ev.Tag).Warn("datacenter received unrecognized tag")
	}

	eng.Wait(d, nil)
}

func (d *Datacenter) Shutdown(_ *cloudsim.Engine) {
	d.log.Info("datacenter shutting down")
}

func (d *Datacenter) handleVmCreate(eng *cloudsim.Engine, ev *cloudsim.Event) {
	req, ok := ev.Payload.(*VmCreateRequest)
	if !ok {
		return
	}
	_, placed := d.Policy.AllocateHostForVm(req.Vm, d.Hosts)
	d.log.WithFields(logrus.Fields{"vm": req.Vm.ID, "placed": placed}).Debug("vm create request handled")
	if err := eng.Schedule(d.ID(), ev.Source, 0, TagVmCreate, &VmCreateAck{VmID: req.Vm.ID, Success: placed}); err != nil {
		d.log.WithError(err).Warn("failed to ack vm create")
	}
}

func (d *Datacenter) handleCloudletSubmit(eng *cloudsim.Engine, ev *cloudsim.Event) {
	req, ok := ev.Payload.(*CloudletSubmitRequest)
	if !ok {
		return
	}
	accepted := false
	for _, h := range d.Hosts {
		for _, v := range h.Vms() {
			if v.ID == req.VmID {
				v.Scheduler.Submit(req.Cloudlet, req.FileTransferTime)
				accepted = true
			}
		}
	}
	d.log.WithFields(logrus.Fields{"cloudlet": req.Cloudlet.ID, "vm": req.VmID, "accepted": accepted}).Debug("cloudlet submit request handled")
	if err := eng.Schedule(d.ID(), ev.Source, 0, TagCloudletSubmit, &CloudletSubmitAck{CloudletID: req.Cloudlet.ID, Accepted: accepted}); err != nil {
		d.log.WithError(err).Warn("failed to ack cloudlet submit")
	}
}

func (d *Datacenter) handleHostTick(eng *cloudsim.Engine, _ *cloudsim.Event) {
	now := eng.Clock()
	next := -1.0
	for _, h := range d.Hosts {
		finish := h.UpdateVmsProcessing(now)
		if finish < 0 {
			continue
		}
		if next < 0 || finish < next {
			next = finish
		}
	}

	delay := d.TickInterval
	if next >= now && next < cloudlet.NoNextEvent {
		delay = next - now
	}
	if delay <= 0 {
		delay = d.TickInterval
	}
	if err := eng.Schedule(d.ID(), d.ID(), delay, tagHostTick, nil); err != nil {
		d.log.WithError(err).Warn("failed to reschedule host tick")
	}
}
