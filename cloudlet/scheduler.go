package cloudlet

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cloudsim-go/cloudsim/network"
)

// million converts between MI (millions of instructions) and raw
// instructions, and between MIPS and raw instructions/second.
const million = 1e6

// deltaEpsilon absorbs double-precision drift in elapsed-time computation;
// any Δt smaller than this in absolute value is treated as exactly 0.
const deltaEpsilon = 1e-9

// NoNextEvent is returned by UpdateVmProcessing when EXEC is empty after
// admitting from WAITING -- no cloudlet is running, so there is no next
// completion instant to predict.
const NoNextEvent = math.MaxFloat64

// Scheduler is the per-VM cloudlet scheduling policy: admits, time-shares,
// tracks progress, and reports utilization back to the owning VM.
type Scheduler interface {
	Submit(c *Cloudlet, fileTransferTime float64) float64
	UpdateVmProcessing(currentTime float64, mipsShare []float64) float64

	CloudletCancel(id int) *Cloudlet
	CloudletPause(id int) bool
	CloudletResume(id int) bool
	CloudletFinish(id int) bool
	GetCloudletToMigrate() *Cloudlet

	Exec() []*ExecutionInfo
	Waiting() []*ExecutionInfo
	Paused() []*ExecutionInfo
	Finished() []*ExecutionInfo

	PacketScheduler() network.PacketScheduler
	SetPacketScheduler(ps network.PacketScheduler)

	CurrentRequestedRamPercentUtilization() float64
	CurrentRequestedBwPercentUtilization() float64
	RequestedCpuPercentUtilization(time float64) float64
}

// discipline is the policy hook that distinguishes scheduling disciplines
// sharing the Base implementation: how MIPS is allocated to a single
// admitted cloudlet, and how much of a processing step is charged to
// network transmission before instructions execute.
type discipline interface {
	allocatedMips(requiredPEs, totalUsedPes int, proc Processor) float64
	networkCharge(ei *ExecutionInfo, deltaTime float64) float64
}

// Base implements the 80% of CloudletScheduler behavior shared by every
// discipline (submission, periodic update, cancellation, utilization
// reporting); concrete disciplines supply the allocation policy and embed
// Base, delegating the interface methods to it.
type Base struct {
	exec     []*ExecutionInfo
	waiting  []*ExecutionInfo
	paused   []*ExecutionInfo
	finished []*ExecutionInfo

	pes          int
	previousTime float64
	processor    Processor
	packets      network.PacketScheduler

	disc discipline

	log *logrus.Entry
}

func newBase(pes int, d discipline, log *logrus.Entry) *Base {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Base{
		pes:     pes,
		disc:    d,
		packets: network.NullPacketScheduler{},
		log:     log,
	}
}

func (b *Base) usedPes() int {
	used := 0
	for _, ei := range b.exec {
		used += ei.UsedPes
	}
	return used
}

func (b *Base) freePes() int {
	free := b.pes - b.usedPes()
	if free < 0 {
		return 0
	}
	return free
}

// Submit wraps c in a fresh ExecutionInfo and admits it to EXEC if PEs are
// free, else queues it in WAITING.
func (b *Base) Submit(c *Cloudlet, fileTransferTime float64) float64 {
	ei := NewExecutionInfo(c, fileTransferTime, b.previousTime)
	if b.freePes() >= c.RequiredPEs {
		ei.Status = InExec
		ei.UsedPes = c.RequiredPEs
		b.exec = append(b.exec, ei)
		b.log.WithFields(logrus.Fields{"cloudlet": c.ID, "pes": c.RequiredPEs}).Debug("cloudlet admitted to exec")
		return b.nextFinishEstimate(b.previousTime)
	}
	ei.Status = Queued
	b.waiting = append(b.waiting, ei)
	b.log.WithField("cloudlet", c.ID).Debug("cloudlet queued, insufficient free PEs")
	return 0
}

// UpdateVmProcessing runs the periodic accounting step: advance each EXEC
// record's instruction count, retire finished cloudlets, admit from
// WAITING, and report the next predicted completion time.
func (b *Base) UpdateVmProcessing(currentTime float64, mipsShare []float64) float64 {
	b.processor = NewProcessor(mipsShare)

	for _, ei := range b.exec {
		b.updateCloudletProcessing(ei, currentTime)
	}

	b.retireFinished(currentTime)
	b.admitFromWaiting()

	b.previousTime = currentTime
	return b.nextFinishEstimate(currentTime)
}

func (b *Base) updateCloudletProcessing(ei *ExecutionInfo, currentTime float64) {
	base := b.previousTime
	if ei.arrivalTime > base {
		base = ei.arrivalTime
	}
	deltaTime := currentTime - base
	if deltaTime < 0 {
		deltaTime = 0
	}
	if math.Abs(deltaTime) < deltaEpsilon {
		deltaTime = 0
	}

	if ei.FileTransferTime > 0 {
		ei.FileTransferTime -= deltaTime
		if ei.FileTransferTime < 0 {
			ei.FileTransferTime = 0
		}
		ei.AllocatedMips = b.disc.allocatedMips(ei.Cloudlet.RequiredPEs, b.usedPes(), b.processor)
		ei.LastProcessingTime = currentTime
		b.updateResourceUsage(ei, currentTime)
		return
	}

	executableDelta := deltaTime - b.disc.networkCharge(ei, deltaTime)
	if executableDelta < 0 {
		executableDelta = 0
	}

	ei.AllocatedMips = b.disc.allocatedMips(ei.Cloudlet.RequiredPEs, b.usedPes(), b.processor)
	executed := int64(ei.AllocatedMips * million * executableDelta)
	ei.InstructionsFinishedSoFar += executed
	if length := ei.LengthInstructions(); ei.InstructionsFinishedSoFar > length {
		ei.InstructionsFinishedSoFar = length
	}
	ei.LastProcessingTime = currentTime
	b.updateResourceUsage(ei, currentTime)
}

func (b *Base) updateResourceUsage(ei *ExecutionInfo, currentTime float64) {
	ei.RamUsage = ei.Cloudlet.RAMUtilization.Utilization(currentTime)
	ei.BwUsage = ei.Cloudlet.BWUtilization.Utilization(currentTime)
}

func (b *Base) retireFinished(currentTime float64) {
	var stillRunning []*ExecutionInfo
	for _, ei := range b.exec {
		if ei.IsFinished() {
			ei.Status = Success
			ei.FinishTime = currentTime
			b.finished = append(b.finished, ei)
			b.log.WithField("cloudlet", ei.Cloudlet.ID).Debug("cloudlet finished")
			continue
		}
		stillRunning = append(stillRunning, ei)
	}
	b.exec = stillRunning
}

// admitFromWaiting moves cloudlets from WAITING to EXEC in FIFO order
// while free PEs remain, matching moveNextCloudletsFromWaitingToExecList.
func (b *Base) admitFromWaiting() {
	for {
		free := b.freePes()
		if free <= 0 || len(b.waiting) == 0 {
			return
		}
		idx := -1
		for i, ei := range b.waiting {
			if ei.Cloudlet.RequiredPEs <= free {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		ei := b.waiting[idx]
		b.waiting = append(b.waiting[:idx], b.waiting[idx+1:]...)
		ei.Status = InExec
		ei.UsedPes = ei.Cloudlet.RequiredPEs
		ei.LastProcessingTime = b.previousTime
		b.exec = append(b.exec, ei)
		b.log.WithField("cloudlet", ei.Cloudlet.ID).Debug("cloudlet admitted from waiting")
	}
}

func (b *Base) nextFinishEstimate(currentTime float64) float64 {
	if len(b.exec) == 0 {
		return NoNextEvent
	}
	// Refresh every EXEC record's allocation against the final post-admission
	// totalUsedPes before estimating: a cloudlet admitted by admitFromWaiting
	// this same call never went through updateCloudletProcessing and would
	// otherwise report a stale (zero) share.
	totalUsedPes := b.usedPes()
	for _, ei := range b.exec {
		ei.AllocatedMips = b.disc.allocatedMips(ei.Cloudlet.RequiredPEs, totalUsedPes, b.processor)
	}

	min := NoNextEvent
	for _, ei := range b.exec {
		if ei.AllocatedMips <= 0 {
			continue
		}
		remaining := ei.RemainingInstructions()
		finish := currentTime + float64(remaining)/(ei.AllocatedMips*million)
		if finish < min {
			min = finish
		}
	}
	return min
}

// CloudletCancel removes a cloudlet from whichever list it occupies,
// marks it CANCELED, and returns the underlying Cloudlet, or nil if no
// list contains it.
func (b *Base) CloudletCancel(id int) *Cloudlet {
	for _, listPtr := range []*[]*ExecutionInfo{&b.exec, &b.waiting, &b.paused, &b.finished} {
		for i, ei := range *listPtr {
			if ei.Cloudlet.ID == id {
				*listPtr = append((*listPtr)[:i], (*listPtr)[i+1:]...)
				ei.Status = Canceled
				return ei.Cloudlet
			}
		}
	}
	return nil
}

// CloudletPause moves an EXEC or WAITING cloudlet to PAUSED, freezing its
// InstructionsFinishedSoFar. Returns false if the cloudlet is in neither
// list.
func (b *Base) CloudletPause(id int) bool {
	for _, listPtr := range []*[]*ExecutionInfo{&b.exec, &b.waiting} {
		for i, ei := range *listPtr {
			if ei.Cloudlet.ID == id {
				*listPtr = append((*listPtr)[:i], (*listPtr)[i+1:]...)
				ei.Status = Paused
				ei.UsedPes = 0
				b.paused = append(b.paused, ei)
				return true
			}
		}
	}
	return false
}

// CloudletResume moves a PAUSED cloudlet back to EXEC if PEs are free, else
// WAITING. Returns false if the cloudlet is not in PAUSED.
func (b *Base) CloudletResume(id int) bool {
	for i, ei := range b.paused {
		if ei.Cloudlet.ID == id {
			b.paused = append(b.paused[:i], b.paused[i+1:]...)
			if b.freePes() >= ei.Cloudlet.RequiredPEs {
				ei.Status = InExec
				ei.UsedPes = ei.Cloudlet.RequiredPEs
				ei.LastProcessingTime = b.previousTime
				b.exec = append(b.exec, ei)
			} else {
				ei.Status = Queued
				b.waiting = append(b.waiting, ei)
			}
			return true
		}
	}
	return false
}

// CloudletFinish force-completes a cloudlet: its length is clamped to
// instructions finished so far and it moves to FINISHED regardless of
// which list it currently occupies.
func (b *Base) CloudletFinish(id int) bool {
	for _, listPtr := range []*[]*ExecutionInfo{&b.exec, &b.waiting, &b.paused} {
		for i, ei := range *listPtr {
			if ei.Cloudlet.ID == id {
				*listPtr = append((*listPtr)[:i], (*listPtr)[i+1:]...)
				ei.Cloudlet.Length = ei.InstructionsFinishedSoFar / million
				ei.Status = Success
				ei.FinishTime = b.previousTime
				b.finished = append(b.finished, ei)
				return true
			}
		}
	}
	return false
}

// GetCloudletToMigrate pops the first EXEC element (FIFO) for live
// migration by the allocation policy, returning its Cloudlet, or nil if
// EXEC is empty.
func (b *Base) GetCloudletToMigrate() *Cloudlet {
	if len(b.exec) == 0 {
		return nil
	}
	ei := b.exec[0]
	b.exec = b.exec[1:]
	return ei.Cloudlet
}

func (b *Base) Exec() []*ExecutionInfo     { return append([]*ExecutionInfo(nil), b.exec...) }
func (b *Base) Waiting() []*ExecutionInfo  { return append([]*ExecutionInfo(nil), b.waiting...) }
func (b *Base) Paused() []*ExecutionInfo   { return append([]*ExecutionInfo(nil), b.paused...) }
func (b *Base) Finished() []*ExecutionInfo { return append([]*ExecutionInfo(nil), b.finished...) }

func (b *Base) PacketScheduler() network.PacketScheduler { return b.packets }
func (b *Base) SetPacketScheduler(ps network.PacketScheduler) {
	if ps == nil {
		ps = network.NullPacketScheduler{}
	}
	b.packets = ps
}

// CurrentRequestedRamPercentUtilization sums each EXEC cloudlet's own RAM
// utilization model at the last processed time, capped at 1.0. Deliberate
// choice: RAM demand is tracked by a RAM model (ei.RamUsage), not the CPU
// utilization model, so this reports actual requested RAM rather than an
// unrelated CPU figure reused under a RAM label.
func (b *Base) CurrentRequestedRamPercentUtilization() float64 {
	var total float64
	for _, ei := range b.exec {
		total += ei.RamUsage
	}
	return capAt1(total)
}

// CurrentRequestedBwPercentUtilization sums each EXEC cloudlet's own BW
// utilization model at the last processed time, capped at 1.0. Same
// reasoning as CurrentRequestedRamPercentUtilization: bandwidth demand comes
// from ei.BwUsage, not the CPU utilization model.
func (b *Base) CurrentRequestedBwPercentUtilization() float64 {
	var total float64
	for _, ei := range b.exec {
		total += ei.BwUsage
	}
	return capAt1(total)
}

// RequestedCpuPercentUtilization is the sum of requested MIPS across EXEC
// cloudlets divided by total VM MIPS capacity.
func (b *Base) RequestedCpuPercentUtilization(time float64) float64 {
	totalMips := b.processor.TotalMips()
	if totalMips <= 0 {
		return 0
	}
	var requested float64
	for _, ei := range b.exec {
		requested += requestedMips(ei, time)
	}
	return requested / totalMips
}

func requestedMips(ei *ExecutionInfo, time float64) float64 {
	return ei.Cloudlet.CPUUtilization.Utilization(time) * ei.AllocatedMips
}

func capAt1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
