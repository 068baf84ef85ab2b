// Package cloudlet models compute jobs ("cloudlets") and the per-VM
// scheduling disciplines that time-share processing elements among them.
package cloudlet

import "github.com/cloudsim-go/cloudsim/resource"

// Cloudlet is an immutable job descriptor: instruction length, PE
// requirement, and the utilization models that scale its resource demand
// over the course of execution.
type Cloudlet struct {
	ID int

	// Length is the total instruction count, in millions of instructions
	// (MI), the cloudlet must execute before reaching SUCCESS.
	Length int64

	// RequiredPEs is the number of processing elements the cloudlet needs
	// concurrently; for a space-shared VM these are reserved for its
	// lifetime, for a time-shared VM they determine its proportional share.
	RequiredPEs int

	// RequiredRAM / RequiredBW are the cloudlet's resource footprints. They
	// are carried on the descriptor only: neither the scheduler nor the
	// owning VM checks them; the scheduler reports utilization derived from
	// the models below.
	RequiredRAM int64
	RequiredBW  int64

	SubmissionTime float64

	CPUUtilization resource.UtilizationModel
	RAMUtilization resource.UtilizationModel
	BWUtilization  resource.UtilizationModel
}

// NewCloudlet builds a Cloudlet with all three utilization models set to
// resource.FullUtilization{}, so callers need not wire them explicitly.
func NewCloudlet(id int, length int64, requiredPEs int) *Cloudlet {
	return &Cloudlet{
		ID:             id,
		Length:         length,
		RequiredPEs:    requiredPEs,
		CPUUtilization: resource.FullUtilization{},
		RAMUtilization: resource.FullUtilization{},
		BWUtilization:  resource.FullUtilization{},
	}
}

// WithUtilization overrides the three utilization models in one call and
// returns the receiver, for compact construction at call sites.
func (c *Cloudlet) WithUtilization(cpu, ram, bw resource.UtilizationModel) *Cloudlet {
	if cpu != nil {
		c.CPUUtilization = cpu
	}
	if ram != nil {
		c.RAMUtilization = ram
	}
	if bw != nil {
		c.BWUtilization = bw
	}
	return c
}

// Status is the lifecycle state of a CloudletExecutionInfo.
type Status int

const (
	Created Status = iota
	Ready
	Queued
	InExec
	Paused
	Resumed
	Success
	Failed
	Canceled
)

func (s Status) String() string {
	switch s {
	case Created:
		return "CREATED"
	case Ready:
		return "READY"
	case Queued:
		return "QUEUED"
	case InExec:
		return "INEXEC"
	case Paused:
		return "PAUSED"
	case Resumed:
		return "RESUMED"
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	case Canceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// ExecutionInfo is the per-VM execution record for a single cloudlet: the
// mutable bookkeeping the scheduler threads through submit/update/cancel.
type ExecutionInfo struct {
	Cloudlet *Cloudlet
	Status   Status

	// FileTransferTime is the residual delay, in simulated seconds, before
	// instruction execution may begin. Consumed unconditionally by the
	// first updateVmProcessing steps that observe it, never partially
	// carried into the instructions-executed computation for that step.
	FileTransferTime float64

	// InstructionsFinishedSoFar is tracked in raw instructions (Cloudlet.Length
	// is in MI, i.e. millions of instructions) so it can accumulate the
	// sub-MI progress produced by a single short processing step without
	// rounding to zero; RemainingInstructions converts back for comparison.
	InstructionsFinishedSoFar int64
	LastProcessingTime        float64
	FinishTime                float64

	// AllocatedMips / UsedPes are cached from the most recent processor
	// update, read by the utilization getters and by migration callers.
	AllocatedMips float64
	UsedPes       int

	// RamUsage / BwUsage cache the RAM/BW utilization models evaluated at
	// LastProcessingTime, read by the scheduler's percent-utilization
	// getters without re-evaluating the model at an arbitrary time.
	RamUsage float64
	BwUsage  float64

	arrivalTime float64
}

// NewExecutionInfo wraps a Cloudlet for scheduling, recording its arrival
// instant (used as the Δt baseline for its first processing step).
func NewExecutionInfo(c *Cloudlet, fileTransferTime, arrivalTime float64) *ExecutionInfo {
	return &ExecutionInfo{
		Cloudlet:         c,
		Status:           Created,
		FileTransferTime: fileTransferTime,
		arrivalTime:      arrivalTime,
	}
}

// LengthInstructions is the cloudlet's length converted from MI to raw
// instructions, the unit InstructionsFinishedSoFar is tracked in.
func (ei *ExecutionInfo) LengthInstructions() int64 {
	return ei.Cloudlet.Length * million
}

// RemainingInstructions is the cloudlet's length (in raw instructions)
// minus what has executed so far, never negative.
func (ei *ExecutionInfo) RemainingInstructions() int64 {
	r := ei.LengthInstructions() - ei.InstructionsFinishedSoFar
	if r < 0 {
		return 0
	}
	return r
}

// IsFinished reports whether enough instructions have executed to satisfy
// the cloudlet's length.
func (ei *ExecutionInfo) IsFinished() bool {
	return ei.InstructionsFinishedSoFar >= ei.LengthInstructions()
}
