// Package cloudsim provides the core discrete-event simulation engine for
// modeling cloud computing infrastructure.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: the Event record and its SEND/CREATE/HOLD_DONE/NULL kinds
//   - queue.go: FutureQueue (time-ordered) and DeferredQueue (arrival-ordered)
//   - entity.go: the cooperative Entity state machine
//   - engine.go: the run loop, lifecycle control, and listener notifications
//
// # Architecture
//
// This package defines the engine and the entity contract; concrete entities
// and the per-VM cloudlet scheduling policy live in sub-packages:
//   - cloudlet/: CloudletExecutionInfo and the CloudletScheduler disciplines
//   - resource/: UtilizationModel implementations consumed by cloudlet/
//   - vm/, host/: VM and physical host bookkeeping
//   - alloc/: VmAllocationPolicy implementations
//   - network/: PacketScheduler used by the network-aware scheduler discipline
//   - datacenter/, broker/, cis/: the Entity implementations that drive a
//     scenario end to end
package cloudsim
