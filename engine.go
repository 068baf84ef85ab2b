package cloudsim

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EngineState is the lifecycle state of the Engine itself, distinct from
// EntityState: INITIAL -> RUNNING -> (PAUSED <-> RUNNING)* -> FINISHED.
type EngineState int

const (
	EngineInitial EngineState = iota
	EngineRunning
	EnginePaused
	EngineFinished
)

func (s EngineState) String() string {
	switch s {
	case EngineRunning:
		return "RUNNING"
	case EnginePaused:
		return "PAUSED"
	case EngineFinished:
		return "FINISHED"
	default:
		return "INITIAL"
	}
}

// pauseSpinInterval is how long the run loop sleeps between checks of the
// pause latch while PAUSED, mirroring the bounded-wait spin described in the
// concurrency model.
const pauseSpinInterval = 100 * time.Millisecond

// Engine owns the clock, the event queues, the entity registry, and the run
// loop. It is the sole mutator of queues and entity state; the only
// supported cross-goroutine interaction is pause/resume/terminate/abort,
// guarded by mu.
type Engine struct {
	cfg EngineConfig

	future   *FutureQueue
	deferred *DeferredQueue

	entities   []Entity
	nameToID   map[string]int

	listeners  listenerRegistries
	debouncer  clockTickDebouncer

	clock float64

	// mu guards the lifecycle-control fields below, the only state touched
	// from outside the run-loop goroutine.
	mu                  sync.Mutex
	state               EngineState
	alreadyRunOnce       bool
	pauseRequested      bool
	pauseAt             float64
	terminateRequested  bool
	terminateAtSet      bool
	terminateAt         float64
	aborted             bool
}

// NewEngine constructs an Engine. Zero-valued fields of cfg are replaced
// with DefaultEngineConfig's values.
func NewEngine(cfg EngineConfig) *Engine {
	defaults := DefaultEngineConfig()
	if cfg.MinTimeBetweenEvents <= 0 {
		cfg.MinTimeBetweenEvents = defaults.MinTimeBetweenEvents
	}
	return &Engine{
		cfg:      cfg,
		future:   NewFutureQueue(),
		deferred: NewDeferredQueue(),
		nameToID: make(map[string]int),
		clock:    cfg.StartTime,
		state:    EngineInitial,
	}
}

// Clock returns the current simulated time.
func (eng *Engine) Clock() float64 { return eng.clock }

func (eng *Engine) lockedState() EngineState {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.state
}

// IsRunning reports whether the engine is in the RUNNING state.
func (eng *Engine) IsRunning() bool { return eng.lockedState() == EngineRunning }

// IsPaused reports whether the engine is in the PAUSED state.
func (eng *Engine) IsPaused() bool { return eng.lockedState() == EnginePaused }

// NumEntities returns the number of registered entities.
func (eng *Engine) NumEntities() int { return len(eng.entities) }

// GetEntity looks up a registered entity by id.
func (eng *Engine) GetEntity(id int) (Entity, bool) {
	if id < 0 || id >= len(eng.entities) {
		return nil, false
	}
	return eng.entities[id], true
}

// GetEntityByName looks up a registered entity by name.
func (eng *Engine) GetEntityByName(name string) (Entity, bool) {
	id, ok := eng.nameToID[name]
	if !ok {
		return nil, false
	}
	return eng.entities[id], true
}

// Register adds e to the entity registry, assigning it an id equal to its
// insertion index. It does not call e.Start; that happens when the Engine
// itself starts (for entities registered beforehand) or when a CREATE event
// carrying e is processed (for entities created during a run).
func (eng *Engine) Register(e Entity) (int, error) {
	if e == nil {
		return 0, fmt.Errorf("%w: cannot register a nil entity", ErrInvalidArgument)
	}
	if _, exists := eng.nameToID[e.Name()]; exists {
		return 0, fmt.Errorf("%w: entity name %q already registered", ErrInvalidArgument, e.Name())
	}
	id := len(eng.entities)
	e.setID(id)
	eng.entities = append(eng.entities, e)
	eng.nameToID[e.Name()] = id
	return id, nil
}

// Start transitions the engine from INITIAL to RUNNING, calls Start on
// every currently registered entity, and runs the main loop to completion.
// A second call to Start returns ErrIllegalState.
func (eng *Engine) Start() error {
	eng.mu.Lock()
	if eng.alreadyRunOnce {
		eng.mu.Unlock()
		return fmt.Errorf("%w: Start called more than once", ErrIllegalState)
	}
	eng.alreadyRunOnce = true
	eng.state = EngineRunning
	eng.mu.Unlock()

	logrus.Info("cloudsim: engine starting")
	for _, e := range eng.entities {
		e.Start(eng)
	}

	if !eng.debouncer.seen(eng.clock) {
		eng.debouncer.record(eng.clock)
		eng.listeners.notifyClockTick(eng.clock)
	}

	err := eng.runLoop()
	eng.finishSimulation()

	eng.mu.Lock()
	eng.state = EngineFinished
	eng.mu.Unlock()
	logrus.Infof("cloudsim: engine finished at clock=%g", eng.clock)
	return err
}

func (eng *Engine) runLoop() error {
	for eng.IsRunning() {
		eng.drainRunnable()

		// Pause is checked before the empty-queue termination check below:
		// a pause targeting a time at or after which no more events remain
		// must still be honored (the empty-queue branch of the pause rule),
		// so it cannot be preempted by natural termination.
		if eng.checkPauseAndMaybeBlock() {
			continue
		}

		if eng.future.IsEmpty() {
			eng.mu.Lock()
			eng.state = EngineFinished
			eng.mu.Unlock()
			break
		}

		t := eng.future.First().Time
		for {
			batch := eng.future.SameTimePrefix(t)
			if len(batch) == 0 {
				break
			}
			ev := batch[0]
			eng.future.Remove(ev)
			if err := eng.processEvent(ev); err != nil {
				return err
			}
			eng.listeners.notifyEventProcessed(ev)
		}
		if !eng.debouncer.seen(t) {
			eng.debouncer.record(t)
			eng.listeners.notifyClockTick(t)
		}

		if eng.checkAbortOrTerminate() {
			break
		}
	}
	return nil
}

// drainRunnable invokes Run on every RUNNABLE entity, repeating until a full
// pass finds none — an entity's Run may leave itself RUNNABLE to ask for
// another immediate turn before the loop moves on to event processing.
func (eng *Engine) drainRunnable() {
	for {
		progressed := false
		for _, e := range eng.entities {
			if e.State() == EntityRunnable {
				e.Run(eng)
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// checkAbortOrTerminate applies the abort/terminateAt checks run after each
// processed same-time batch. Returns true if the loop should stop.
func (eng *Engine) checkAbortOrTerminate() bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.aborted || eng.terminateRequested {
		eng.state = EngineFinished
		return true
	}
	if eng.terminateAtSet && eng.clock >= eng.terminateAt {
		eng.state = EngineFinished
		return true
	}
	return false
}

// checkPauseAndMaybeBlock evaluates the pause condition and, if it holds,
// sets the clock to pauseAt, enters PAUSED, notifies paused-listeners, and
// spin-waits until Resume clears the latch. Returns true if a pause actually
// occurred (so the caller should re-drain RUNNABLE entities before touching
// the future queue again).
func (eng *Engine) checkPauseAndMaybeBlock() bool {
	eng.mu.Lock()
	if !eng.pauseRequested {
		eng.mu.Unlock()
		return false
	}

	next := eng.future.First()
	shouldPause := (next != nil && next.Time >= eng.pauseAt) || (next == nil && eng.clock >= eng.pauseAt)
	if !shouldPause {
		eng.mu.Unlock()
		return false
	}

	eng.clock = eng.pauseAt
	eng.state = EnginePaused
	eng.mu.Unlock()

	eng.listeners.notifyPaused()
	logrus.Infof("cloudsim: engine paused at clock=%g", eng.clock)

	for {
		eng.mu.Lock()
		paused := eng.state == EnginePaused
		eng.mu.Unlock()
		if !paused {
			break
		}
		time.Sleep(pauseSpinInterval)
	}
	return true
}

func (eng *Engine) finishSimulation() {
	eng.mu.Lock()
	aborted := eng.aborted
	eng.mu.Unlock()

	if !aborted {
		for _, e := range eng.entities {
			if e.State() != EntityFinished {
				e.Run(eng)
			}
		}
	}
	for _, e := range eng.entities {
		e.Shutdown(eng)
		e.setState(EntityFinished)
	}
}

// processEvent dispatches e according to its Kind, per the SEND/CREATE/
// HOLD_DONE/NULL processing rules.
func (eng *Engine) processEvent(e *Event) error {
	if e.Time < eng.clock {
		return fmt.Errorf("%w: event scheduled at %g is before clock %g", ErrIllegalState, e.Time, eng.clock)
	}
	eng.clock = e.Time

	switch e.Kind {
	case EventNull:
		return fmt.Errorf("%w: cannot process a NULL event", ErrInvalidArgument)

	case EventCreate:
		newEntity, ok := e.Payload.(Entity)
		if !ok || newEntity == nil {
			return fmt.Errorf("%w: CREATE event payload is not an Entity", ErrInvalidArgument)
		}
		if _, err := eng.Register(newEntity); err != nil {
			return err
		}
		newEntity.Start(eng)
		logrus.Debugf("cloudsim: created entity %q (id=%d)", newEntity.Name(), newEntity.ID())

	case EventSend:
		dest, ok := eng.GetEntity(e.Destination)
		if !ok {
			logrus.Warnf("cloudsim: SEND to unknown destination id=%d dropped", e.Destination)
			return nil
		}
		if dest.State() == EntityWaiting && matchesWaitPredicate(dest.predicate(), e) {
			dest.setEventBuffer(e)
			dest.setState(EntityRunnable)
			dest.setPredicate(nil)
		} else {
			eng.deferred.Add(e)
		}

	case EventHoldDone:
		src, ok := eng.GetEntity(e.Source)
		if ok && src.State() == EntityHolding {
			src.setState(EntityRunnable)
		}

	default:
		return fmt.Errorf("%w: unknown event kind %v", ErrInvalidArgument, e.Kind)
	}

	logrus.Debugf("cloudsim: processed %s event at clock=%g src=%d dest=%d tag=%d",
		e.Kind, e.Time, e.Source, e.Destination, e.Tag)
	return nil
}

// Schedule enqueues a SEND event from src to dest, delay after the current
// clock, carrying tag and data. delay must be >= 0.
func (eng *Engine) Schedule(src, dest int, delay float64, tag int, data any) error {
	return eng.scheduleSend(src, dest, delay, tag, data, false)
}

// ScheduleFirst behaves like Schedule but places the event at the head of
// its same-time group, bypassing normal serial ordering.
func (eng *Engine) ScheduleFirst(src, dest int, delay float64, tag int, data any) error {
	return eng.scheduleSend(src, dest, delay, tag, data, true)
}

func (eng *Engine) scheduleSend(src, dest int, delay float64, tag int, data any, first bool) error {
	if delay < 0 {
		return fmt.Errorf("%w: negative delay %g", ErrInvalidArgument, delay)
	}
	if dest != BroadcastDestination {
		if _, ok := eng.GetEntity(dest); !ok {
			return fmt.Errorf("%w: unknown destination entity id=%d", ErrNotFound, dest)
		}
	}
	e := &Event{
		Time:        eng.clock + delay,
		Source:      src,
		Destination: dest,
		Tag:         tag,
		Payload:     data,
		Kind:        EventSend,
	}
	if first {
		eng.future.AddEventFirst(e)
	} else {
		eng.future.AddEvent(e)
	}
	return nil
}

// ScheduleCreate enqueues a CREATE event that will register newEntity and
// call its Start when processed, delay after the current clock.
func (eng *Engine) ScheduleCreate(src int, delay float64, newEntity Entity) error {
	if delay < 0 {
		return fmt.Errorf("%w: negative delay %g", ErrInvalidArgument, delay)
	}
	if newEntity == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalidArgument)
	}
	e := &Event{
		Time:    eng.clock + delay,
		Source:  src,
		Kind:    EventCreate,
		Payload: newEntity,
	}
	eng.future.AddEvent(e)
	return nil
}

// Wait marks entity WAITING and stores pred (nil/AnyEvent both mean SIM_ANY)
// for evaluation against the next SEND addressed to it.
func (eng *Engine) Wait(entity Entity, pred Predicate) {
	entity.setState(EntityWaiting)
	entity.setPredicate(pred)
}

// Select removes and returns the first deferred event addressed to dest
// matching pred, or nil if none match.
func (eng *Engine) Select(dest int, pred Predicate) *Event {
	e := eng.deferred.FindFirst(dest, pred)
	if e != nil {
		eng.deferred.Remove(e)
	}
	return e
}

// Waiting counts deferred events addressed to dest matching pred.
func (eng *Engine) Waiting(dest int, pred Predicate) int {
	return eng.deferred.Count(dest, pred)
}

// Cancel removes and returns the first not-yet-processed future event
// scheduled by src matching pred, or nil if none match.
func (eng *Engine) Cancel(src int, pred Predicate) *Event {
	for _, e := range eng.future.Events() {
		if e.Source == src && matchesPredicate(pred, e) {
			eng.future.Remove(e)
			return e
		}
	}
	return nil
}

// CancelAll removes every not-yet-processed future event scheduled by src
// matching pred, returning the count removed.
func (eng *Engine) CancelAll(src int, pred Predicate) int {
	var match []*Event
	for _, e := range eng.future.Events() {
		if e.Source == src && matchesPredicate(pred, e) {
			match = append(match, e)
		}
	}
	return eng.future.RemoveAll(match)
}

// HoldEntity marks srcID HOLDING immediately and schedules a HOLD_DONE event
// that will wake it after delay.
func (eng *Engine) HoldEntity(srcID int, delay float64) error {
	if delay < 0 {
		return fmt.Errorf("%w: negative delay %g", ErrInvalidArgument, delay)
	}
	src, ok := eng.GetEntity(srcID)
	if !ok {
		return fmt.Errorf("%w: unknown entity id=%d", ErrInvalidArgument, srcID)
	}
	src.setState(EntityHolding)
	eng.future.AddEvent(&Event{
		Time:   eng.clock + delay,
		Source: srcID,
		Kind:   EventHoldDone,
	})
	return nil
}

// PauseEntity is an alias for HoldEntity, matching the source's naming of
// the same operation under two names.
func (eng *Engine) PauseEntity(srcID int, delay float64) error {
	return eng.HoldEntity(srcID, delay)
}

// Pause schedules a pause at simulated time t. Returns false if t is before
// the current clock.
func (eng *Engine) Pause(t float64) bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if t < eng.clock {
		return false
	}
	eng.pauseRequested = true
	eng.pauseAt = t
	return true
}

// PauseNow schedules a pause at the current clock value.
func (eng *Engine) PauseNow() bool {
	return eng.Pause(eng.Clock())
}

// Resume clears a pending or active pause. Returns false if the engine was
// not paused and no pause was pending.
func (eng *Engine) Resume() bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.state != EnginePaused && !eng.pauseRequested {
		return false
	}
	eng.pauseRequested = false
	eng.pauseAt = -1
	if eng.state == EnginePaused {
		eng.state = EngineRunning
	}
	return true
}

// Terminate requests termination at the next loop iteration. Returns true
// iff the engine was RUNNING when called.
func (eng *Engine) Terminate() bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	wasRunning := eng.state == EngineRunning
	eng.terminateRequested = true
	return wasRunning
}

// TerminateAt schedules termination at the first clock value >= t. Returns
// false if t is at or before the current clock.
func (eng *Engine) TerminateAt(t float64) bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if t <= eng.clock {
		return false
	}
	eng.terminateAtSet = true
	eng.terminateAt = t
	return true
}

// Abort requests immediate, ungraceful termination: the run loop stops at
// its next check and finishSimulation skips the extra entity-drain pass.
func (eng *Engine) Abort() {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.aborted = true
}

// AddEventProcessedListener registers fn to be notified after every
// processed event.
func (eng *Engine) AddEventProcessedListener(fn EventListener) ListenerHandle {
	return eng.listeners.addEventListener(fn)
}

// RemoveEventProcessedListener deregisters a listener by handle.
func (eng *Engine) RemoveEventProcessedListener(h ListenerHandle) bool {
	return eng.listeners.removeEventListener(h)
}

// AddClockTickListener registers fn to be notified once per distinct clock
// value, after all same-time events have drained.
func (eng *Engine) AddClockTickListener(fn ClockListener) ListenerHandle {
	return eng.listeners.addClockListener(fn)
}

// RemoveClockTickListener deregisters a listener by handle.
func (eng *Engine) RemoveClockTickListener(h ListenerHandle) bool {
	return eng.listeners.removeClockListener(h)
}

// AddPausedListener registers fn to be notified when the engine enters
// PAUSED.
func (eng *Engine) AddPausedListener(fn PausedListener) ListenerHandle {
	return eng.listeners.addPausedListener(fn)
}

// RemovePausedListener deregisters a listener by handle.
func (eng *Engine) RemovePausedListener(h ListenerHandle) bool {
	return eng.listeners.removePausedListener(h)
}
