package cloudsim

// EventListener is notified once for every event the engine processes.
type EventListener func(e *Event)

// ClockListener is notified when the clock transitions to a new distinct
// value, after every event scheduled for that value has been drained.
type ClockListener func(clock float64)

// PausedListener is notified when the engine enters the PAUSED state.
type PausedListener func()

// ListenerHandle identifies a registered listener for later removal.
// Handles are assigned per-registry and are never reused, giving listener
// registration identity semantics (duplicates are distinguished by handle,
// not by comparing func values) — the same shape as the subscription-id
// pattern used by event-bus style registries.
type ListenerHandle int

type eventListenerEntry struct {
	handle ListenerHandle
	fn     EventListener
}

type clockListenerEntry struct {
	handle ListenerHandle
	fn     ClockListener
}

type pausedListenerEntry struct {
	handle ListenerHandle
	fn     PausedListener
}

// listenerRegistries groups the engine's three observer registries. Each
// registry is a set keyed by ListenerHandle, notified over a snapshot of its
// entries so that a listener may register or deregister another listener
// during notification without corrupting iteration.
type listenerRegistries struct {
	nextHandle ListenerHandle

	onEventProcessed []eventListenerEntry
	onClockTick      []clockListenerEntry
	onPaused         []pausedListenerEntry
}

func (r *listenerRegistries) addEventListener(fn EventListener) ListenerHandle {
	h := r.nextHandle
	r.nextHandle++
	r.onEventProcessed = append(r.onEventProcessed, eventListenerEntry{h, fn})
	return h
}

func (r *listenerRegistries) removeEventListener(h ListenerHandle) bool {
	for i, e := range r.onEventProcessed {
		if e.handle == h {
			r.onEventProcessed = append(r.onEventProcessed[:i], r.onEventProcessed[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistries) notifyEventProcessed(e *Event) {
	snapshot := append([]eventListenerEntry(nil), r.onEventProcessed...)
	for _, entry := range snapshot {
		entry.fn(e)
	}
}

func (r *listenerRegistries) addClockListener(fn ClockListener) ListenerHandle {
	h := r.nextHandle
	r.nextHandle++
	r.onClockTick = append(r.onClockTick, clockListenerEntry{h, fn})
	return h
}

func (r *listenerRegistries) removeClockListener(h ListenerHandle) bool {
	for i, e := range r.onClockTick {
		if e.handle == h {
			r.onClockTick = append(r.onClockTick[:i], r.onClockTick[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistries) notifyClockTick(clock float64) {
	snapshot := append([]clockListenerEntry(nil), r.onClockTick...)
	for _, entry := range snapshot {
		entry.fn(clock)
	}
}

func (r *listenerRegistries) addPausedListener(fn PausedListener) ListenerHandle {
	h := r.nextHandle
	r.nextHandle++
	r.onPaused = append(r.onPaused, pausedListenerEntry{h, fn})
	return h
}

func (r *listenerRegistries) removePausedListener(h ListenerHandle) bool {
	for i, e := range r.onPaused {
		if e.handle == h {
			r.onPaused = append(r.onPaused[:i], r.onPaused[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistries) notifyPaused() {
	snapshot := append([]pausedListenerEntry(nil), r.onPaused...)
	for _, entry := range snapshot {
		entry.fn()
	}
}

// clockTickDebouncer fires a ClockListener notification at most once per
// distinct clock value, using a 2-slot circular buffer of recently announced
// times — formalizing the source's debounce mechanism for same-time bursts.
type clockTickDebouncer struct {
	slots [2]float64
	set   [2]bool
	next  int
}

func (d *clockTickDebouncer) seen(t float64) bool {
	for i := 0; i < 2; i++ {
		if d.set[i] && d.slots[i] == t {
			return true
		}
	}
	return false
}

func (d *clockTickDebouncer) record(t float64) {
	d.slots[d.next] = t
	d.set[d.next] = true
	d.next = (d.next + 1) % 2
}
