package cloudsim

import "sort"

// FutureQueue is the ordered multiset of not-yet-processed events, keyed
// primarily by Time ascending and secondarily by Serial ascending. It backs
// the engine's main loop: Process peeks First(), processes it, then rescans
// the queue's prefix for further events at the same Time.
type FutureQueue struct {
	events      []*Event
	nextSerial  int64
	frontSerial int64 // decremented on every AddEventFirst call
}

// NewFutureQueue returns an empty FutureQueue.
func NewFutureQueue() *FutureQueue {
	return &FutureQueue{frontSerial: -1}
}

// insert places e into sorted position by (Time, Serial). Both FutureQueue
// insertion paths go through here so the invariant never needs re-sorting.
func (q *FutureQueue) insert(e *Event) {
	idx := sort.Search(len(q.events), func(i int) bool {
		other := q.events[i]
		if other.Time != e.Time {
			return other.Time > e.Time
		}
		return other.Serial > e.Serial
	})
	q.events = append(q.events, nil)
	copy(q.events[idx+1:], q.events[idx:])
	q.events[idx] = e
}

// AddEvent assigns the next monotonic serial number and inserts e in time
// order, breaking ties by insertion order.
func (q *FutureQueue) AddEvent(e *Event) {
	e.Serial = q.nextSerial
	q.nextSerial++
	q.insert(e)
}

// AddEventFirst assigns e a sentinel serial that sorts before every other
// event already scheduled for the same Time, implementing "immediate
// priority" sends. Repeated calls at the same Time stack: the most recently
// added-first event ends up at the very front of that time's group.
func (q *FutureQueue) AddEventFirst(e *Event) {
	e.Serial = q.frontSerial
	q.frontSerial--
	q.insert(e)
}

// Remove deletes e by identity. Reports whether e was present.
func (q *FutureQueue) Remove(e *Event) bool {
	for i, ev := range q.events {
		if ev == e {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll deletes every event in es by identity, returning the count
// actually removed.
func (q *FutureQueue) RemoveAll(es []*Event) int {
	removed := 0
	for _, e := range es {
		if q.Remove(e) {
			removed++
		}
	}
	return removed
}

// Size returns the number of queued events.
func (q *FutureQueue) Size() int { return len(q.events) }

// IsEmpty reports whether the queue has no events.
func (q *FutureQueue) IsEmpty() bool { return len(q.events) == 0 }

// First returns the earliest-ordered event, or nil if the queue is empty.
// The returned event remains in the queue.
func (q *FutureQueue) First() *Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

// Events returns the queue's contents in (Time, Serial) order. The backing
// array is shared with the queue; callers must not mutate the slice.
func (q *FutureQueue) Events() []*Event { return q.events }

// SameTimePrefix returns every queued event whose Time equals t, in order.
// The engine uses this to re-scan the queue after each processed event,
// rather than working from a pre-captured snapshot, so newly scheduled
// same-time events are picked up within the current batch.
func (q *FutureQueue) SameTimePrefix(t float64) []*Event {
	var out []*Event
	for _, e := range q.events {
		if e.Time != t {
			break
		}
		out = append(out, e)
	}
	return out
}

// DeferredQueue holds events that arrived at an entity but were not matched
// at delivery time — either because the entity was not WAITING, or because
// its predicate did not match. Order is strictly insertion order: there is
// no time-based reordering, so Select/Waiting are deterministic.
type DeferredQueue struct {
	events []*Event
}

// NewDeferredQueue returns an empty DeferredQueue.
func NewDeferredQueue() *DeferredQueue { return &DeferredQueue{} }

// Add appends e to the back of the queue.
func (q *DeferredQueue) Add(e *Event) {
	q.events = append(q.events, e)
}

// Remove deletes e by identity. Reports whether e was present.
func (q *DeferredQueue) Remove(e *Event) bool {
	for i, ev := range q.events {
		if ev == e {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return true
		}
	}
	return false
}

// FindFirst returns (without removing) the first queued event addressed to
// dest matching pred, or nil if none match.
func (q *DeferredQueue) FindFirst(dest int, pred Predicate) *Event {
	for _, e := range q.events {
		if e.Destination == dest && matchesPredicate(pred, e) {
			return e
		}
	}
	return nil
}

// Count returns how many queued events addressed to dest match pred.
func (q *DeferredQueue) Count(dest int, pred Predicate) int {
	n := 0
	for _, e := range q.events {
		if e.Destination == dest && matchesPredicate(pred, e) {
			n++
		}
	}
	return n
}

// Size returns the number of deferred events.
func (q *DeferredQueue) Size() int { return len(q.events) }
