package cloudsim

// EventKind discriminates the payload shape carried by an Event, matching
// the source's tagged sum type: SEND carries arbitrary data, CREATE carries
// a new Entity to register, HOLD_DONE carries nothing, NULL is invalid and
// always fails processing.
type EventKind int

const (
	EventNull EventKind = iota
	EventSend
	EventCreate
	EventHoldDone
)

func (k EventKind) String() string {
	switch k {
	case EventSend:
		return "SEND"
	case EventCreate:
		return "CREATE"
	case EventHoldDone:
		return "HOLD_DONE"
	default:
		return "NULL"
	}
}

// TagUrgentWake is a reserved tag value. A SEND event carrying this tag
// bypasses the destination entity's wait predicate entirely and always wakes
// it, regardless of what the entity is waiting for.
const TagUrgentWake = 9999

// BroadcastDestination is the sentinel destination id for broadcast-style
// sends. The core never produces it. Schedule accepts it without looking up
// a destination entity; since no entity has this id, the dispatcher drops
// such an event with a warning when it is processed.
const BroadcastDestination = -1

// Event is an immutable record of a scheduled interaction between entities.
// Events are totally ordered within the FutureQueue by (Time, Serial).
type Event struct {
	Time        float64
	Serial      int64
	Source      int
	Destination int
	Tag         int
	Payload     any
	Kind        EventKind
}

// Predicate selects which deferred or future events an entity is interested
// in. A nil Predicate is the SIM_ANY sentinel: it matches every event.
type Predicate func(e *Event) bool

// AnyEvent is the SIM_ANY predicate: it matches every event unconditionally.
// Passing a nil Predicate to Wait/Select/Waiting/Cancel has the same effect.
func AnyEvent(*Event) bool { return true }

// matchesPredicate applies a plain predicate, treating nil as SIM_ANY. Used
// by select/waiting/cancel, which have no urgent-wake bypass.
func matchesPredicate(pred Predicate, e *Event) bool {
	if pred == nil {
		return true
	}
	return pred(e)
}

// matchesWaitPredicate applies a WAITING entity's stored predicate against an
// arriving SEND event, honoring the TagUrgentWake bypass described in the
// SEND processing rule.
func matchesWaitPredicate(pred Predicate, e *Event) bool {
	if e.Tag == TagUrgentWake {
		return true
	}
	return matchesPredicate(pred, e)
}
