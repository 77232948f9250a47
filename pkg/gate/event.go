package gate

import "time"

// EventKind classifies an admission event.
type EventKind string

const (
	// EventAdmitted fires once per successful Perform, after the action
	// completed and the shared timestamp was recorded.
	EventAdmitted EventKind = "admitted"
	// EventDelayed fires when a limit is at capacity and the caller is
	// about to suspend for the computed wait.
	EventDelayed EventKind = "delayed"
	// EventRejected fires when a limit is still at capacity after the
	// wait cycle and the call fails.
	EventRejected EventKind = "rejected"
)

// Event describes one admission outcome. Events are delivered to the
// observer installed with WithObserver, outside the gate's lock, so a
// slow observer delays only its own caller.
type Event struct {
	Kind        EventKind     `json:"kind"`
	MaxRequests int           `json:"max_requests,omitempty"`
	Window      time.Duration `json:"window,omitempty"`
	Wait        time.Duration `json:"wait,omitempty"`
	At          time.Time     `json:"at"`
}

func limitEvent(kind EventKind, l *Limit, wait time.Duration, at time.Time) Event {
	return Event{
		Kind:        kind,
		MaxRequests: l.maxRequests,
		Window:      l.window,
		Wait:        wait,
		At:          at,
	}
}
