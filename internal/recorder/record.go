package recorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/sluice-go/sluice/pkg/gate"
)

// AdmissionRecord is one captured gate outcome, ready for export and for
// streaming to the dashboard.
type AdmissionRecord struct {
	ID          string         `json:"id"`
	Kind        gate.EventKind `json:"kind"`
	MaxRequests int            `json:"max_requests,omitempty"`
	Window      time.Duration  `json:"window,omitempty"`
	Wait        time.Duration  `json:"wait,omitempty"`
	At          time.Time      `json:"at"`
}

// FromEvent stamps a gate event with a fresh record id.
func FromEvent(ev gate.Event) AdmissionRecord {
	return AdmissionRecord{
		ID:          uuid.NewString(),
		Kind:        ev.Kind,
		MaxRequests: ev.MaxRequests,
		Window:      ev.Window,
		Wait:        ev.Wait,
		At:          ev.At,
	}
}
