// Package stats aggregates admission outcomes for reporting. It observes
// the gate; nothing here feeds back into admission decisions, and ledger
// state itself is never stored.
package stats

import (
	"context"
	"fmt"

	"github.com/sluice-go/sluice/pkg/gate"
)

// Counters holds cumulative admission outcome counts.
type Counters struct {
	Admitted int64 `json:"admitted"`
	Delayed  int64 `json:"delayed"`
	Rejected int64 `json:"rejected"`
}

// Store aggregates gate events. Implementations must be safe for
// concurrent use.
type Store interface {
	// Record folds one gate event into the aggregate.
	Record(ctx context.Context, ev gate.Event) error

	// Totals returns cumulative counts since the store was created.
	Totals(ctx context.Context) (Counters, error)
}

// limitKey renders the limit attached to an event as "<max>/<window>".
func limitKey(ev gate.Event) string {
	return fmt.Sprintf("%d/%s", ev.MaxRequests, ev.Window)
}
