package gate

import "time"

// ledger is the per-limit record of admission timestamps, oldest first.
// Expired entries are purged lazily on access, never on a timer. A ledger
// is not safe for concurrent use on its own; the gate's lock guards every
// ledger in the active set.
type ledger struct {
	stamps []time.Time
}

// purge drops every timestamp at or before cutoff, keeping order.
func (l *ledger) purge(cutoff time.Time) {
	kept := l.stamps[:0]
	for _, ts := range l.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.stamps = kept
}

// size reports the number of timestamps currently on record.
func (l *ledger) size() int {
	return len(l.stamps)
}

// oldest returns the earliest recorded timestamp. Only valid when
// size() > 0.
func (l *ledger) oldest() time.Time {
	return l.stamps[0]
}

// record appends an admission timestamp. Timestamps arrive in
// monotonically non-decreasing order because they are taken under the
// gate's clock before release of the record critical section.
func (l *ledger) record(ts time.Time) {
	l.stamps = append(l.stamps, ts)
}
