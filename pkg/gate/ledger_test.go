package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLedger_PurgeKeepsOrder(t *testing.T) {
	var led ledger
	led.record(epoch)
	led.record(epoch.Add(10 * time.Second))
	led.record(epoch.Add(20 * time.Second))

	led.purge(epoch.Add(5 * time.Second))

	assert.Equal(t, 2, led.size())
	assert.Equal(t, epoch.Add(10*time.Second), led.oldest())
}

// A timestamp exactly at the cutoff is expired; only strictly newer
// entries survive.
func TestLedger_PurgeBoundary(t *testing.T) {
	var led ledger
	led.record(epoch)

	led.purge(epoch)
	assert.Equal(t, 0, led.size())
}

func TestLedger_PurgeAll(t *testing.T) {
	var led ledger
	for i := 0; i < 5; i++ {
		led.record(epoch.Add(time.Duration(i) * time.Second))
	}

	led.purge(epoch.Add(time.Minute))
	assert.Equal(t, 0, led.size())

	// Still usable after draining.
	led.record(epoch.Add(2 * time.Minute))
	assert.Equal(t, 1, led.size())
}

func TestLedger_PurgeEmpty(t *testing.T) {
	var led ledger
	led.purge(epoch)
	assert.Equal(t, 0, led.size())
}
