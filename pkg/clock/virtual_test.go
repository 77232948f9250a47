package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestVirtualClock_NowAndSince(t *testing.T) {
	vc := NewVirtualClock(epoch)
	assert.Equal(t, epoch, vc.Now())

	vc.Advance(90 * time.Second)
	assert.Equal(t, epoch.Add(90*time.Second), vc.Now())
	assert.Equal(t, 90*time.Second, vc.Since(epoch))
}

func TestVirtualClock_AfterFiresOnAdvance(t *testing.T) {
	vc := NewVirtualClock(epoch)
	ch := vc.After(time.Minute)

	select {
	case <-ch:
		t.Fatal("fired before the clock advanced")
	default:
	}

	vc.Advance(30 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired before the deadline")
	default:
	}

	vc.Advance(30 * time.Second)
	select {
	case at := <-ch:
		assert.Equal(t, epoch.Add(time.Minute), at)
	default:
		t.Fatal("did not fire at the deadline")
	}
}

func TestVirtualClock_AfterNonPositiveFiresImmediately(t *testing.T) {
	vc := NewVirtualClock(epoch)

	select {
	case at := <-vc.After(0):
		assert.Equal(t, epoch, at)
	default:
		t.Fatal("zero-duration After must fire immediately")
	}
}

func TestVirtualClock_SetFiresDueWaiters(t *testing.T) {
	vc := NewVirtualClock(epoch)
	first := vc.After(10 * time.Second)
	second := vc.After(time.Hour)

	vc.Set(epoch.Add(time.Minute))

	select {
	case <-first:
	default:
		t.Fatal("expired waiter did not fire on Set")
	}
	select {
	case <-second:
		t.Fatal("future waiter fired early")
	default:
	}
}

func TestVirtualClock_Panics(t *testing.T) {
	vc := NewVirtualClock(epoch)
	require.Panics(t, func() { vc.Advance(-time.Second) })
	require.Panics(t, func() { vc.Set(epoch.Add(-time.Second)) })
}
