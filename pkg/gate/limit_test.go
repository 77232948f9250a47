package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimit(t *testing.T) {
	l, err := NewLimit(10, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 10, l.MaxRequests())
	assert.Equal(t, time.Second, l.Window())
	assert.Equal(t, "10/1s", l.String())
}

func TestNewLimit_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		max    int
		window time.Duration
	}{
		{"zero max", 0, time.Second},
		{"negative max", -1, time.Second},
		{"zero window", 5, 0},
		{"negative window", 5, -time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLimit(tc.max, tc.window)
			assert.Error(t, err)
		})
	}
}

func TestMustLimit_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustLimit(0, time.Second) })
}

// Equal field values do not make equal limits; every constructed
// descriptor has its own identity.
func TestLimit_IdentityNotValue(t *testing.T) {
	a := MustLimit(3, time.Second)
	b := MustLimit(3, time.Second)
	assert.NotSame(t, a, b)
}
