package recorder

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluice-go/sluice/pkg/gate"
)

func sampleEvent() gate.Event {
	return gate.Event{
		Kind:        gate.EventRejected,
		MaxRequests: 2,
		Window:      time.Second,
		At:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFromEvent_AssignsIDs(t *testing.T) {
	a := FromEvent(sampleEvent())
	b := FromEvent(sampleEvent())

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, gate.EventRejected, a.Kind)
	assert.Equal(t, 2, a.MaxRequests)
}

func TestRecorder_RecordAndExport(t *testing.T) {
	rec := New(nil)

	require.NoError(t, rec.Record(FromEvent(sampleEvent())))
	require.NoError(t, rec.Record(FromEvent(sampleEvent())))
	assert.Equal(t, 2, rec.Len())

	var buf bytes.Buffer
	require.NoError(t, rec.ExportJSON(&buf))

	loaded, err := LoadJSON(&buf)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, rec.Records()[0].ID, loaded[0].ID)
}

func TestRecorder_StreamsNDJSON(t *testing.T) {
	var buf bytes.Buffer
	rec := New(&buf)

	require.NoError(t, rec.Record(FromEvent(sampleEvent())))
	require.NoError(t, rec.Record(FromEvent(sampleEvent())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestLoadJSON_Malformed(t *testing.T) {
	_, err := LoadJSON(strings.NewReader("{not-json"))
	assert.Error(t, err)
}
