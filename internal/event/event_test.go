package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratesUniqueIDs(t *testing.T) {
	a := New("task.created", nil)
	b := New("task.created", nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestNewCopiesPayload(t *testing.T) {
	payload := map[string]any{"feature": "auth"}
	ev := New("task.created", payload)

	payload["feature"] = "tampered"
	got, ok := ev.Field("feature")
	require.True(t, ok)
	assert.Equal(t, "auth", got)
}

func TestFieldStringForm(t *testing.T) {
	ev := New("task.created", map[string]any{"count": 3, "name": "x"})

	count, ok := ev.Field("count")
	require.True(t, ok)
	assert.Equal(t, "3", count)

	_, ok = ev.Field("missing")
	assert.False(t, ok)
}

func TestMarshalJSONFlattensPayload(t *testing.T) {
	ev := New("task.created", map[string]any{
		"feature": "auth",
		// A malicious payload must not shadow the reserved keys.
		"event_type": "spoofed",
	})

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "task.created", out["event_type"])
	assert.Equal(t, ev.ID, out["event_id"])
	assert.Equal(t, "auth", out["feature"])
	assert.NotEmpty(t, out["timestamp"])
}
