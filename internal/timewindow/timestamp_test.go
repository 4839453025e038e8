package timewindow

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnsetByDefault(t *testing.T) {
	var ts Timestamp
	assert.False(t, ts.IsSet())
	assert.True(t, ts.Time().IsZero())
}

func TestTimestamp_At(t *testing.T) {
	now := time.Date(2024, 6, 1, 21, 30, 0, 0, time.UTC)
	ts := At(now)
	assert.True(t, ts.IsSet())
	assert.Equal(t, now, ts.Time())
}

func TestTimestamp_After(t *testing.T) {
	early := At(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	late := At(time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC))

	assert.True(t, late.After(early))
	assert.False(t, early.After(late))
	assert.False(t, early.After(early))

	// Set beats unset, unset beats nothing
	assert.True(t, early.After(Unset()))
	assert.False(t, Unset().After(early))
	assert.False(t, Unset().After(Unset()))
}

func TestTimestamp_Equal(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, At(now).Equal(At(now)))
	assert.True(t, Unset().Equal(Unset()))
	assert.False(t, At(now).Equal(Unset()))
	assert.False(t, At(now).Equal(At(now.Add(time.Second))))
}

func TestTimestamp_JSONRoundtrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 21, 30, 15, 123456789, time.UTC)
	data, err := json.Marshal(At(now))
	require.NoError(t, err)

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.IsSet())
	assert.True(t, decoded.Time().Equal(now))
}

func TestTimestamp_JSONUnsetMarshalsAsNull(t *testing.T) {
	data, err := json.Marshal(Unset())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.IsSet())
}

func TestTimestamp_JSONMalformedDecodesAsUnset(t *testing.T) {
	for _, raw := range []string{`"not-a-time"`, `""`, `"2024-13-45T99:99:99Z"`} {
		var decoded Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &decoded), raw)
		assert.False(t, decoded.IsSet(), raw)
	}
}

func TestTimestamp_UnixNanoRoundtrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 21, 30, 15, 123456789, time.UTC)
	ts := FromUnixNano(At(now).UnixNano())
	assert.True(t, ts.IsSet())
	assert.True(t, ts.Time().Equal(now))

	assert.Equal(t, int64(0), Unset().UnixNano())
	assert.False(t, FromUnixNano(0).IsSet())
}
