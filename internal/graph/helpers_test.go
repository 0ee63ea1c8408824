package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "y": "Experience",
  "dates": ["01/01/2024", "01/02/2024", "1/3/2024", "01/04/2024"],
  "series": [
    {"id": "a", "name": "Alice", "values": {"xp": [100, 200, 300, 400], "hp": [10, -1, 30, 40], "mp": [5, 5, 5, 5]}},
    {"id": "b", "name": "Bob", "values": {"xp": [1000, 1500, null, 2500], "mp": [1, 2, 3, 4]}},
    {"id": 7, "name": "Carol", "values": {"hp": [7, 7, 7, 7]}}
  ]
}`

func samplePayloadRaw(t *testing.T) RawPayload {
	t.Helper()
	raw, err := DecodePayload([]byte(samplePayload))
	require.NoError(t, err)
	return raw
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func days(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = day(2024, time.January, 1+i)
	}
	return out
}
