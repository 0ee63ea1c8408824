package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	raw := samplePayloadRaw(t)

	assert.Equal(t, "Experience", raw.Y)
	assert.Equal(t, []string{"01/01/2024", "01/02/2024", "1/3/2024", "01/04/2024"}, raw.Dates)
	require.Len(t, raw.Series, 3)

	alice := raw.Series[0]
	assert.Equal(t, "a", alice.ID)
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, []string{"xp", "hp", "mp"}, alice.Keys(), "document order is kept")

	bob, _ := raw.Series[1].Value("xp")
	assert.Equal(t, []float64{1000, 1500, Gap, 2500}, bob, "null decodes to a gap")

	assert.Equal(t, "7", raw.Series[2].ID, "numeric ids are read as text")
}

func TestDecodePayloadErrors(t *testing.T) {
	cases := map[string]string{
		"invalid json":     `{"dates": [`,
		"not an object":    `[1, 2]`,
		"no dates":         `{"series": []}`,
		"series not array": `{"dates": [], "series": {}}`,
		"values not array": `{"dates": ["01/01/2024"], "series": [{"id": "a", "values": {"hp": 3}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePayload([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestRawPayloadUnmarshalJSON(t *testing.T) {
	var raw RawPayload
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &raw))
	assert.Equal(t, []string{"xp", "hp", "mp"}, raw.Series[0].Keys())
}
