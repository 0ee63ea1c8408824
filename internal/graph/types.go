package graph

import (
	"time"
)

// Gap marks a date at which a series has no sample. Gaps are never drawn.
const Gap = -1.0

// RawPayload mirrors the JSON document served by a stats endpoint.
type RawPayload struct {
	Y      string
	Dates  []string
	Series []Entity
}

// Entity is a named subject (e.g. a player) holding several value sequences.
type Entity struct {
	ID     string
	Name   string
	Values []KeyedValues // document order of the JSON object
}

// KeyedValues is one named sequence of an entity, one sample per date.
type KeyedValues struct {
	Key    string
	Values []float64
}

// Value returns the sequence stored under key.
func (e Entity) Value(key string) ([]float64, bool) {
	for _, kv := range e.Values {
		if kv.Key == key {
			return kv.Values, true
		}
	}
	return nil, false
}

// Keys lists the entity's value keys in document order.
func (e Entity) Keys() []string {
	out := make([]string, len(e.Values))
	for i, kv := range e.Values {
		out[i] = kv.Key
	}
	return out
}

// Series is one date-aligned line of a chart.
type Series struct {
	Name   string    `json:"name"`
	ID     string    `json:"id"`
	Values []float64 `json:"values"`
}

// ChartData is the normalized input of every renderer.
type ChartData struct {
	Title  string      `json:"title"`
	YLabel string      `json:"y"`
	Dates  []time.Time `json:"dates"`
	Series []Series    `json:"series"`
}

// Filter post-processes an assembled ChartData.
type Filter func(ChartData) ChartData

// MissingKeyPolicy decides what happens to an entity lacking the requested
// value key when every entity is charted for one key.
type MissingKeyPolicy int

const (
	// MissingAsGap keeps the entity as a series made entirely of gaps.
	MissingAsGap MissingKeyPolicy = iota
	// MissingDrop leaves the entity out of the chart.
	MissingDrop
)

// Selection picks which entities and value keys become series.
type Selection struct {
	EntityKey  string
	ValueKey   string
	Title      string // overrides the derived title when set
	Filter     Filter // applied last, after title derivation
	MissingKey MissingKeyPolicy
}

// Chart image cache entry
type chartCacheEntry struct {
	createdAt time.Time
	image     []byte
}
