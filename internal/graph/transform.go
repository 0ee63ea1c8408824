package graph

import (
	"fmt"
)

// Transform reshapes a raw payload into chart series according to sel.
//
//   - EntityKey and ValueKey: one series, the entity's ValueKey sequence.
//   - EntityKey only: one series per value key of the entity.
//   - ValueKey only: one series per entity, in payload order.
//   - neither: no series; sel.Filter may still supply some.
//
// The derived title is replaced by sel.Title when set. sel.Filter runs last.
func Transform(raw RawPayload, sel Selection) (ChartData, error) {
	dates, err := parseDates(raw.Dates)
	if err != nil {
		return ChartData{}, err
	}
	data := ChartData{YLabel: raw.Y, Dates: dates}

	var title string
	switch {
	case sel.EntityKey != "" && sel.ValueKey != "":
		ent, err := findEntity(raw.Series, sel.EntityKey)
		if err != nil {
			return ChartData{}, err
		}
		vals, ok := ent.Value(sel.ValueKey)
		if !ok {
			return ChartData{}, fmt.Errorf("entity %q: %w: %q", sel.EntityKey, ErrValueKeyNotFound, sel.ValueKey)
		}
		data.Series = []Series{{Name: sel.ValueKey, ID: sel.ValueKey, Values: vals}}
		title = ent.Name + " " + sel.EntityKey

	case sel.EntityKey != "":
		ent, err := findEntity(raw.Series, sel.EntityKey)
		if err != nil {
			return ChartData{}, err
		}
		data.Series = make([]Series, 0, len(ent.Values))
		for _, kv := range ent.Values {
			data.Series = append(data.Series, Series{Name: kv.Key, ID: kv.Key, Values: kv.Values})
		}
		title = ent.Name + " All"

	case sel.ValueKey != "":
		data.Series = make([]Series, 0, len(raw.Series))
		for _, ent := range raw.Series {
			vals, ok := ent.Value(sel.ValueKey)
			if !ok {
				if sel.MissingKey == MissingDrop {
					continue
				}
				vals = gaps(len(dates))
			}
			data.Series = append(data.Series, Series{Name: ent.Name, ID: ent.ID, Values: vals})
		}
		title = "All " + sel.ValueKey
	}

	if err := checkAligned(data); err != nil {
		return ChartData{}, err
	}

	data.Title = title
	if sel.Title != "" {
		data.Title = sel.Title
	}
	if sel.Filter != nil {
		data = sel.Filter(data)
		if err := checkAligned(data); err != nil {
			return ChartData{}, fmt.Errorf("after filter: %w", err)
		}
	}
	return data, nil
}

// checkAligned requires one sample per date in every series.
func checkAligned(d ChartData) error {
	for _, s := range d.Series {
		if len(s.Values) != len(d.Dates) {
			return fmt.Errorf("series %q has %d values for %d dates: %w", s.Name, len(s.Values), len(d.Dates), ErrMisaligned)
		}
	}
	return nil
}

// findEntity returns the first entity with the given id.
func findEntity(entities []Entity, id string) (Entity, error) {
	for _, e := range entities {
		if e.ID == id {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("%w: %q", ErrEntityNotFound, id)
}

func gaps(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Gap
	}
	return out
}

// isGap reports whether v is the no-sample marker.
func isGap(v float64) bool { return v == Gap }
