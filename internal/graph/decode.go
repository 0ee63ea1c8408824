package graph

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodePayload parses a stats document. gjson walks objects in document
// order, which is the order value keys are charted in.
func DecodePayload(body []byte) (RawPayload, error) {
	if !gjson.ValidBytes(body) {
		return RawPayload{}, errors.New("invalid json")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return RawPayload{}, errors.New("payload is not an object")
	}
	dates := doc.Get("dates")
	if !dates.IsArray() {
		return RawPayload{}, errors.New("payload has no dates array")
	}

	var raw RawPayload
	raw.Y = doc.Get("y").String()
	for _, d := range dates.Array() {
		raw.Dates = append(raw.Dates, d.String())
	}

	series := doc.Get("series")
	if series.Exists() && !series.IsArray() {
		return RawPayload{}, errors.New("payload series is not an array")
	}
	for i, e := range series.Array() {
		ent, err := decodeEntity(e)
		if err != nil {
			return RawPayload{}, fmt.Errorf("series %d: %w", i, err)
		}
		raw.Series = append(raw.Series, ent)
	}
	return raw, nil
}

func decodeEntity(e gjson.Result) (Entity, error) {
	if !e.IsObject() {
		return Entity{}, errors.New("entity is not an object")
	}
	ent := Entity{
		ID:   e.Get("id").String(), // numeric ids read as their literal text
		Name: e.Get("name").String(),
	}
	values := e.Get("values")
	if values.Exists() && !values.IsObject() {
		return Entity{}, fmt.Errorf("entity %q values is not an object", ent.ID)
	}
	var err error
	values.ForEach(func(key, seq gjson.Result) bool {
		if !seq.IsArray() {
			err = fmt.Errorf("entity %q key %q is not an array", ent.ID, key.String())
			return false
		}
		arr := seq.Array()
		nums := make([]float64, len(arr))
		for i, v := range arr {
			if v.Type == gjson.Null {
				nums[i] = Gap
				continue
			}
			nums[i] = v.Float()
		}
		ent.Values = append(ent.Values, KeyedValues{Key: key.String(), Values: nums})
		return true
	})
	if err != nil {
		return Entity{}, err
	}
	return ent, nil
}

// UnmarshalJSON lets RawPayload be used with encoding/json while keeping
// value key order.
func (p *RawPayload) UnmarshalJSON(b []byte) error {
	raw, err := DecodePayload(b)
	if err != nil {
		return err
	}
	*p = raw
	return nil
}
