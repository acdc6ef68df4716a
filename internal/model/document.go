package model

import (
	"encoding/json"
)

// Extra holds client-supplied keys that have no dedicated field. They are
// persisted next to the known columns and flattened back into the JSON
// document on output, so the web client gets back what it sent.
type Extra map[string]any

// keySet builds a lookup set of the JSON keys a type owns.
func keySet(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// decodeClient decodes a client document into v. Keys in stamped are
// dropped first, so a malformed server-owned value never fails the request.
// Keys outside known are returned as extras.
func decodeClient(data []byte, known, stamped map[string]struct{}, v any) (Extra, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var out Extra
	for k, b := range raw {
		if _, ok := stamped[k]; ok {
			delete(raw, k)
			continue
		}
		if _, ok := known[k]; ok {
			continue
		}
		var val any
		if err := json.Unmarshal(b, &val); err != nil {
			return nil, err
		}
		if out == nil {
			out = Extra{}
		}
		out[k] = val
	}
	kept, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(kept, v); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeExtra adds extra keys to an encoded JSON object. Keys already
// present in base win.
func mergeExtra(base []byte, extra Extra) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := doc[k]; ok {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		doc[k] = b
	}
	return json.Marshal(doc)
}

// Clone returns a shallow copy so callers can hand the map to a store
// without sharing it.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
