package codec

import (
	"bytes"
	"encoding/gob"
)

// Serialized reads and writes rule records in Go's native gob encoding, under
// the .ser extension.
//
// Decode only ever materializes serializedRecord values. gob refuses to
// decode a stream describing any other type into that target, so a payload
// smuggling a typed object is a plain decode failure and no attacker-chosen
// type is ever constructed. The refusal is indistinguishable from any other
// malformed payload, which keeps probing uninformative.
type Serialized struct{}

// serializedRecord is the concrete gob wire type. gob omits zero-value
// fields on its own, which gives optional-field omission for free.
type serializedRecord struct {
	Subject  string
	Resource string
	Action   string
	Effect   string
	Priority int
	Domain   string
}

// Decode implements Codec. gob is known to panic on some corrupt streams, so
// the parse runs under a recover guard; the guard is a deferred function and
// therefore restored on every exit path.
func (Serialized) Decode(data []byte) (records []Record, ok bool) {
	defer func() {
		if recover() != nil {
			records, ok = nil, false
		}
	}()

	var raw []serializedRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, false
	}

	records = make([]Record, 0, len(raw))
	for _, r := range raw {
		if r.Subject == "" || r.Action == "" {
			continue
		}
		if r.Effect != "Allow" && r.Effect != "Deny" {
			continue
		}
		records = append(records, Record{
			Subject:  r.Subject,
			Resource: r.Resource,
			Action:   r.Action,
			Effect:   r.Effect,
			Priority: r.Priority,
			Domain:   r.Domain,
		})
	}
	return records, true
}

// Encode implements Codec. Field order is fixed by the struct definition, so
// output is deterministic for a given record sequence.
func (Serialized) Encode(records []Record) ([]byte, error) {
	raw := make([]serializedRecord, 0, len(records))
	for _, rec := range records {
		raw = append(raw, serializedRecord{
			Subject:  rec.Subject,
			Resource: rec.Resource,
			Action:   rec.Action,
			Effect:   rec.Effect,
			Priority: rec.Priority,
			Domain:   rec.Domain,
		})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension implements Codec.
func (Serialized) Extension() string {
	return "ser"
}
