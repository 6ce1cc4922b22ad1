package codec

import "gopkg.in/yaml.v3"

// YAML reads and writes rule records as a top-level YAML sequence of mappings.
type YAML struct{}

// Decode implements Codec. yaml.v3 reports malformed documents as errors and
// known pathological inputs as panics; both are contained here and mapped to
// (nil, false). An empty or whitespace-only document decodes to a nil
// sequence, which is also treated as absent.
func (YAML) Decode(data []byte) (records []Record, ok bool) {
	defer func() {
		if recover() != nil {
			records, ok = nil, false
		}
	}()

	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	records = make([]Record, 0, len(raw))
	for _, m := range raw {
		rec, valid := recordFromMap(m)
		if !valid {
			continue
		}
		records = append(records, rec)
	}
	return records, true
}

// Encode implements Codec.
func (YAML) Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return yaml.Marshal(records)
}

// Extension implements Codec.
func (YAML) Extension() string {
	return "yaml"
}
