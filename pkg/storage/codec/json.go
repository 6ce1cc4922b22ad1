package codec

import "encoding/json"

// JSON reads and writes rule records as a top-level JSON array of objects.
type JSON struct{}

// Decode implements Codec. Anything that is not a JSON array of objects,
// including a bare object, scalar, or boolean at the top level, yields
// (nil, false).
func (JSON) Decode(data []byte) (records []Record, ok bool) {
	defer func() {
		if recover() != nil {
			records, ok = nil, false
		}
	}()

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
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

// Encode implements Codec. Output is indented for human-edited policy files;
// field order follows the Record struct, so identical input yields identical
// bytes.
func (JSON) Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Extension implements Codec.
func (JSON) Extension() string {
	return "json"
}
