package codec

import "github.com/pelletier/go-toml/v2"

// TOML reads and writes rule records as a document with one [[rules]] array
// of tables. TOML has no top-level array, so the records live under a single
// well-known key.
type TOML struct{}

type tomlDocument struct {
	Rules []Record `toml:"rules"`
}

type rawTOMLDocument struct {
	Rules []map[string]interface{} `toml:"rules"`
}

// Decode implements Codec. A document without a rules array, or one that is
// not valid TOML, yields (nil, false).
func (TOML) Decode(data []byte) (records []Record, ok bool) {
	defer func() {
		if recover() != nil {
			records, ok = nil, false
		}
	}()

	var doc rawTOMLDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	if doc.Rules == nil {
		return nil, false
	}

	records = make([]Record, 0, len(doc.Rules))
	for _, m := range doc.Rules {
		rec, valid := recordFromMap(m)
		if !valid {
			continue
		}
		records = append(records, rec)
	}
	return records, true
}

// Encode implements Codec.
func (TOML) Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return toml.Marshal(tomlDocument{Rules: records})
}

// Extension implements Codec.
func (TOML) Extension() string {
	return "toml"
}
