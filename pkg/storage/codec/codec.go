package codec

// Record is the flat wire schema for a single access-control rule. It is the
// shape every codec reads and writes, independent of the storage format.
//
// Empty strings in Resource and Domain mean "absent": the rule applies to any
// resource or any domain, and the field is omitted when encoded.
type Record struct {
	// Subject is the principal identifier. Required.
	Subject string `json:"subject" yaml:"subject" toml:"subject"`

	// Resource is the object identifier. Optional.
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty" toml:"resource,omitempty"`

	// Action names the governed operation. Required.
	Action string `json:"action" yaml:"action" toml:"action"`

	// Effect is the verdict, "Allow" or "Deny". Required.
	Effect string `json:"effect" yaml:"effect" toml:"effect"`

	// Priority orders the rule during evaluation. Required.
	Priority int `json:"priority" yaml:"priority" toml:"priority"`

	// Domain optionally scopes the rule to a tenant or realm.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty" toml:"domain,omitempty"`
}

// Codec converts between raw bytes and rule record sequences for one storage
// format.
type Codec interface {
	// Decode parses raw bytes into rule records. The second return value is
	// false when the input could not be interpreted as a record sequence for
	// any reason; callers treat that as zero rules. Decode never panics and
	// never returns an error.
	Decode(data []byte) ([]Record, bool)

	// Encode serializes records deterministically. Absent optional fields
	// are omitted from the output.
	Encode(records []Record) ([]byte, error)

	// Extension returns the file extension for this format, without the dot.
	Extension() string
}

// recordFromMap coerces a decoded key-value map into a Record. It returns
// false when a required field is missing or a field has the wrong type, or
// when the effect is not one of the two defined verdicts.
func recordFromMap(m map[string]interface{}) (Record, bool) {
	subject, ok := stringField(m, "subject")
	if !ok || subject == "" {
		return Record{}, false
	}

	action, ok := stringField(m, "action")
	if !ok || action == "" {
		return Record{}, false
	}

	effect, ok := stringField(m, "effect")
	if !ok || (effect != "Allow" && effect != "Deny") {
		return Record{}, false
	}

	priority, ok := intField(m, "priority")
	if !ok {
		return Record{}, false
	}

	// Optional fields: absent is fine, wrong type is not.
	resource, ok := optionalStringField(m, "resource")
	if !ok {
		return Record{}, false
	}
	domain, ok := optionalStringField(m, "domain")
	if !ok {
		return Record{}, false
	}

	return Record{
		Subject:  subject,
		Resource: resource,
		Action:   action,
		Effect:   effect,
		Priority: priority,
		Domain:   domain,
	}, true
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	v, present := m[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func optionalStringField(m map[string]interface{}, key string) (string, bool) {
	v, present := m[key]
	if !present || v == nil {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}

// intField accepts the integer representations the different parsers produce:
// JSON gives float64, YAML gives int, TOML gives int64.
func intField(m map[string]interface{}, key string) (int, bool) {
	v, present := m[key]
	if !present {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
