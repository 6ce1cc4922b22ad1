package codec

import (
	"bytes"
	"encoding/gob"
	"testing"
)

func gobEncode(t *testing.T, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("gob encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestSerializedRejectsForeignTopLevelType(t *testing.T) {
	// A payload describing anything other than a record slice must decode to
	// zero rules, never to a reconstructed object.
	payloads := map[string][]byte{
		"map":    gobEncode(t, map[string]string{"cmd": "/bin/sh"}),
		"string": gobEncode(t, "system('rm -rf /')"),
		"int":    gobEncode(t, 42),
		"struct": gobEncode(t, struct{ Cmd string }{Cmd: "/bin/sh"}),
	}

	for name, payload := range payloads {
		records, ok := (Serialized{}).Decode(payload)
		if ok {
			t.Errorf("%s: Decode() ok = true, want false", name)
		}
		if len(records) != 0 {
			t.Errorf("%s: Decode() returned %d records, want 0", name, len(records))
		}
	}
}

func TestSerializedRejectsConflictingFieldTypes(t *testing.T) {
	// Same field name, incompatible type: the stream cannot decode into the
	// record shape.
	type lookalike struct {
		Subject  int
		Action   string
		Effect   string
		Priority int
	}
	payload := gobEncode(t, []lookalike{{Subject: 1, Action: "read", Effect: "Allow", Priority: 1}})

	if _, ok := (Serialized{}).Decode(payload); ok {
		t.Error("Decode() ok = true for conflicting field types, want false")
	}
}

func TestSerializedForeignFieldsMaterializeNothing(t *testing.T) {
	// A slice of structs whose fields do not overlap the record shape
	// decodes structurally but yields no usable records: nothing the
	// attacker chose survives.
	type smuggled struct {
		Payload string
		Handler string
	}
	payload := gobEncode(t, []smuggled{{Payload: "evil", Handler: "exec"}})

	records, _ := (Serialized{}).Decode(payload)
	if len(records) != 0 {
		t.Errorf("Decode() returned %d records, want 0", len(records))
	}
}

func TestSerializedTruncatedStream(t *testing.T) {
	full, err := (Serialized{}).Encode(sampleRecords())
	if err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}

	for cut := 1; cut < len(full); cut += 7 {
		if _, ok := (Serialized{}).Decode(full[:cut]); ok {
			t.Fatalf("Decode() ok = true for stream truncated at %d bytes, want false", cut)
		}
	}
}
