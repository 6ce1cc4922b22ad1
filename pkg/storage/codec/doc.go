// Package codec converts between raw policy file bytes and flat rule records.
//
// Five codecs cover the supported storage formats: JSON, YAML, XML, TOML, and
// Serialized (Go's native gob encoding). All of them share one contract:
//
//   - Decode never fails loudly. Empty input, malformed input, input whose
//     top-level shape is not a sequence of key-value records, and internal
//     parser faults all yield (nil, false), which the repository layer treats
//     as zero rules. A corrupted policy file must never crash the evaluation
//     path, and it must never be read as "allow everything".
//   - Encode is deterministic: the same record sequence always produces
//     byte-identical output. Optional fields that are absent are omitted from
//     the encoded record, never written as null or empty.
//
// The Serialized codec additionally refuses to materialize anything other
// than plain record data: a gob stream describing any other type is a decode
// failure, which closes the deserialization-to-code-execution attack class.
package codec
