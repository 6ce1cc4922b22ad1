package codec

import (
	"encoding/xml"
	"strconv"
)

// XML reads and writes rule records as a <rules> document containing one
// <rule> element per record.
type XML struct{}

// xmlRule mirrors Record for the XML layout. Priority stays a string so one
// rule with a malformed priority drops only that rule, not the document.
type xmlRule struct {
	Subject  string `xml:"subject"`
	Resource string `xml:"resource,omitempty"`
	Action   string `xml:"action"`
	Effect   string `xml:"effect"`
	Priority string `xml:"priority"`
	Domain   string `xml:"domain,omitempty"`
}

type xmlDocument struct {
	XMLName xml.Name  `xml:"rules"`
	Rules   []xmlRule `xml:"rule"`
}

// Decode implements Codec. A document whose root element is not <rules>, or
// that is not well-formed XML, yields (nil, false).
func (XML) Decode(data []byte) (records []Record, ok bool) {
	defer func() {
		if recover() != nil {
			records, ok = nil, false
		}
	}()

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, false
	}

	records = make([]Record, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		if r.Subject == "" || r.Action == "" {
			continue
		}
		if r.Effect != "Allow" && r.Effect != "Deny" {
			continue
		}
		priority, err := strconv.Atoi(r.Priority)
		if err != nil {
			continue
		}
		records = append(records, Record{
			Subject:  r.Subject,
			Resource: r.Resource,
			Action:   r.Action,
			Effect:   r.Effect,
			Priority: priority,
			Domain:   r.Domain,
		})
	}
	return records, true
}

// Encode implements Codec.
func (XML) Encode(records []Record) ([]byte, error) {
	doc := xmlDocument{Rules: make([]xmlRule, 0, len(records))}
	for _, rec := range records {
		doc.Rules = append(doc.Rules, xmlRule{
			Subject:  rec.Subject,
			Resource: rec.Resource,
			Action:   rec.Action,
			Effect:   rec.Effect,
			Priority: strconv.Itoa(rec.Priority),
			Domain:   rec.Domain,
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(xml.Header)+len(data)+1)
	out = append(out, []byte(xml.Header)...)
	out = append(out, data...)
	out = append(out, '\n')
	return out, nil
}

// Extension implements Codec.
func (XML) Extension() string {
	return "xml"
}
