package soap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoEnvelope is returned when a response is well-formed XML but is not
// a SOAP envelope with a body.
var ErrNoEnvelope = errors.New("soap: response is not a SOAP envelope")

// Map is a decoded XML element. Child elements with children of their own
// decode to a Map, leaves decode to their text, and repeated sibling tags
// decode to a []interface{}.
type Map map[string]interface{}

// Map returns the child mapping under key, or nil when key is missing or
// holds something else.
func (m Map) Map(key string) Map {
	return asMap(m[key])
}

// String returns the text under key, or "" when key is missing or is not a
// leaf.
func (m Map) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Bool reports whether the value under key is true or the text "true".
func (m Map) Bool(key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

// Path walks nested mappings and returns the value at the end of keys.
func (m Map) Path(keys ...string) (interface{}, bool) {
	var cur interface{} = m
	for _, k := range keys {
		next := asMap(cur)
		if next == nil {
			return nil, false
		}
		v, ok := next[k]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// AsMap converts a decoded value to a Map. It returns nil for anything that
// is not a mapping.
func AsMap(v interface{}) Map {
	return asMap(v)
}

func asMap(v interface{}) Map {
	switch m := v.(type) {
	case Map:
		return m
	case map[string]interface{}:
		return Map(m)
	}
	return nil
}

// IsEmpty reports whether a decoded value carries no data: nil, blank text
// or an empty mapping or list.
func IsEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case Map:
		return len(x) == 0
	case map[string]interface{}:
		return len(x) == 0
	case []interface{}:
		return len(x) == 0
	}
	return false
}

// Maps normalises a value that the service returns either as one record or
// as a list of records. Entries that are not mappings are skipped.
func Maps(v interface{}) []Map {
	if m := asMap(v); m != nil {
		return []Map{m}
	}
	var out []Map
	switch list := v.(type) {
	case []interface{}:
		for _, item := range list {
			if m := asMap(item); m != nil {
				out = append(out, m)
			}
		}
	case []Map:
		out = append(out, list...)
	}
	return out
}

func decodeElement(el *etree.Element) interface{} {
	children := el.ChildElements()
	if len(children) == 0 {
		return el.Text()
	}
	m := make(Map, len(children))
	for _, c := range children {
		v := decodeElement(c)
		prev, seen := m[c.Tag]
		if !seen {
			m[c.Tag] = v
			continue
		}
		if list, ok := prev.([]interface{}); ok {
			m[c.Tag] = append(list, v)
			continue
		}
		m[c.Tag] = []interface{}{prev, v}
	}
	return m
}

func childElement(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func childText(el *etree.Element, path ...string) string {
	for _, tag := range path {
		if el = childElement(el, tag); el == nil {
			return ""
		}
	}
	return strings.TrimSpace(el.Text())
}

// decodeEnvelope returns the content of the first body element. Faults are
// returned as *SOAPFault errors.
func decodeEnvelope(data []byte) (interface{}, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("cannot decode: %w", err)
	}
	env := doc.Root()
	if env == nil || env.Tag != "Envelope" {
		return nil, ErrNoEnvelope
	}
	body := childElement(env, "Body")
	if body == nil {
		return nil, ErrNoEnvelope
	}
	children := body.ChildElements()
	if len(children) == 0 {
		return nil, nil
	}

	content := children[0]
	if content.Tag == "Fault" {
		return nil, decodeFault(content)
	}
	return decodeElement(content), nil
}

func decodeFault(el *etree.Element) *SOAPFault {
	fault := &SOAPFault{
		Code:   childText(el, "faultcode"),
		String: childText(el, "faultstring"),
		Actor:  childText(el, "faultactor"),
	}
	// SOAP 1.2
	if fault.Code == "" {
		fault.Code = childText(el, "Code", "Value")
	}
	if fault.String == "" {
		fault.String = childText(el, "Reason", "Text")
	}
	if detail := childElement(el, "detail"); detail != nil {
		fault.Detail = decodeElement(detail)
	} else if detail := childElement(el, "Detail"); detail != nil {
		fault.Detail = decodeElement(detail)
	}
	return fault
}
