package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ErrUnsupportedValue is returned when a parameter value has no XML encoding.
var ErrUnsupportedValue = errors.New("soap: unsupported parameter value")

// DateTimeLayout is the xs:dateTime layout used for time.Time parameters.
const DateTimeLayout = "2006-01-02T15:04:05"

// Param is a named request parameter.
type Param struct {
	Name  string
	Value interface{}
}

// Params is an ordered list of request parameters. Element order on the
// wire follows slice order; repeated names produce repeated elements.
type Params []Param

// Get returns the first value named name.
func (p Params) Get(name string) (interface{}, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// With returns a copy of p with the parameter appended.
func (p Params) With(name string, value interface{}) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	return append(out, Param{Name: name, Value: value})
}

// Without returns a copy of p with every parameter named name removed.
func (p Params) Without(name string) Params {
	out := make(Params, 0, len(p))
	for _, param := range p {
		if param.Name != name {
			out = append(out, param)
		}
	}
	return out
}

// operationElement is the document/literal wrapper element of a request.
type operationElement struct {
	name      string
	namespace string
	params    Params
}

// MarshalXML writes <name xmlns="namespace">params...</name>.
func (op *operationElement) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: op.name}}
	if op.namespace != "" {
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: op.namespace}}
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeParams(e, op.params); err != nil {
		return err
	}
	if err := e.EncodeToken(start.End()); err != nil {
		return err
	}
	return e.Flush()
}

func encodeParams(e *xml.Encoder, params Params) error {
	for _, p := range params {
		if err := encodeParam(e, p.Name, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeParam(e *xml.Encoder, name string, value interface{}) error {
	if list, ok := value.([]interface{}); ok {
		for _, item := range list {
			if err := encodeParam(e, name, item); err != nil {
				return err
			}
		}
		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeValue(e, name, value); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func encodeValue(e *xml.Encoder, name string, value interface{}) error {
	var text string
	switch v := value.(type) {
	case nil:
		return nil
	case Params:
		return encodeParams(e, v)
	case Map:
		return encodeMap(e, v)
	case map[string]interface{}:
		return encodeMap(e, v)
	case string:
		text = v
	case bool:
		text = strconv.FormatBool(v)
	case int:
		text = strconv.Itoa(v)
	case int8:
		text = strconv.FormatInt(int64(v), 10)
	case int16:
		text = strconv.FormatInt(int64(v), 10)
	case int32:
		text = strconv.FormatInt(int64(v), 10)
	case int64:
		text = strconv.FormatInt(v, 10)
	case uint:
		text = strconv.FormatUint(uint64(v), 10)
	case uint8:
		text = strconv.FormatUint(uint64(v), 10)
	case uint16:
		text = strconv.FormatUint(uint64(v), 10)
	case uint32:
		text = strconv.FormatUint(uint64(v), 10)
	case uint64:
		text = strconv.FormatUint(v, 10)
	case float32:
		text = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		text = v.Format(DateTimeLayout)
	case fmt.Stringer:
		text = v.String()
	default:
		return fmt.Errorf("%w: %s has type %T", ErrUnsupportedValue, name, value)
	}
	return e.EncodeToken(xml.CharData(text))
}

// encodeMap writes map entries with keys sorted so the request is stable.
func encodeMap(e *xml.Encoder, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := encodeParam(e, k, m[k]); err != nil {
			return err
		}
	}
	return nil
}
