// Package propertydetails validates semi-structured listing details against
// the residential and commercial schemas.
//
// Known fields must hold strings and known sections must hold objects.
// Everything the schema does not name is kept verbatim in Extra bags and
// written back out unchanged.
package propertydetails

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"realtysite/internal/domain"
)

type Category string

const (
	CategoryResidential Category = "RESIDENTIAL"
	CategoryCommercial  Category = "COMMERCIAL"
)

func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryResidential:
		return CategoryResidential, true
	case CategoryCommercial:
		return CategoryCommercial, true
	}
	return "", false
}

// Details is a validated payload; exactly one of Residential or Commercial is set.
type Details struct {
	Category    Category
	Residential *Residential
	Commercial  *Commercial
}

// MarshalJSON writes the payload itself, known fields merged with passthrough ones.
func (d Details) MarshalJSON() ([]byte, error) {
	var v reflect.Value
	switch {
	case d.Residential != nil:
		v = reflect.ValueOf(d.Residential).Elem()
	case d.Commercial != nil:
		v = reflect.ValueOf(d.Commercial).Elem()
	default:
		return []byte("{}"), nil
	}
	return json.Marshal(encode(v))
}

// Validate checks payload against the schema of cat.
func Validate(cat Category, payload []byte) (Details, error) {
	raw, err := object(payload)
	if err != nil {
		return Details{}, domain.Validation("property details must be a JSON object")
	}
	d := Details{Category: cat}
	switch cat {
	case CategoryResidential:
		d.Residential = &Residential{}
		err = decode(raw, reflect.ValueOf(d.Residential).Elem(), "")
	case CategoryCommercial:
		d.Commercial = &Commercial{}
		err = decode(raw, reflect.ValueOf(d.Commercial).Elem(), "")
	default:
		return Details{}, domain.Validation("unknown property category %q", cat)
	}
	if err != nil {
		return Details{}, err
	}
	return d, nil
}

var (
	stringPtr = reflect.TypeOf((*string)(nil))
	extraType = reflect.TypeOf(map[string]json.RawMessage(nil))
)

type jsonKind int

const (
	kindOther jsonKind = iota
	kindNull
	kindString
	kindObject
)

func kindOf(v json.RawMessage) jsonKind {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return kindOther
	}
	switch v[0] {
	case 'n':
		return kindNull
	case '"':
		return kindString
	case '{':
		return kindObject
	}
	return kindOther
}

func object(b []byte) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.Validation("null payload")
	}
	return m, nil
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// decode fills the struct dst from raw. Fields typed *string are leaves,
// pointers to structs are sections, and the Extra map collects the rest.
func decode(raw map[string]json.RawMessage, dst reflect.Value, prefix string) error {
	t := dst.Type()
	known := make(map[string]bool, t.NumField())
	var extra reflect.Value

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type == extraType {
			extra = dst.Field(i)
			continue
		}
		name := jsonName(f)
		known[name] = true
		v, ok := raw[name]
		if !ok || kindOf(v) == kindNull {
			continue
		}
		path := joinPath(prefix, name)

		if f.Type == stringPtr {
			if kindOf(v) != kindString {
				return domain.SchemaViolation(path, "expected a string value")
			}
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return domain.SchemaViolation(path, "malformed string value")
			}
			dst.Field(i).Set(reflect.ValueOf(&s))
			continue
		}

		if kindOf(v) != kindObject {
			return domain.SchemaViolation(path, "expected an object")
		}
		sub, err := object(v)
		if err != nil {
			return domain.SchemaViolation(path, "malformed object")
		}
		section := reflect.New(f.Type.Elem())
		if err := decode(sub, section.Elem(), path); err != nil {
			return err
		}
		dst.Field(i).Set(section)
	}

	for k, v := range raw {
		if known[k] || !extra.IsValid() {
			continue
		}
		if extra.IsNil() {
			extra.Set(reflect.MakeMap(extraType))
		}
		extra.SetMapIndex(reflect.ValueOf(k), reflect.ValueOf(v))
	}
	return nil
}

func encode(v reflect.Value) map[string]any {
	out := map[string]any{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type != extraType {
			continue
		}
		for k, raw := range v.Field(i).Interface().(map[string]json.RawMessage) {
			out[k] = raw
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := v.Field(i)
		if f.Type == extraType || fv.IsNil() {
			continue
		}
		if f.Type == stringPtr {
			out[jsonName(f)] = fv.Elem().String()
			continue
		}
		out[jsonName(f)] = encode(fv.Elem())
	}
	return out
}
