package graph

import (
	"fmt"
	"strings"
)

// Properties are the raw key/value properties of one graph node or relationship.
// Annotation properties arrive either as scalars or as lists, depending on the
// cardinality the ontology loader chose; accessors hide the difference.
type Properties map[string]any

// Has reports whether key is present with a non-nil value.
func (p Properties) Has(key string) bool {
	if p == nil {
		return false
	}
	v, ok := p[key]
	return ok && v != nil
}

// String returns the scalar value of key, or the first non-empty element when
// the value is a list. Missing keys yield "".
func (p Properties) String(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		for _, s := range v {
			if s != "" {
				return s
			}
		}
		return ""
	case []any:
		for _, e := range v {
			if s := toString(e); s != "" {
				return s
			}
		}
		return ""
	default:
		return toString(v)
	}
}

// Strings returns the value of key as a list with empty elements dropped.
// A scalar value becomes a single-element list.
func (p Properties) Strings(key string) []string {
	if p == nil {
		return nil
	}
	switch v := p[key].(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s := toString(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := toString(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// IRI is shorthand for String("iri").
func (p Properties) IRI() string { return p.String("iri") }

// Label is shorthand for String("label").
func (p Properties) Label() string { return p.String("label") }

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
