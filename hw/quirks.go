package hw

import (
	"fmt"
	"maps"
	"slices"
)

type QuirkKind uint8

const (
	QuirkBool QuirkKind = iota
	QuirkInt
	QuirkString
)

func (k QuirkKind) String() string {
	switch k {
	case QuirkBool:
		return "bool"
	case QuirkInt:
		return "int"
	case QuirkString:
		return "string"
	}
	return fmt.Sprintf("QuirkKind(%d)", k)
}

// A QuirkSpec declares a quirk understood by a component variant.
type QuirkSpec struct {
	Name    string
	Kind    QuirkKind
	Default any
}

// Quirks is an immutable table of per-ROM behavioral overrides. The zero
// value is an empty table.
type Quirks struct {
	m map[string]any
}

// NewQuirks merges tables, later tables overriding earlier ones. Values must
// be booleans, integers or strings.
func NewQuirks(tables ...map[string]any) (Quirks, error) {
	m := make(map[string]any)
	for _, t := range tables {
		for k, v := range t {
			nv, err := normQuirk(v)
			if err != nil {
				return Quirks{}, &ConfigError{Component: "quirks", Err: fmt.Errorf("quirk %q: %w", k, err)}
			}
			m[k] = nv
		}
	}
	return Quirks{m: m}, nil
}

func normQuirk(v any) (any, error) {
	switch n := v.(type) {
	case bool, string, int64:
		return v, nil
	case int:
		return int64(n), nil
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func kindOf(v any) QuirkKind {
	switch v.(type) {
	case bool:
		return QuirkBool
	case int64:
		return QuirkInt
	}
	return QuirkString
}

func (q Quirks) Len() int { return len(q.m) }

func (q Quirks) Lookup(name string) (any, bool) {
	v, ok := q.m[name]
	return v, ok
}

func (q Quirks) Bool(name string) bool {
	b, _ := q.m[name].(bool)
	return b
}

func (q Quirks) Int(name string) int64 {
	n, _ := q.m[name].(int64)
	return n
}

func (q Quirks) String(name string) string {
	s, _ := q.m[name].(string)
	return s
}

// Names returns the quirk names, sorted.
func (q Quirks) Names() []string {
	return slices.Sorted(maps.Keys(q.m))
}

// Table returns a copy of the quirk table.
func (q Quirks) Table() map[string]any {
	return maps.Clone(q.m)
}

// withDefaults returns the view of q a component declaring specs sees:
// declared quirks missing from q take their default value.
func (q Quirks) withDefaults(specs []QuirkSpec) Quirks {
	m := maps.Clone(q.m)
	if m == nil {
		m = make(map[string]any)
	}
	for _, s := range specs {
		if _, ok := m[s.Name]; !ok && s.Default != nil {
			m[s.Name], _ = normQuirk(s.Default)
		}
	}
	return Quirks{m: m}
}

// validate checks every quirk of q is declared by one of specs with the same
// kind.
func (q Quirks) validate(specs map[string]QuirkSpec) error {
	for _, name := range q.Names() {
		s, ok := specs[name]
		if !ok {
			return &ConfigError{Component: "quirks", Err: fmt.Errorf("unknown quirk %q", name)}
		}
		if k := kindOf(q.m[name]); k != s.Kind {
			return &ConfigError{Component: "quirks", Err: fmt.Errorf("quirk %q is a %s, got a %s", name, s.Kind, k)}
		}
	}
	return nil
}
