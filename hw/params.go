package hw

import (
	"fmt"
	"math"
	"slices"
)

// Params are the free-form parameters of a component, as decoded from a
// system definition. Accessors record the first error, which the registry
// reports once the factory returns, so factories can read all their
// parameters and check Err once.
type Params struct {
	m    map[string]any
	used map[string]bool
	err  error
}

func NewParams(m map[string]any) *Params {
	return &Params{m: m, used: make(map[string]bool)}
}

func (p *Params) Err() error { return p.err }

func (p *Params) setErr(key string, v any, want string) {
	if p.err == nil {
		p.err = fmt.Errorf("parameter %q: got %v (%T), want %s", key, v, v, want)
	}
}

// Has reports whether the parameter is set.
func (p *Params) Has(key string) bool {
	_, ok := p.m[key]
	return ok
}

func (p *Params) get(key string) (any, bool) {
	v, ok := p.m[key]
	if ok {
		p.used[key] = true
	}
	return v, ok
}

func (p *Params) Int(key string, def int64) int64 {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
	}
	p.setErr(key, v, "an integer")
	return def
}

// Uint is Int restricted to [0, max].
func (p *Params) Uint(key string, def, max uint64) uint64 {
	n := p.Int(key, int64(def))
	if n < 0 || uint64(n) > max {
		if p.err == nil {
			p.err = fmt.Errorf("parameter %q: %d out of range [0, %d]", key, n, max)
		}
		return def
	}
	return uint64(n)
}

func (p *Params) String(key, def string) string {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		p.setErr(key, v, "a string")
		return def
	}
	return s
}

func (p *Params) Bool(key string, def bool) bool {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		p.setErr(key, v, "a boolean")
		return def
	}
	return b
}

func (p *Params) Strings(key string) []string {
	v, ok := p.get(key)
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []string:
		return l
	case string:
		return []string{l}
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			s, ok := e.(string)
			if !ok {
				p.setErr(key, v, "a list of strings")
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	p.setErr(key, v, "a list of strings")
	return nil
}

// Unused returns the parameters no accessor asked for, sorted.
func (p *Params) Unused() []string {
	var keys []string
	for k := range p.m {
		if !p.used[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
