package character

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

// fixer repairs fields in place and records a MalformedInput issue for every
// substitution. It never fails.
type fixer struct {
	issues []issue.Issue
}

func (f *fixer) note(path, format string, args ...any) {
	f.issues = append(f.issues, issue.Malformed(path, format, args...))
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// object returns m[key] as a map, replacing a missing or non-object value with an empty map.
func (f *fixer) object(m map[string]any, key, prefix string) map[string]any {
	v, present := m[key]
	if obj, ok := asMap(v); ok {
		if _, plain := v.(map[string]any); !plain {
			m[key] = obj
		}
		return obj
	}
	path := join(prefix, key)
	if present {
		f.note(path, "expected object, got %T; replaced with empty object", v)
	} else {
		f.note(path, "missing; defaulted to empty object")
	}
	obj := map[string]any{}
	m[key] = obj
	return obj
}

// integer returns m[key] coerced to an int, substituting def when missing or unparseable.
// Integral floats (the JSON default) are converted silently.
func (f *fixer) integer(m map[string]any, key, prefix string, def int) int {
	v, present := m[key]
	path := join(prefix, key)
	if !present || v == nil {
		f.note(path, "missing; defaulted to %d", def)
		m[key] = def
		return def
	}
	n, ok := asInt(v)
	if !ok {
		f.note(path, "expected integer, got %T; defaulted to %d", v, def)
		m[key] = def
		return def
	}
	switch t := v.(type) {
	case int:
	case float64:
		if float64(n) != t {
			f.note(path, "fractional value %v floored to %d", t, n)
		}
	default:
		f.note(path, "coerced %T %v to integer %d", v, v, n)
	}
	m[key] = n
	return n
}

// atLeast is integer with a lower clamp.
func (f *fixer) atLeast(m map[string]any, key, prefix string, def, min int) int {
	n := f.integer(m, key, prefix, def)
	if n < min {
		f.note(join(prefix, key), "value %d below minimum %d; clamped", n, min)
		n = min
		m[key] = n
	}
	return n
}

// within is integer clamped into [lo, hi].
func (f *fixer) within(m map[string]any, key, prefix string, def, lo, hi int) int {
	n := f.atLeast(m, key, prefix, def, lo)
	if n > hi {
		f.note(join(prefix, key), "value %d above maximum %d; clamped", n, hi)
		n = hi
		m[key] = n
	}
	return n
}

func (f *fixer) boolean(m map[string]any, key, prefix string, def bool) bool {
	v, present := m[key]
	path := join(prefix, key)
	if !present || v == nil {
		f.note(path, "missing; defaulted to %t", def)
		m[key] = def
		return def
	}
	b, ok := asBool(v)
	if !ok {
		f.note(path, "expected boolean, got %T; defaulted to %t", v, def)
		m[key] = def
		return def
	}
	if _, plain := v.(bool); !plain {
		f.note(path, "coerced %q to boolean", v)
	}
	m[key] = b
	return b
}

func (f *fixer) str(m map[string]any, key, prefix, def string) string {
	v, present := m[key]
	path := join(prefix, key)
	if !present || v == nil {
		f.note(path, "missing; defaulted to %q", def)
		m[key] = def
		return def
	}
	s, ok := asString(v)
	if !ok {
		f.note(path, "expected string, got %T; defaulted to %q", v, def)
		m[key] = def
		return def
	}
	return s
}

// token is str folded to lower case without surrounding whitespace.
func (f *fixer) token(m map[string]any, key, prefix, def string) string {
	s := strings.ToLower(strings.TrimSpace(f.str(m, key, prefix, def)))
	m[key] = s
	return s
}

func (f *fixer) rank(m map[string]any, key, prefix string) Rank {
	raw := f.str(m, key, prefix, string(RankUntrained))
	r, ok := ParseRank(raw)
	if !ok {
		f.note(join(prefix, key), "unknown rank %q; defaulted to %q", raw, RankUntrained)
	}
	m[key] = string(r)
	return r
}

func (f *fixer) facing(m map[string]any, key, prefix string) Facing {
	raw := f.str(m, key, prefix, string(FacingFront))
	fc, ok := ParseFacing(raw)
	if !ok {
		f.note(join(prefix, key), "unknown facing %q; defaulted to %q", raw, FacingFront)
	}
	m[key] = string(fc)
	return fc
}

// stringList returns m[key] as a list of strings. A comma-separated string is
// split; non-string list elements are dropped.
func (f *fixer) stringList(m map[string]any, key, prefix string) []any {
	v, present := m[key]
	path := join(prefix, key)
	out := []any{}
	switch t := v.(type) {
	case []any:
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				f.note(fmt.Sprintf("%s.%d", path, i), "expected string, got %T; dropped", e)
				continue
			}
			out = append(out, s)
		}
	case []string:
		for _, s := range t {
			out = append(out, s)
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		f.note(path, "split comma-separated string into list")
	default:
		if present && v != nil {
			f.note(path, "expected list, got %T; defaulted to empty list", v)
		} else {
			f.note(path, "missing; defaulted to empty list")
		}
	}
	m[key] = out
	return out
}

// objects returns m[key] as a list of objects, dropping non-object elements.
func (f *fixer) objects(m map[string]any, key, prefix string) []map[string]any {
	v, present := m[key]
	path := join(prefix, key)
	list, ok := v.([]any)
	if !ok {
		if present && v != nil {
			f.note(path, "expected list, got %T; defaulted to empty list", v)
		} else {
			f.note(path, "missing; defaulted to empty list")
		}
		m[key] = []any{}
		return nil
	}
	kept := make([]any, 0, len(list))
	out := make([]map[string]any, 0, len(list))
	for i, e := range list {
		obj, ok := asMap(e)
		if !ok {
			f.note(fmt.Sprintf("%s.%d", path, i), "expected object, got %T; dropped", e)
			continue
		}
		kept = append(kept, obj)
		out = append(out, obj)
	}
	m[key] = kept
	return out
}
