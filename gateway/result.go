package gateway

import "time"

// Result is the raw untyped decision payload returned by an agent. Every
// field is optional from the caller's perspective; the accessors substitute
// the caller's default whenever a field is absent or mis-typed, so absence is
// never fatal.
type Result map[string]any

func (r Result) Str(key, def string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return def
}

func (r Result) Int(key string, def int) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func (r Result) Float(key string, def float64) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func (r Result) Bool(key string, def bool) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return def
}

// Time parses an RFC 3339 field, falling back to def when absent or
// unparseable.
func (r Result) Time(key string, def time.Time) time.Time {
	v, ok := r[key].(string)
	if !ok {
		return def
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return def
	}
	return t
}

// StrList collects the string elements of a list field, dropping anything
// mis-typed. Absent fields yield an empty list.
func (r Result) StrList(key string) []string {
	raw, ok := r[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// List collects the object elements of a list field as nested Results.
func (r Result) List(key string) []Result {
	raw, ok := r[key].([]any)
	if !ok {
		return []Result{}
	}
	out := make([]Result, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, Result(m))
		}
	}
	return out
}

// Map returns a nested object field, or an empty Result when absent.
func (r Result) Map(key string) Result {
	if m, ok := r[key].(map[string]any); ok {
		return Result(m)
	}
	return Result{}
}
