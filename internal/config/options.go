package config

// Options is a loosely-typed option bag decoded from a run config section.
// Accessors are forgiving: wrong-typed or missing keys fall back to the
// caller's default instead of failing, so configs stay hand-editable.
type Options map[string]any

// String returns the option as a string, or def when absent or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the option as a bool, or def when absent or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the option as an int. JSON decodes numbers as float64 and
// YAML as int; both are accepted.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Rune returns the first rune of a string option, or def when absent or
// empty.
func (o Options) Rune(key string, def rune) rune {
	s := o.String(key, "")
	if s == "" {
		return def
	}
	return []rune(s)[0]
}

// StringMap returns the option as map[string]string. YAML and JSON both
// decode nested maps as map[string]any; non-string values are skipped.
func (o Options) StringMap(key string) map[string]string {
	out := make(map[string]string)
	switch m := o[key].(type) {
	case map[string]string:
		for k, v := range m {
			out[k] = v
		}
	case map[string]any:
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// Any returns the raw option value, or nil when absent.
func (o Options) Any(key string) any {
	return o[key]
}
