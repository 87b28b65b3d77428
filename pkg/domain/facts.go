package domain

import (
	"sort"
	"strings"
)

// Facts maps a fact key to its collected value.
type Facts map[string]string

// Has reports whether key holds a non-empty value.
func (f Facts) Has(key string) bool {
	return strings.TrimSpace(f[key]) != ""
}

// Merge copies every entry of other whose key is not already present.
// It never overwrites (first match wins across turns) and returns the keys it added, sorted.
func (f Facts) Merge(other Facts) []string {
	var added []string
	for k, v := range other {
		if f.Has(k) || strings.TrimSpace(v) == "" {
			continue
		}
		f[k] = v
		added = append(added, k)
	}
	sort.Strings(added)
	return added
}

// Set records value under key, replacing any previous value.
// Used for the literal answer to a solicited field.
func (f Facts) Set(key, value string) {
	f[key] = value
}

// Missing returns the keys from required that are absent, preserving their order.
func (f Facts) Missing(required []string) []string {
	var missing []string
	for _, k := range required {
		if !f.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Clone returns an independent copy of f.
func (f Facts) Clone() Facts {
	out := make(Facts, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the fact keys in lexical order.
func (f Facts) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FirstOf returns the first non-empty value among keys.
func (f Facts) FirstOf(keys ...string) string {
	for _, k := range keys {
		if f.Has(k) {
			return strings.TrimSpace(f[k])
		}
	}
	return ""
}
