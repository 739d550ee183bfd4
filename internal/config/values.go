package config

import (
	"maps"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Values is a script's merged configuration. Nested maps are addressed with
// dot notation: Get("api.base_url").
type Values map[string]any

// Get returns the value at key. A literal key containing dots takes
// precedence over traversal.
func (v Values) Get(key string) (any, bool) {
	if v == nil || key == "" {
		return nil, false
	}
	if val, ok := v[key]; ok {
		return val, true
	}

	var cur any = map[string]any(v)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether key is present and non-nil.
func (v Values) Has(key string) bool {
	val, ok := v.Get(key)
	return ok && val != nil
}

// String returns the value at key converted to a string, or def.
func (v Values) String(key, def string) string {
	val, ok := v.Get(key)
	if !ok || val == nil {
		return def
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return def
	}
	return s
}

// Int returns the value at key converted to an int, or def.
func (v Values) Int(key string, def int) int {
	val, ok := v.Get(key)
	if !ok || val == nil {
		return def
	}
	i, err := cast.ToIntE(val)
	if err != nil {
		return def
	}
	return i
}

// Bool returns the value at key converted to a bool, or def.
func (v Values) Bool(key string, def bool) bool {
	val, ok := v.Get(key)
	if !ok || val == nil {
		return def
	}
	b, err := cast.ToBoolE(val)
	if err != nil {
		return def
	}
	return b
}

// Duration returns the value at key parsed as a duration ("3s", "250ms"), or def.
// Bare numbers are read as seconds.
func (v Values) Duration(key string, def time.Duration) time.Duration {
	val, ok := v.Get(key)
	if !ok || val == nil {
		return def
	}
	switch n := val.(type) {
	case int, int64, float64:
		return time.Duration(cast.ToFloat64(n) * float64(time.Second))
	}
	d, err := cast.ToDurationE(val)
	if err != nil {
		return def
	}
	return d
}

// Merge returns a new Values with layers applied in order; later layers win.
// Nested maps are merged key by key rather than replaced.
func Merge(layers ...map[string]any) Values {
	out := make(Values)
	for _, layer := range layers {
		mergeInto(out, layer)
	}
	return out
}

func mergeInto(dst, src map[string]any) {
	for k, sv := range src {
		srcMap, srcIsMap := asMap(sv)
		if !srcIsMap {
			dst[k] = sv
			continue
		}
		dstMap, dstIsMap := asMap(dst[k])
		if !dstIsMap {
			dstMap = make(map[string]any, len(srcMap))
		} else {
			dstMap = maps.Clone(dstMap)
		}
		mergeInto(dstMap, srcMap)
		dst[k] = dstMap
	}
}

// asMap normalizes the map shapes produced by yaml, toml and viper.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Values:
		return map[string]any(m), true
	case map[any]any:
		// YAML sometimes produces map[any]any instead of map[string]any
		converted := make(map[string]any, len(m))
		for mk, mv := range m {
			if strKey, ok := mk.(string); ok {
				converted[strKey] = mv
			}
		}
		return converted, true
	default:
		return nil, false
	}
}
