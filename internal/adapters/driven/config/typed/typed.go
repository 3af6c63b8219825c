// Package typed converts loosely typed config values, as decoded from
// TOML or JSON or set from the command line, into Go types.
package typed

import (
	"math"
	"strconv"
	"strings"
)

// Getters implements the typed ConfigStore getters on top of a raw
// lookup. Stores embed it and pass their own Get.
type Getters struct {
	get func(key string) (any, bool)
}

// NewGetters returns getters reading through get.
func NewGetters(get func(key string) (any, bool)) Getters {
	return Getters{get: get}
}

func (g Getters) GetString(key string) string {
	v, _ := g.get(key)
	return String(v)
}

func (g Getters) GetInt(key string) int {
	v, _ := g.get(key)
	return Int(v)
}

func (g Getters) GetFloat(key string) float64 {
	v, _ := g.get(key)
	return Float(v)
}

func (g Getters) GetBool(key string) bool {
	v, _ := g.get(key)
	return Bool(v)
}

func (g Getters) GetStringSlice(key string) []string {
	v, _ := g.get(key)
	return Strings(v)
}

// String returns v if it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int accepts Go and TOML integers and whole JSON numbers.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return 0
}

// Float accepts floats and integers.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Bool accepts booleans and the strings strconv.ParseBool understands.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(b))
		return parsed
	}
	return false
}

// Strings accepts string lists, keeping only the string items of a
// mixed list, and splits a comma separated string.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}
