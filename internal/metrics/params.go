package metrics

import (
	"fmt"
	"strings"
)

// Param is one named metric parameter. Parameter sets are ordered slices
// rather than maps so that filename suffixes stay deterministic and
// order-preserving.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter set.
type Params []Param

// Get returns the value for key and whether it was present.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Int returns an integer parameter, or def when absent or mistyped.
func (p Params) Int(key string, def int) int {
	if v, ok := p.Get(key); ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// Float returns a float parameter, or def when absent or mistyped.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p.Get(key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

// String returns a string parameter, or def when absent or mistyped.
func (p Params) String(key, def string) string {
	if v, ok := p.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Suffix encodes the parameter set as "key:value" pairs joined by
// underscores, in slice order. Appended to output filenames so runs with
// different parameters do not overwrite each other.
func (p Params) Suffix() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, kv := range p {
		parts[i] = fmt.Sprintf("%s:%v", kv.Key, kv.Value)
	}
	return strings.Join(parts, "_")
}

// localPrefix marks metrics evaluated against a trace's spatial
// neighborhood instead of global support traces.
const localPrefix = "local"

// IsLocal reports whether a metric name selects the local parameter
// preset.
func IsLocal(metric string) bool {
	return strings.HasPrefix(metric, localPrefix)
}

// PresetFor selects the parameter preset for a metric name: names with
// the "local" prefix take the local preset, all others the support one.
func PresetFor(metric string, support, local Params) Params {
	if IsLocal(metric) {
		return local
	}
	return support
}

// DefaultSupportParams is the stock preset for support-based metrics.
func DefaultSupportParams() Params {
	return Params{
		{Key: "supports", Value: 20},
		{Key: "agg", Value: "mean"},
	}
}

// DefaultLocalParams is the stock preset for neighborhood metrics.
func DefaultLocalParams() Params {
	return Params{
		{Key: "kernel_size", Value: 3},
		{Key: "agg", Value: "mean"},
	}
}
