package model

import "strings"

// Snapshot is one module's audit output, kept as the raw decoded JSON
// document. Producers disagree on casing and nesting, so typed accessors
// probe the map instead of committing to a struct shape.
type Snapshot map[string]any

// field does a case-insensitive key lookup at one level of the document.
func field(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// asNumber coerces the value shapes encoding/json produces for numbers,
// plus the int variants tests construct by hand.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Has reports whether a top-level field exists, ignoring case.
func (s Snapshot) Has(key string) bool {
	_, ok := field(s, key)
	return ok
}

// summary returns the nested summary object, if any.
func (s Snapshot) summary() (map[string]any, bool) {
	v, ok := field(s, "summary")
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// TotalFound reads the detected-item total from the snapshot summary,
// falling back to a top-level field. The second return is false when the
// document carries no such figure.
func (s Snapshot) TotalFound() (int, bool) {
	if sum, ok := s.summary(); ok {
		if v, ok := field(sum, "total_found"); ok {
			if n, ok := asNumber(v); ok {
				return int(n), true
			}
		}
		if v, ok := field(sum, "totalFound"); ok {
			if n, ok := asNumber(v); ok {
				return int(n), true
			}
		}
	}
	if v, ok := field(s, "total_found"); ok {
		if n, ok := asNumber(v); ok {
			return int(n), true
		}
	}
	return 0, false
}

// HealthScore reads a producer-reported health score when one is present.
func (s Snapshot) HealthScore() (float64, bool) {
	for _, key := range []string{"health_score", "healthScore", "score"} {
		if v, ok := field(s, key); ok {
			if n, ok := asNumber(v); ok {
				return n, true
			}
		}
	}
	if sum, ok := s.summary(); ok {
		for _, key := range []string{"health_score", "healthScore", "score"} {
			if v, ok := field(sum, key); ok {
				if n, ok := asNumber(v); ok {
					return n, true
				}
			}
		}
	}
	return 0, false
}

// countSuffixes marks the field names that carry per-category tallies.
var countSuffixes = []string{"count", "found", "detected", "removed", "cleaned", "disabled", "optimized"}

// CountFields collects every numeric field, at the top level or inside the
// summary object, whose name ends in a tally suffix. Keys are returned
// lowercased so downstream merging is casing-agnostic.
func (s Snapshot) CountFields() map[string]float64 {
	out := make(map[string]float64)
	collect := func(m map[string]any) {
		for k, v := range m {
			n, ok := asNumber(v)
			if !ok {
				continue
			}
			lk := strings.ToLower(k)
			for _, suf := range countSuffixes {
				if strings.HasSuffix(lk, suf) {
					out[lk] = n
					break
				}
			}
		}
	}
	collect(s)
	if sum, ok := s.summary(); ok {
		collect(sum)
	}
	return out
}
