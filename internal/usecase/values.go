package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// asString renders an arbitrary decoded JSON scalar the way the feed compares
// identifiers: nil becomes "", integral floats lose their fraction so the id
// 3 and the id "3" meet in the middle.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// present mirrors truthiness for alternate-key fallbacks: nil, empty string,
// and numeric zero all count as absent.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case bool:
		return t
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// firstPresent returns the value of the first key whose value is present.
func firstPresent(m map[string]any, keys ...string) any {
	if m == nil {
		return nil
	}
	for _, key := range keys {
		if v, ok := m[key]; ok && present(v) {
			return v
		}
	}
	return nil
}

// firstString is firstPresent rendered to a string, "" when nothing matched.
func firstString(m map[string]any, keys ...string) string {
	return asString(firstPresent(m, keys...))
}

// intFromAny coerces the scalar encodings a season arrives in.
func intFromAny(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

// anySlice coerces a decoded JSON value into a []any, accepting both a list
// and a single object.
func anySlice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// stringSet renders a list of arbitrary scalars into their string forms.
func stringSet(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item))
	}
	return out
}

// dedupInOrder keeps the first occurrence of each string. The result is never
// nil; both sides of an asset flow render as lists.
func dedupInOrder(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	if len(in) == 1 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func trimJoin(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
