package store

import (
	"fmt"
	"sort"
	"strings"
)

// MatchFilter evaluates a Directus-style filter tree against a row. It is the
// shared engine behind the in-process store implementations; the HTTP client
// passes filters through to the remote API untouched.
func MatchFilter(row Row, filter Filter) bool {
	if len(filter) == 0 {
		return true
	}
	for key, raw := range filter {
		switch key {
		case "_and":
			for _, sub := range toFilterList(raw) {
				if !MatchFilter(row, sub) {
					return false
				}
			}
		case "_or":
			subs := toFilterList(raw)
			if len(subs) == 0 {
				continue
			}
			matched := false
			for _, sub := range subs {
				if MatchFilter(row, sub) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		default:
			if !matchField(row[key], raw) {
				return false
			}
		}
	}
	return true
}

func matchField(value any, raw any) bool {
	spec, ok := raw.(map[string]any)
	if !ok {
		return equalsLoose(value, raw)
	}

	if isOperatorSet(spec) {
		return matchOperators(value, spec)
	}

	// Nested relational filter: a map matches recursively, an array matches
	// when any element does (Directus any-of semantics for o2m filters).
	switch child := value.(type) {
	case map[string]any:
		return MatchFilter(child, Filter(spec))
	case []any:
		for _, elem := range child {
			if row, ok := elem.(map[string]any); ok && MatchFilter(row, Filter(spec)) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchOperators(value any, ops map[string]any) bool {
	for op, want := range ops {
		switch op {
		case "_eq":
			if !equalsLoose(value, want) {
				return false
			}
		case "_neq":
			if equalsLoose(value, want) {
				return false
			}
		case "_nnull":
			isNull := value == nil
			if wantNonNull, ok := want.(bool); ok && wantNonNull == isNull {
				return false
			}
		case "_in":
			list, ok := want.([]any)
			if !ok {
				return false
			}
			found := false
			for _, candidate := range list {
				if equalsLoose(value, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "_icontains":
			haystack, hok := value.(string)
			needle := fmt.Sprint(want)
			if !hok || !strings.Contains(strings.ToLower(haystack), strings.ToLower(needle)) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isOperatorSet(spec map[string]any) bool {
	if len(spec) == 0 {
		return false
	}
	for key := range spec {
		if !strings.HasPrefix(key, "_") {
			return false
		}
	}
	return true
}

func toFilterList(raw any) []Filter {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Filter, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			out = append(out, Filter(m))
		}
	}
	return out
}

// SortRows orders rows by the provided sort keys. A leading '-' sorts
// descending. Missing values order last regardless of direction.
func SortRows(rows []Row, keys []string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			desc := strings.HasPrefix(key, "-")
			field := strings.TrimPrefix(key, "-")
			cmp := compareValues(rows[i][field], rows[j][field])
			if cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Paginate slices rows to the requested limit and 1-based page.
func Paginate(rows []Row, limit, page int) []Row {
	if limit <= 0 {
		return rows
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// ApplyDeep applies nested-collection directives (_filter, _sort, _limit) to
// the relational fields of a row, recursing through nested specs. Specs under
// a many-to-any payload are keyed by the element's collection tag and only
// apply when the tag matches.
func ApplyDeep(row Row, deep map[string]any) {
	if row == nil || len(deep) == 0 {
		return
	}
	for key, raw := range deep {
		if strings.HasPrefix(key, "_") {
			continue
		}
		spec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch child := row[key].(type) {
		case []any:
			row[key] = applyDeepToList(child, spec)
		case map[string]any:
			applyDeepToChild(row, child, spec)
		}
	}
}

func applyDeepToList(list []any, spec map[string]any) []any {
	filtered := make([]Row, 0, len(list))
	passthrough := make([]any, 0)
	var filter Filter
	if rawFilter, ok := spec["_filter"].(map[string]any); ok {
		filter = Filter(rawFilter)
	}
	for _, elem := range list {
		row, ok := elem.(map[string]any)
		if !ok {
			passthrough = append(passthrough, elem)
			continue
		}
		if MatchFilter(row, filter) {
			filtered = append(filtered, row)
		}
	}

	if rawSort, ok := spec["_sort"].([]any); ok {
		keys := make([]string, 0, len(rawSort))
		for _, k := range rawSort {
			keys = append(keys, fmt.Sprint(k))
		}
		SortRows(filtered, keys)
	} else if keys, ok := spec["_sort"].([]string); ok {
		SortRows(filtered, keys)
	}

	if limit, ok := toFloat(spec["_limit"]); ok && limit > 0 {
		filtered = Paginate(filtered, int(limit), 1)
	}

	out := make([]any, 0, len(filtered)+len(passthrough))
	for _, row := range filtered {
		ApplyDeep(row, spec)
		out = append(out, row)
	}
	return append(out, passthrough...)
}

func applyDeepToChild(parent Row, child map[string]any, spec map[string]any) {
	// Many-to-any: the spec is keyed by the parent's collection tag.
	if tag, ok := parent["collection"].(string); ok {
		if sub, ok := spec[tag].(map[string]any); ok {
			ApplyDeep(child, sub)
			return
		}
	}
	ApplyDeep(child, spec)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func equalsLoose(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// CloneRow deep-copies a row so callers can mutate results without bleeding
// into the store's backing data.
func CloneRow(row Row) Row {
	if row == nil {
		return nil
	}
	return cloneValue(row).(map[string]any)
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
