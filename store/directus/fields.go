package directus

import (
	"fmt"
	"sort"
	"strings"
)

// FlattenFields converts a nested field tree into the dot-notation list the
// Directus REST API expects. Map entries express relational projections;
// a map whose values are themselves field trees keyed by collection tag
// expresses a many-to-any projection (encoded as "field:collection.sub").
func FlattenFields(fields []any) []string {
	out := flatten("", fields)
	return out
}

func flatten(prefix string, fields []any) []string {
	var out []string
	for _, field := range fields {
		switch typed := field.(type) {
		case string:
			out = append(out, join(prefix, typed))
		case map[string]any:
			keys := make([]string, 0, len(typed))
			for key := range typed {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				switch sub := typed[key].(type) {
				case []any:
					out = append(out, flatten(join(prefix, key), sub)...)
				case []string:
					for _, name := range sub {
						out = append(out, join(join(prefix, key), name))
					}
				case map[string]any:
					// Many-to-any: one branch per target collection.
					tags := make([]string, 0, len(sub))
					for tag := range sub {
						tags = append(tags, tag)
					}
					sort.Strings(tags)
					for _, tag := range tags {
						branch, ok := sub[tag].([]any)
						if !ok {
							continue
						}
						out = append(out, flatten(join(prefix, key)+":"+tag, branch)...)
					}
				default:
					out = append(out, join(join(prefix, key), fmt.Sprint(sub)))
				}
			}
		}
	}
	return out
}

func join(prefix, name string) string {
	name = strings.TrimSpace(name)
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
