package engine

import (
	"regexp"
)

// Placeholders reference the triggering event's payload, e.g.
// {{trigger.invoice.total}}
var placeholderRe = regexp.MustCompile(`\{\{trigger\.([^}]+)\}\}`)

// ResolveConfig deep-clones an action configuration, replacing every
// {{trigger.<dot-path>}} placeholder inside string values with the
// string form of the value at <dot-path> in the event payload. A path
// that does not resolve leaves the placeholder text untouched, so a
// misconfigured template stays visible in downstream payloads instead
// of collapsing to an empty string. Pure: the input maps are never
// mutated.
func ResolveConfig(config map[string]interface{}, eventData map[string]interface{}) map[string]interface{} {
	if config == nil {
		return nil
	}
	resolved := resolveValue(config, eventData)
	return resolved.(map[string]interface{})
}

func resolveValue(value interface{}, eventData map[string]interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return resolveString(v, eventData)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = resolveValue(val, eventData)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = resolveValue(val, eventData)
		}
		return out
	default:
		// numbers, booleans, nil pass through untouched
		return v
	}
}

func resolveString(s string, eventData map[string]interface{}) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		path := placeholderRe.FindStringSubmatch(match)[1]
		value, found := GetNestedValue(eventData, path)
		if !found {
			return match
		}
		return stringify(value, true)
	})
}
