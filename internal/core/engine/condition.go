package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Condition operators
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpStartsWith  = "starts_with"
	OpEndsWith    = "ends_with"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
)

// Condition is a recursive sum type: either a single leaf comparison or
// a group of conditions combined with implicit AND semantics. In the
// stored JSON an object is a leaf and an array is a group.
type Condition struct {
	Leaf *LeafCondition
	All  []Condition
}

// LeafCondition compares a dot-path field of the event payload against
// a configured value
type LeafCondition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// UnmarshalJSON maps a JSON object to a leaf and a JSON array to an
// AND group
func (c *Condition) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var group []Condition
		if err := json.Unmarshal(data, &group); err != nil {
			return err
		}
		c.All = group
		c.Leaf = nil
		return nil
	case '{':
		var leaf LeafCondition
		if err := json.Unmarshal(data, &leaf); err != nil {
			return err
		}
		c.Leaf = &leaf
		c.All = nil
		return nil
	default:
		return fmt.Errorf("condition must be an object or an array, got %q", trimmed)
	}
}

// MarshalJSON renders the condition back to its stored form
func (c Condition) MarshalJSON() ([]byte, error) {
	if c.Leaf != nil {
		return json.Marshal(c.Leaf)
	}
	if c.All != nil {
		return json.Marshal(c.All)
	}
	return []byte("null"), nil
}

// ParseConditions decodes a stored trigger_conditions document.
// Empty input yields nil, which always matches.
func ParseConditions(raw []byte) (*Condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var cond Condition
	if err := json.Unmarshal(raw, &cond); err != nil {
		return nil, fmt.Errorf("invalid trigger conditions: %w", err)
	}
	return &cond, nil
}

// Evaluate checks a condition tree against event payload data. A nil
// condition always matches. Evaluation never fails: missing fields and
// type mismatches compare to false, and an unknown operator matches by
// default so a malformed rule degrades to "always fire" instead of
// silently disabling a tenant's automation.
func Evaluate(cond *Condition, data map[string]interface{}) bool {
	if cond == nil {
		return true
	}
	if cond.Leaf != nil {
		return evaluateLeaf(cond.Leaf, data)
	}
	for i := range cond.All {
		if !Evaluate(&cond.All[i], data) {
			return false
		}
	}
	return true
}

func evaluateLeaf(leaf *LeafCondition, data map[string]interface{}) bool {
	fieldValue, found := GetNestedValue(data, leaf.Field)

	switch leaf.Operator {
	case OpEquals:
		return found && valueEquals(fieldValue, leaf.Value)
	case OpNotEquals:
		return !found || !valueEquals(fieldValue, leaf.Value)
	case OpContains:
		return strings.Contains(stringify(fieldValue, found), stringify(leaf.Value, true))
	case OpStartsWith:
		return strings.HasPrefix(stringify(fieldValue, found), stringify(leaf.Value, true))
	case OpEndsWith:
		return strings.HasSuffix(stringify(fieldValue, found), stringify(leaf.Value, true))
	case OpGreaterThan:
		a, aok := toFloat64(fieldValue)
		b, bok := toFloat64(leaf.Value)
		return aok && bok && a > b
	case OpLessThan:
		a, aok := toFloat64(fieldValue)
		b, bok := toFloat64(leaf.Value)
		return aok && bok && a < b
	default:
		// Unknown operator: match by default rather than block automation
		return true
	}
}

// GetNestedValue resolves a dot-path inside an arbitrary decoded JSON
// document. Missing intermediate keys yield (nil, false), never an
// error.
func GetNestedValue(data map[string]interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	var current interface{} = data
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// valueEquals compares two decoded JSON values: numbers numerically,
// everything else by kind-sensitive equality. Numeric strings are NOT
// coerced here; only greater_than/less_than coerce (spec table).
func valueEquals(a, b interface{}) bool {
	if af, aok := numericValue(a); aok {
		bf, bok := numericValue(b)
		return bok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

func stringify(v interface{}, found bool) string {
	if !found || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// numericValue recognizes genuinely numeric values without coercing
// strings
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toFloat64 converts decoded JSON values (and numeric strings) to
// float64 for the numeric operators
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
