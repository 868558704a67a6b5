package language

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GetStoreName computes the field store name (spec §3): the field's name
// for a field with no arguments, else "name(arg1: v1, arg2: v2, ...)" with
// arguments rendered in query order and values serialized per the rules
// below. This is what lets `zettelis(last: 2)` and `zettelis(last: 5)`
// address distinct cache entries under the same parent.
func GetStoreName(field *Field, variables map[string]any) (string, error) {
	if len(field.Arguments) == 0 {
		return field.Name, nil
	}
	parts := make([]string, 0, len(field.Arguments))
	for _, arg := range field.Arguments {
		rendered, err := renderArgumentValue(arg.Value, variables)
		if err != nil {
			return "", fmt.Errorf("%w (field %s, argument %q)", err, field.Name, arg.Name)
		}
		parts = append(parts, arg.Name+": "+rendered)
	}
	return field.Name + "(" + strings.Join(parts, ", ") + ")", nil
}

// renderArgumentValue renders a single argument value into its store-name
// syntax. List- and object-valued arguments are deliberately unsupported
// (spec §3): they fail fast rather than silently producing a lossy key.
func renderArgumentValue(v *Value, variables map[string]any) (string, error) {
	if v == nil {
		return "null", nil
	}
	switch v.Kind {
	case Variable:
		bound, ok := variables[v.Raw]
		if !ok {
			return "null", nil
		}
		encoded, err := json.Marshal(bound)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	case StringValue, BlockValue:
		return strconv.Quote(v.Raw), nil
	case NullValue:
		return "null", nil
	case IntValue, FloatValue, BooleanValue, EnumValue:
		return v.Raw, nil
	case ListValue:
		return "", fmt.Errorf("List argument serialization not implemented")
	case ObjectValue:
		return "", fmt.Errorf("Object argument serialization not implemented")
	default:
		return "", fmt.Errorf("unsupported argument value kind %v", v.Kind)
	}
}
