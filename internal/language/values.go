package language

import "strconv"

// ValueToGo converts an AST value into a plain Go value, substituting
// variable references from variables. Missing variables resolve to nil.
// This is used for directive arguments (@skip/@include) where we need an
// actual bool, not a store-name rendering.
func ValueToGo(v *Value, variables map[string]any) any {
	if v == nil {
		return nil
	}
	if v.Kind == Variable {
		return variables[v.Raw]
	}
	return literalToGo(v)
}

func literalToGo(v *Value) any {
	switch v.Kind {
	case IntValue:
		n, _ := strconv.Atoi(v.Raw)
		return n
	case FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case StringValue, BlockValue:
		return v.Raw
	case BooleanValue:
		return v.Raw == "true"
	case NullValue:
		return nil
	case EnumValue:
		return v.Raw
	case ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = literalToGo(c.Value)
		}
		return out
	case ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			m[c.Name] = literalToGo(c.Value)
		}
		return m
	default:
		return nil
	}
}

// shouldInclude evaluates @skip/@include on a directive list. Any other
// directive is ignored (the cache has no schema to validate directives
// against).
func shouldInclude(directives DirectiveList, variables map[string]any) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if arg := skip.Arguments.ForName("if"); arg != nil {
			if b, ok := ValueToGo(arg.Value, variables).(bool); ok && b {
				return false
			}
		}
	}
	if include := directives.ForName("include"); include != nil {
		if arg := include.Arguments.ForName("if"); arg != nil {
			if b, ok := ValueToGo(arg.Value, variables).(bool); ok && !b {
				return false
			}
		}
	}
	return true
}
