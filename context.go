package atlas

// RootQuery is the default root store key every Read/Write/Observe call
// targets unless Context.RootID names another one (spec §6 "Root
// identifier convention"). Callers may address independent sub-roots
// ("Stack:5", "QUERY/allStacks", ...) that share the same graph but are
// written and read independently of the default root.
const RootQuery = "QUERY"

// Context carries the per-call parameters shared by Read, Write, and
// Observe (spec §6).
type Context struct {
	// Variables binds query variable names to JSON-serializable values.
	Variables map[string]any
	// RootID names the store key this call addresses. Empty means RootQuery.
	RootID string
	// IsOptimistic routes a read to the optimistic-then-base visibility, and
	// a write to the optimistic index only.
	IsOptimistic bool
}

func (c Context) rootID() string {
	if c.RootID == "" {
		return RootQuery
	}
	return c.RootID
}
