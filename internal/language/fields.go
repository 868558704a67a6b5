package language

// CollectedField groups every field selection (in document order) that
// writes/reads the same response name — the union of a field named once in
// the base selection and again through one or more matching fragments.
type CollectedField struct {
	ResponseName string
	Fields       []*Field
}

// collectedFieldMap preserves field order from the original query, exactly
// as the teacher's executor.collectedFieldMap does.
type collectedFieldMap struct {
	fields []CollectedField
	index  map[string]int
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (m *collectedFieldMap) add(responseName string, f *Field) {
	if idx, ok := m.index[responseName]; ok {
		m.fields[idx].Fields = append(m.fields[idx].Fields, f)
		return
	}
	m.index[responseName] = len(m.fields)
	m.fields = append(m.fields, CollectedField{ResponseName: responseName, Fields: []*Field{f}})
}

// CollectFields walks selectionSet (descending through inline fragments and
// named fragment spreads that match typename, honoring @skip/@include),
// grouping selections by response name. fragments resolves named spreads;
// an unresolved name is a write/read-time error (spec §4.1).
func CollectFields(selectionSet SelectionSet, fragments FragmentDefinitionList, typename string, variables map[string]any) ([]CollectedField, error) {
	grouped := newCollectedFieldMap()
	visited := make(map[string]bool)
	if err := collectFieldsImpl(selectionSet, fragments, typename, variables, grouped, visited); err != nil {
		return nil, err
	}
	return grouped.fields, nil
}

func collectFieldsImpl(selectionSet SelectionSet, fragments FragmentDefinitionList, typename string, variables map[string]any, grouped *collectedFieldMap, visited map[string]bool) error {
	for _, sel := range selectionSet {
		switch s := sel.(type) {
		case *Field:
			if !shouldInclude(s.Directives, variables) {
				continue
			}
			responseName := s.Alias
			if responseName == "" {
				responseName = s.Name
			}
			grouped.add(responseName, s)

		case *InlineFragment:
			if !shouldInclude(s.Directives, variables) {
				continue
			}
			if !matchesTypeCondition(s.TypeCondition, typename) {
				continue
			}
			if err := collectFieldsImpl(s.SelectionSet, fragments, typename, variables, grouped, visited); err != nil {
				return err
			}

		case *FragmentSpread:
			if !shouldInclude(s.Directives, variables) {
				continue
			}
			if visited[s.Name] {
				continue
			}
			visited[s.Name] = true
			def := fragments.ForName(s.Name)
			if def == nil {
				return ErrNoFragment(s.Name)
			}
			if !shouldInclude(def.Directives, variables) {
				continue
			}
			if !matchesTypeCondition(def.TypeCondition, typename) {
				continue
			}
			if err := collectFieldsImpl(def.SelectionSet, fragments, typename, variables, grouped, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchesTypeCondition implements the fragment matching policy of spec
// §4.1: an empty type condition always matches; a named one matches only by
// concrete __typename equality. Matching against interface/union type
// conditions is the documented gap (spec §9) — treated as non-matching.
func matchesTypeCondition(typeCondition, typename string) bool {
	if typeCondition == "" {
		return true
	}
	return typeCondition == typename
}
