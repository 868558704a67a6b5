package language

import (
	"strings"

	"github.com/vektah/gqlparser/v2/formatter"
)

// GetOperation resolves the single operation a Read/Write/Observe call
// targets: by name when one is given, or the document's only operation when
// it isn't (spec §4.1: "fails if none present, pretty-printing the query
// into the error").
func GetOperation(document *QueryDocument, operationName string) (*OperationDefinition, error) {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0], nil
		}
	}
	if op := document.Operations.ForName(operationName); op != nil {
		return op, nil
	}
	return nil, wrapWithQuery(ErrNoOperation(), document)
}

// wrapWithQuery appends the pretty-printed query document to err's message,
// matching spec §6 ("When a query must be named in an error, it is
// pretty-printed from the AST").
func wrapWithQuery(err error, document *QueryDocument) error {
	le, ok := err.(*Error)
	if !ok || document == nil {
		return err
	}
	printed := PrettyPrint(document)
	if printed == "" {
		return err
	}
	return &Error{Prefix: le.Prefix, Message: le.Message + ":\n" + printed}
}

// PrettyPrint renders document back to query text, for embedding in error
// messages. Returns "" if formatting fails rather than erroring — pretty
// printing is a diagnostic aid, not a correctness requirement.
func PrettyPrint(document *QueryDocument) string {
	var sb strings.Builder
	defer func() { recover() }()
	f := formatter.NewFormatter(&sb)
	f.FormatQueryDocument(document)
	return sb.String()
}
