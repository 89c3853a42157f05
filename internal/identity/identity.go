package identity

import "strings"

// Classifier answers whether an account identifier belongs to the operator
// set. Operator accounts are used by teachers for live testing and must be
// excluded from every student-facing aggregate.
type Classifier struct {
	operators map[string]struct{}
}

// NewClassifier builds a classifier from the configured operator identifiers.
// Blank identifiers are ignored; an empty set classifies nobody as operator.
func NewClassifier(operatorIDs []string) *Classifier {
	set := make(map[string]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		set[trimmed] = struct{}{}
	}
	return &Classifier{operators: set}
}

// IsOperator reports whether the identifier is in the operator set.
func (c *Classifier) IsOperator(id string) bool {
	if c == nil || id == "" {
		return false
	}
	_, ok := c.operators[id]
	return ok
}

// Size returns the number of configured operator identifiers.
func (c *Classifier) Size() int {
	if c == nil {
		return 0
	}
	return len(c.operators)
}
