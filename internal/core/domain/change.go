package domain

// ChangeType represents the type of rule document change.
type ChangeType int

const (
	// ChangeUpserted indicates a new or modified rule document.
	ChangeUpserted ChangeType = iota

	// ChangeRemoved indicates a rule document was deleted or moved away.
	ChangeRemoved
)

// String returns a lowercase name for the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeUpserted:
		return "upserted"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// RuleChange is a change event from a watching loader.
type RuleChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Origin is the document locator that changed.
	Origin string

	// Rule is the freshly parsed rule. Nil for ChangeRemoved.
	Rule *Rule
}
