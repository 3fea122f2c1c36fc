package approval

//go:generate go run github.com/dmarkham/enumer -type Decision -trimprefix Decision -transform lower -output decision.gen.go

// Decision is one voter's stance on a request. Exactly three values exist;
// anything else read from storage is rejected at the boundary.
type Decision int

const (
	DecisionNotSelected Decision = iota
	DecisionApprover
	DecisionBlocker
)

// Flag values stored in the decision column.
const (
	flagNotSelected = "N"
	flagApprover    = "A"
	flagBlocker     = "B"
)

// Flag returns the single-character storage form of the decision.
func (d Decision) Flag() string {
	switch d {
	case DecisionApprover:
		return flagApprover
	case DecisionBlocker:
		return flagBlocker
	default:
		return flagNotSelected
	}
}

// DecisionFromFlag parses a storage flag. Unknown flags are an error, never
// silently coerced.
func DecisionFromFlag(flag string) (Decision, error) {
	switch flag {
	case flagApprover:
		return DecisionApprover, nil
	case flagBlocker:
		return DecisionBlocker, nil
	case flagNotSelected:
		return DecisionNotSelected, nil
	}
	return DecisionNotSelected, ErrBadDecision
}
