package database

import (
	"errors"
	"fmt"
)

// Kind identifies the ledger rule a block or transaction broke.
type Kind string

// Set of rule kinds.
const (
	KindStructural    Kind = "structural"
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindConservation  Kind = "conservation"
	KindDoubleSpend   Kind = "double-spend"
	KindReplay        Kind = "replay"
)

// Sentinel values for use with errors.Is. A RuleError matches the sentinel
// of the same kind.
var (
	ErrStructural    = &RuleError{Kind: KindStructural}
	ErrValidation    = &RuleError{Kind: KindValidation}
	ErrAuthorization = &RuleError{Kind: KindAuthorization}
	ErrConservation  = &RuleError{Kind: KindConservation}
	ErrDoubleSpend   = &RuleError{Kind: KindDoubleSpend}
	ErrReplay        = &RuleError{Kind: KindReplay}
)

// ErrInvariant is returned when the chain and the unspent output index no
// longer agree. This is not recoverable.
var ErrInvariant = errors.New("ledger invariant violated")

// =============================================================================

// RuleError is returned when a block or transaction is rejected. The ledger
// is left exactly as it was before the attempt.
type RuleError struct {
	Kind Kind
	Err  error
}

// newRuleError constructs a rule error of the specified kind.
func newRuleError(kind Kind, format string, args ...any) error {
	return &RuleError{
		Kind: kind,
		Err:  fmt.Errorf(format, args...),
	}
}

// Error implements the error interface.
func (re *RuleError) Error() string {
	if re.Err == nil {
		return fmt.Sprintf("%s error", re.Kind)
	}
	return fmt.Sprintf("%s: %s", re.Kind, re.Err)
}

// Unwrap returns the underlying error.
func (re *RuleError) Unwrap() error {
	return re.Err
}

// Is reports whether the target is the sentinel for this kind.
func (re *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	if !ok {
		return false
	}

	return t.Err == nil && t.Kind == re.Kind
}

// KindOf returns the rule kind carried by the error.
func KindOf(err error) (Kind, bool) {
	var re *RuleError
	if !errors.As(err, &re) {
		return "", false
	}

	return re.Kind, true
}
