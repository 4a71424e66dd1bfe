package appstate

import "errors"

// Invariant violations are refused up front rather than repaired after
// the fact; these sentinels tell the caller which guard fired.
var (
	// ErrNotFound means the referenced member or bill does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLastMembers guards the minimum roster: a group needs at least
	// two members for splitting to mean anything.
	ErrLastMembers = errors.New("cannot remove member: at least two members are required")

	// ErrPayerRemoval fires when removing a member would leave a bill
	// with no participants and no payer to reassign them to.
	ErrPayerRemoval = errors.New("cannot remove member: payer and sole participant of a bill")

	// ErrEmptyInvolved guards the non-empty participant invariant.
	ErrEmptyInvolved = errors.New("bill must involve at least one member")

	// ErrAmountNotPositive rejects zero and negative bill amounts.
	ErrAmountNotPositive = errors.New("bill amount must be positive")

	// ErrMalformedImport rejects import documents missing either collection.
	ErrMalformedImport = errors.New("import document must contain both members and bills")
)
