package models

// Balance is a member's net position across all bills.
// Derived by the calculator, never persisted.
type Balance struct {
	// MemberID identifies the member. May be a dangling payer ID.
	MemberID string `json:"memberId"`

	// Balance is the net amount: positive = owed money, negative = owes money.
	Balance float64 `json:"balance"`
}

// Transaction is a single transfer in a settlement plan.
// Derived by the planner, never persisted.
type Transaction struct {
	// FromID is the member paying (debtor settling up).
	FromID string `json:"fromId"`

	// ToID is the member receiving (creditor being paid).
	ToID string `json:"toId"`

	// Amount is the transfer amount, rounded to 2 decimal places. Always positive.
	Amount float64 `json:"amount"`
}
