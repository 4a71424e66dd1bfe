package models

// Bill represents a shared expense paid by one member and split equally
// among the involved members.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// Title is the human-readable description (e.g. "Dinner", "Taxi").
	Title string `json:"title"`

	// Amount is the total paid. Must be positive.
	Amount float64 `json:"amount"`

	// PayerID is the member who paid the full amount. May dangle if the
	// member was removed elsewhere; the balance math still counts it.
	PayerID string `json:"payerId"`

	// InvolvedIDs lists the members splitting this bill, in display
	// order. Never empty while the bill exists.
	InvolvedIDs []string `json:"involvedIds"`

	// CreatedAt is the Unix millisecond timestamp when the bill was created.
	CreatedAt int64 `json:"createdAt"`
}

// Involves reports whether the given member ID is in the bill's split.
func (b *Bill) Involves(memberID string) bool {
	for _, id := range b.InvolvedIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
