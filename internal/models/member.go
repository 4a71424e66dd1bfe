package models

import "fmt"

// Member represents one person in the expense-sharing group.
type Member struct {
	// ID is the unique identifier for the member. Immutable once created.
	ID string `json:"id"`

	// Name is the display name. Renaming is allowed; the ID never changes.
	Name string `json:"name"`
}

// DefaultRosterSize is the number of members created when the app starts
// with no prior state from any source.
const DefaultRosterSize = 11

// DefaultRoster returns the fixed fallback member set used only when no
// snapshot, room, or locally persisted state applies.
func DefaultRoster() []Member {
	members := make([]Member, DefaultRosterSize)
	for i := range members {
		members[i] = Member{
			ID:   fmt.Sprintf("m-%d", i+1),
			Name: fmt.Sprintf("Member %d", i+1),
		}
	}
	return members
}
