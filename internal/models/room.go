package models

// RoomDocument is the full-overwrite document shape shared between
// clients: the remote room stores exactly one of these per room ID, and
// file export/import uses the same JSON form. Every write replaces the
// whole document; there is no partial-field update.
type RoomDocument struct {
	Members   []Member `json:"members"`
	Bills     []Bill   `json:"bills"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Normalize replaces nil collections with empty ones so a document that
// arrived with missing fields is still safe to apply.
func (d *RoomDocument) Normalize() {
	if d.Members == nil {
		d.Members = []Member{}
	}
	if d.Bills == nil {
		d.Bills = []Bill{}
	}
}
