package models

// SyncStatus describes the state of the remote-room session and governs
// which persistence strategy is authoritative.
type SyncStatus string

const (
	// SyncOffline means no room session; local durable storage is authoritative.
	SyncOffline SyncStatus = "offline"

	// SyncConnecting means a subscribe is in flight but no document has
	// arrived yet.
	SyncConnecting SyncStatus = "connecting"

	// SyncOnline means the room is live; the remote document is authoritative.
	SyncOnline SyncStatus = "online"

	// SyncError means the transport failed unrecoverably. In-memory state
	// is kept; outbound propagation halts until the user reconnects.
	SyncError SyncStatus = "error"
)
