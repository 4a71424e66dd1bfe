// Package sync bridges the app state to a remote room: local mutations
// flow outward through a debounced full-document publish, inbound room
// documents are applied as remote-origin state, and a small status
// machine (offline, connecting, online, error) tells the UI which
// persistence strategy is currently authoritative.
package sync

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/smartsplit/smartsplit/internal/appstate"
	"github.com/smartsplit/smartsplit/internal/models"
	"github.com/smartsplit/smartsplit/internal/room"
)

// ErrNoRoomConfigured gates Connect when no room ID is available. This
// is a normal, expected state — the caller shows a setup prompt, not an
// error page.
var ErrNoRoomConfigured = errors.New("no room configured")

// ErrSessionActive means Connect was called while a session is already
// up; Disconnect first.
var ErrSessionActive = errors.New("room session already active")

const publishTimeout = 10 * time.Second

// DefaultDebounce is the quiet window over which rapid local edits
// coalesce into a single remote write.
const DefaultDebounce = 500 * time.Millisecond

// Coordinator runs one room session at a time over an appstate.App.
type Coordinator struct {
	app    *appstate.App
	client room.Client
	window time.Duration

	mu        gosync.Mutex
	status    models.SyncStatus
	roomID    string
	gen       int // session generation; stale callbacks carry an old one
	cancelSub func()
	pending   *Coalescer
	onStatus  func(models.SyncStatus)
}

// New creates a Coordinator in the offline state. window <= 0 selects
// DefaultDebounce.
func New(app *appstate.App, client room.Client, window time.Duration) *Coordinator {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Coordinator{
		app:    app,
		client: client,
		window: window,
		status: models.SyncOffline,
	}
}

// Status returns the current session status.
func (c *Coordinator) Status() models.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// OnStatusChange registers a callback invoked after every status
// transition. Pass nil to clear.
func (c *Coordinator) OnStatusChange(fn func(models.SyncStatus)) {
	c.mu.Lock()
	c.onStatus = fn
	c.mu.Unlock()
}

// Connect starts a room session: offline → connecting, then → online on
// the first inbound document. A subscribe failure transitions to error;
// the in-memory state is untouched either way.
func (c *Coordinator) Connect(ctx context.Context, roomID string) error {
	if roomID == "" {
		return ErrNoRoomConfigured
	}

	c.mu.Lock()
	if c.cancelSub != nil {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.gen++
	gen := c.gen
	c.roomID = roomID
	c.pending = NewCoalescer(c.window)
	c.mu.Unlock()

	c.setStatus(models.SyncConnecting)
	slog.Info("Connecting to room", "room_id", roomID)

	cancel, err := c.client.Subscribe(ctx, roomID, func(doc models.RoomDocument) {
		c.handleInbound(gen, doc)
	})
	if err != nil {
		c.setStatus(models.SyncError)
		return err
	}

	c.mu.Lock()
	if gen != c.gen {
		// Disconnected while the subscribe was in flight.
		c.mu.Unlock()
		cancel()
		return nil
	}
	c.cancelSub = cancel
	c.mu.Unlock()

	c.app.SetChangeListener(func(models.RoomDocument) {
		c.handleLocalChange(gen)
	})
	return nil
}

// Disconnect tears the session down: the subscription is cancelled so
// late inbound callbacks cannot mutate the store, any pending outbound
// write is dropped, and the status returns to offline.
func (c *Coordinator) Disconnect() {
	c.mu.Lock()
	c.gen++
	cancel := c.cancelSub
	pending := c.pending
	c.cancelSub = nil
	c.pending = nil
	c.roomID = ""
	c.mu.Unlock()

	c.app.SetChangeListener(nil)
	if pending != nil {
		pending.Stop()
	}
	if cancel != nil {
		cancel()
	}

	c.setStatus(models.SyncOffline)
	slog.Info("Disconnected from room")
}

// handleInbound applies a remote-origin document. The generation check
// cuts off callbacks that raced a Disconnect.
func (c *Coordinator) handleInbound(gen int, doc models.RoomDocument) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	wasConnecting := c.status == models.SyncConnecting
	c.mu.Unlock()

	// Remote-origin: ApplyRemote never re-triggers the change listener,
	// so the document is not echoed back out.
	c.app.ApplyRemote(doc)

	if wasConnecting {
		c.setStatus(models.SyncOnline)
		slog.Info("Room session online", "members", len(doc.Members), "bills", len(doc.Bills))
	}
}

// handleLocalChange schedules a debounced publish of the latest state.
// Only the last coalesced state is written — acceptable because the
// room document is an idempotent full overwrite, not an operation log.
func (c *Coordinator) handleLocalChange(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.status != models.SyncOnline {
		// Outbound propagation halts while not online (including the
		// error state, until the user explicitly reconnects).
		c.mu.Unlock()
		return
	}
	pending := c.pending
	c.mu.Unlock()

	pending.Schedule(func() { c.publish(gen) })
}

func (c *Coordinator) publish(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.status != models.SyncOnline {
		c.mu.Unlock()
		return
	}
	roomID := c.roomID
	c.mu.Unlock()

	// The document is captured at fire time, not schedule time, so the
	// write always carries the newest coalesced state.
	doc := c.app.Document()

	ctx, cancelCtx := context.WithTimeout(context.Background(), publishTimeout)
	defer cancelCtx()

	if err := c.client.Publish(ctx, roomID, doc); err != nil {
		slog.Error("Failed to publish to room", "room_id", roomID, "error", err)
		c.setStatus(models.SyncError)
	}
}

func (c *Coordinator) setStatus(status models.SyncStatus) {
	c.mu.Lock()
	if c.status == status {
		c.mu.Unlock()
		return
	}
	c.status = status
	fn := c.onStatus
	c.mu.Unlock()

	if fn != nil {
		fn(status)
	}
}
