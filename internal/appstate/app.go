// Package appstate owns the canonical (members, bills) state and routes
// every mutation through exactly one of the persistence strategies:
// the durable local record, or a shared remote room session.
//
// The App is an explicitly constructed object with an init/teardown
// contract: New resolves the initial state, Close flushes pending
// writes. There are no package-level singletons.
//
// Provenance: mutations made through the public operations are
// local-origin — they persist locally (when local storage is
// authoritative) and notify the change listener so a sync coordinator
// can propagate them. Documents applied via ApplyRemote are
// remote-origin — they replace the state without persisting or
// notifying, which is what prevents two clients from echoing each
// other's updates forever.
package appstate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartsplit/smartsplit/internal/calculator"
	"github.com/smartsplit/smartsplit/internal/models"
	"github.com/smartsplit/smartsplit/internal/snapshot"
	"github.com/smartsplit/smartsplit/internal/storage"
)

// Options configures the initial state resolution for New.
type Options struct {
	// Local is the durable local record. May be nil (state is then
	// memory-only unless a remote session takes over).
	Local storage.Store

	// RemoteSession marks that a room ID was present in the launch
	// parameters. Local storage is bypassed entirely for the session;
	// the sync coordinator supplies the state.
	RemoteSession bool

	// SnapshotToken is the snapshot token from the launch URL, already
	// query-unescaped. Consumed once; an invalid token falls through to
	// the next source.
	SnapshotToken string
}

// App holds the single canonical (members, bills) pair. All reads
// return copies; nothing outside this package mutates shared state.
type App struct {
	mu      sync.Mutex
	members []models.Member
	bills   []models.Bill

	local  storage.Store // nil or ignored during a remote session
	remote bool

	onChange func(models.RoomDocument)

	seq uint64 // mutation sequence, under mu

	persistMu       sync.Mutex
	savedMembersSeq uint64 // under persistMu
	savedBillsSeq   uint64 // under persistMu
	persists        sync.WaitGroup
}

// New constructs the App and resolves initial state by priority:
// remote session > snapshot token > durable local record > default
// roster. Load failures are recovered by falling through to the next
// source, never fatal.
func New(ctx context.Context, opts Options) *App {
	a := &App{
		local:  opts.Local,
		remote: opts.RemoteSession,
	}

	if opts.RemoteSession {
		// The room document is authoritative; start empty and let the
		// sync coordinator apply the first inbound snapshot.
		a.members = []models.Member{}
		a.bills = []models.Bill{}
		slog.Info("State deferred to remote room session")
		return a
	}

	if opts.SnapshotToken != "" {
		if data := snapshot.Decode(opts.SnapshotToken); data != nil {
			a.members = data.Members
			a.bills = data.Bills
			slog.Info("State adopted from snapshot token",
				"members", len(data.Members),
				"bills", len(data.Bills),
			)
			a.committed(true, true)
			return a
		}
		slog.Warn("Ignoring invalid snapshot token in launch parameters")
	}

	a.loadFromLocal(ctx)
	return a
}

func (a *App) loadFromLocal(ctx context.Context) {
	a.members = nil
	a.bills = nil

	if a.local != nil {
		members, ok, err := a.local.LoadMembers(ctx)
		if err != nil {
			slog.Warn("Failed to load members, using default roster", "error", err)
		} else if ok {
			a.members = members
		}

		bills, ok, err := a.local.LoadBills(ctx)
		if err != nil {
			slog.Warn("Failed to load bills, starting empty", "error", err)
		} else if ok {
			a.bills = bills
		}
	}

	if a.members == nil {
		a.members = models.DefaultRoster()
	}
	if a.bills == nil {
		a.bills = []models.Bill{}
	}
}

// Close waits for in-flight persistence to finish. Call on teardown.
func (a *App) Close() {
	a.persists.Wait()
}

// SetChangeListener registers the callback invoked with the full
// document after every local-origin mutation. Pass nil to stop
// delivery; the sync coordinator does this on disconnect.
func (a *App) SetChangeListener(fn func(models.RoomDocument)) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// Members returns a copy of the member list in display order.
func (a *App) Members() []models.Member {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyMembers(a.members)
}

// Bills returns a copy of the bill list in display order.
func (a *App) Bills() []models.Bill {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyBills(a.bills)
}

// Document returns the full-overwrite document for export or publishing.
func (a *App) Document() models.RoomDocument {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.documentLocked()
}

func (a *App) documentLocked() models.RoomDocument {
	return models.RoomDocument{
		Members:   copyMembers(a.members),
		Bills:     copyBills(a.bills),
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// Settlement computes the current balances and the minimal transfer
// plan from a consistent snapshot of the state.
func (a *App) Settlement() ([]models.Balance, []models.Transaction) {
	a.mu.Lock()
	bills := copyBills(a.bills)
	members := copyMembers(a.members)
	a.mu.Unlock()

	summary := calculator.SummarizeBalances(bills, members)
	return summary, calculator.PlanSettlement(summary)
}

// AddMember appends a new member with a generated ID.
func (a *App) AddMember(name string) models.Member {
	member := models.Member{ID: uuid.New().String(), Name: name}

	a.mu.Lock()
	a.members = append(a.members, member)
	a.mu.Unlock()

	a.committed(true, false)
	return member
}

// RenameMember changes a member's display name. The ID never changes.
func (a *App) RenameMember(id, name string) error {
	a.mu.Lock()
	found := false
	for i := range a.members {
		if a.members[i].ID == id {
			a.members[i].Name = name
			found = true
			break
		}
	}
	a.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	a.committed(true, false)
	return nil
}

// RemoveMember deletes a member and strips their ID from every bill's
// participant list. Bills are never auto-deleted: a bill whose
// participants would become empty has them reassigned to its payer. The
// removal is refused outright when the member is both payer and sole
// participant of some bill, or when fewer than two members would
// remain. The cascade is atomic — either everything applies or nothing.
func (a *App) RemoveMember(id string) error {
	a.mu.Lock()

	idx := -1
	for i := range a.members {
		if a.members[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		a.mu.Unlock()
		return ErrNotFound
	}
	if len(a.members) <= 2 {
		a.mu.Unlock()
		return ErrLastMembers
	}

	// Stage the cascade before touching anything.
	newBills := copyBills(a.bills)
	for i := range newBills {
		bill := &newBills[i]
		if !bill.Involves(id) {
			continue
		}

		kept := bill.InvolvedIDs[:0]
		for _, mid := range bill.InvolvedIDs {
			if mid != id {
				kept = append(kept, mid)
			}
		}
		if len(kept) == 0 {
			if bill.PayerID == id {
				a.mu.Unlock()
				return ErrPayerRemoval
			}
			// Remainder policy: the payer absorbs the whole bill.
			kept = append(kept, bill.PayerID)
		}
		bill.InvolvedIDs = kept
	}

	a.members = append(a.members[:idx], a.members[idx+1:]...)
	a.bills = newBills
	a.mu.Unlock()

	a.committed(true, true)
	return nil
}

// AddBill creates a bill with a generated ID and timestamp, validating
// the amount and participant invariants up front. New bills go to the
// front of the list (newest-first display order).
func (a *App) AddBill(title string, amount float64, payerID string, involvedIDs []string) (models.Bill, error) {
	if amount <= 0 {
		return models.Bill{}, ErrAmountNotPositive
	}
	if len(involvedIDs) == 0 {
		return models.Bill{}, ErrEmptyInvolved
	}

	bill := models.Bill{
		ID:          uuid.New().String(),
		Title:       title,
		Amount:      amount,
		PayerID:     payerID,
		InvolvedIDs: append([]string(nil), involvedIDs...),
		CreatedAt:   time.Now().UnixMilli(),
	}

	a.mu.Lock()
	a.bills = append([]models.Bill{bill}, a.bills...)
	a.mu.Unlock()

	a.committed(false, true)
	return bill, nil
}

// UpdateBill replaces an existing bill wholesale, under the same
// invariants as AddBill.
func (a *App) UpdateBill(bill models.Bill) error {
	if bill.Amount <= 0 {
		return ErrAmountNotPositive
	}
	if len(bill.InvolvedIDs) == 0 {
		return ErrEmptyInvolved
	}
	bill.InvolvedIDs = append([]string(nil), bill.InvolvedIDs...)

	a.mu.Lock()
	found := false
	for i := range a.bills {
		if a.bills[i].ID == bill.ID {
			a.bills[i] = bill
			found = true
			break
		}
	}
	a.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	a.committed(false, true)
	return nil
}

// DeleteBill removes a bill by ID.
func (a *App) DeleteBill(id string) error {
	a.mu.Lock()
	found := false
	for i := range a.bills {
		if a.bills[i].ID == id {
			a.bills = append(a.bills[:i], a.bills[i+1:]...)
			found = true
			break
		}
	}
	a.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	a.committed(false, true)
	return nil
}

// ImportData adopts an exported file document wholesale. The document
// must carry both collections or it is rejected as malformed; the
// overwrite confirmation is the caller's responsibility.
func (a *App) ImportData(doc models.RoomDocument) error {
	if doc.Members == nil || doc.Bills == nil {
		return ErrMalformedImport
	}

	a.mu.Lock()
	a.members = copyMembers(doc.Members)
	a.bills = copyBills(doc.Bills)
	a.mu.Unlock()

	a.committed(true, true)
	return nil
}

// ResetAll restores the default roster, clears all bills, and wipes the
// durable local record.
func (a *App) ResetAll(ctx context.Context) error {
	a.mu.Lock()
	a.members = models.DefaultRoster()
	a.bills = []models.Bill{}
	a.mu.Unlock()

	if a.local != nil && !a.remote {
		if err := a.local.Reset(ctx); err != nil {
			return err
		}
	}

	a.notifyChange()
	return nil
}

// ApplyRemote replaces the state with a remote-origin document. It is
// neither persisted locally (the room is authoritative) nor re-sent
// through the change listener, suppressing the echo loop between
// clients.
func (a *App) ApplyRemote(doc models.RoomDocument) {
	doc.Normalize()

	a.mu.Lock()
	a.members = copyMembers(doc.Members)
	a.bills = copyBills(doc.Bills)
	a.mu.Unlock()
}

// committed runs the local-origin side effects of a mutation: async
// persistence of the changed collections, then the change notification.
// Each snapshot carries its mutation sequence number, so a slow earlier
// save can never overwrite a newer one in the durable record.
func (a *App) committed(membersChanged, billsChanged bool) {
	if a.local != nil && !a.remote {
		a.mu.Lock()
		a.seq++
		seq := a.seq
		var members []models.Member
		var bills []models.Bill
		if membersChanged {
			members = copyMembers(a.members)
		}
		if billsChanged {
			bills = copyBills(a.bills)
		}
		a.mu.Unlock()

		a.persists.Add(1)
		go a.persist(seq, members, bills, membersChanged, billsChanged)
	}

	a.notifyChange()
}

// persist writes the snapshot taken at mutation seq. Writes are
// serialized under persistMu; a snapshot older than what is already
// saved is skipped.
func (a *App) persist(seq uint64, members []models.Member, bills []models.Bill, membersChanged, billsChanged bool) {
	defer a.persists.Done()

	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	ctx := context.Background()
	if membersChanged && seq > a.savedMembersSeq {
		if err := a.local.SaveMembers(ctx, members); err != nil {
			slog.Error("Failed to persist members", "error", err)
		} else {
			a.savedMembersSeq = seq
		}
	}
	if billsChanged && seq > a.savedBillsSeq {
		if err := a.local.SaveBills(ctx, bills); err != nil {
			slog.Error("Failed to persist bills", "error", err)
		} else {
			a.savedBillsSeq = seq
		}
	}
}

func (a *App) notifyChange() {
	a.mu.Lock()
	fn := a.onChange
	doc := a.documentLocked()
	a.mu.Unlock()

	if fn != nil {
		fn(doc)
	}
}

func copyMembers(members []models.Member) []models.Member {
	out := make([]models.Member, len(members))
	copy(out, members)
	return out
}

func copyBills(bills []models.Bill) []models.Bill {
	out := make([]models.Bill, len(bills))
	for i, b := range bills {
		b.InvolvedIDs = append([]string(nil), b.InvolvedIDs...)
		out[i] = b
	}
	return out
}
