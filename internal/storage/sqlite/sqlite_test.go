package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartsplit/smartsplit/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "smartsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("loads report absent before first save", func(t *testing.T) {
		if _, ok, err := store.LoadMembers(ctx); err != nil || ok {
			t.Errorf("LoadMembers = ok=%v err=%v, want absent without error", ok, err)
		}
		if _, ok, err := store.LoadBills(ctx); err != nil || ok {
			t.Errorf("LoadBills = ok=%v err=%v, want absent without error", ok, err)
		}
	})

	t.Run("save then load round-trips both collections", func(t *testing.T) {
		members := []models.Member{{ID: "m-1", Name: "Alice"}, {ID: "m-2", Name: "Bob"}}
		bills := []models.Bill{
			{ID: "b-1", Title: "Dinner", Amount: 300, PayerID: "m-1", InvolvedIDs: []string{"m-1", "m-2"}, CreatedAt: 1700000000000},
		}

		if err := store.SaveMembers(ctx, members); err != nil {
			t.Fatalf("SaveMembers failed: %v", err)
		}
		if err := store.SaveBills(ctx, bills); err != nil {
			t.Fatalf("SaveBills failed: %v", err)
		}

		gotMembers, ok, err := store.LoadMembers(ctx)
		if err != nil || !ok {
			t.Fatalf("LoadMembers = ok=%v err=%v", ok, err)
		}
		if len(gotMembers) != 2 || gotMembers[0].Name != "Alice" {
			t.Errorf("LoadMembers = %+v", gotMembers)
		}

		gotBills, ok, err := store.LoadBills(ctx)
		if err != nil || !ok {
			t.Fatalf("LoadBills = ok=%v err=%v", ok, err)
		}
		if len(gotBills) != 1 || gotBills[0].Amount != 300 || len(gotBills[0].InvolvedIDs) != 2 {
			t.Errorf("LoadBills = %+v", gotBills)
		}
	})

	t.Run("collections are stored independently", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.SaveMembers(ctx, []models.Member{{ID: "m-1", Name: "Alice"}}); err != nil {
			t.Fatalf("SaveMembers failed: %v", err)
		}

		if _, ok, _ := store.LoadBills(ctx); ok {
			t.Error("bills record should still be absent after saving members")
		}
	})

	t.Run("saves replace wholesale", func(t *testing.T) {
		if err := store.SaveBills(ctx, []models.Bill{}); err != nil {
			t.Fatalf("SaveBills failed: %v", err)
		}

		gotBills, ok, err := store.LoadBills(ctx)
		if err != nil || !ok {
			t.Fatalf("LoadBills = ok=%v err=%v", ok, err)
		}
		if len(gotBills) != 0 {
			t.Errorf("expected empty bill list after overwrite, got %d", len(gotBills))
		}
	})

	t.Run("reset deletes both records", func(t *testing.T) {
		if err := store.Reset(ctx); err != nil {
			t.Fatalf("Reset failed: %v", err)
		}
		if _, ok, _ := store.LoadMembers(ctx); ok {
			t.Error("members record survived reset")
		}
		if _, ok, _ := store.LoadBills(ctx); ok {
			t.Error("bills record survived reset")
		}
	})
}
