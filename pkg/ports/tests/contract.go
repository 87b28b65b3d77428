package tests

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
)

// SessionStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.SessionStore.
func SessionStoreContractTest(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	// 1. Load non-existent session
	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-session")
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	// 2. Save and Load round trip
	t.Run("Save_Load", func(t *testing.T) {
		sess := domain.NewSession("contract-a")
		sess.Begin(domain.KindAffidavit)
		sess.Facts.Set("full_name", "Jane Doe")
		sess.PendingField = "address"

		if err := store.Save(ctx, sess.ID, sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := store.Load(ctx, sess.ID)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.State != domain.StateCollecting {
			t.Errorf("state mismatch: got %q", loaded.State)
		}
		if loaded.Kind != domain.KindAffidavit {
			t.Errorf("kind mismatch: got %q", loaded.Kind)
		}
		if loaded.Facts["full_name"] != "Jane Doe" {
			t.Errorf("facts mismatch: got %v", loaded.Facts)
		}
		if loaded.PendingField != "address" {
			t.Errorf("pending field mismatch: got %q", loaded.PendingField)
		}
	})

	// 3. Stored sessions are isolated from caller mutation
	t.Run("Isolation", func(t *testing.T) {
		sess := domain.NewSession("contract-b")
		sess.Facts.Set("purpose", "for travel")
		if err := store.Save(ctx, sess.ID, sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		sess.Facts.Set("purpose", "mutated")

		loaded, err := store.Load(ctx, sess.ID)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.Facts["purpose"] != "for travel" {
			t.Errorf("store shares memory with caller: got %q", loaded.Facts["purpose"])
		}
	})

	// 4. List
	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		sort.Strings(ids)
		want := map[string]bool{"contract-a": false, "contract-b": false}
		for _, id := range ids {
			if _, ok := want[id]; ok {
				want[id] = true
			}
		}
		for id, found := range want {
			if !found {
				t.Errorf("session %s missing from list %v", id, ids)
			}
		}
	})

	// 5. Delete
	t.Run("Delete", func(t *testing.T) {
		for _, id := range []string{"contract-a", "contract-b"} {
			if err := store.Delete(ctx, id); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if _, err := store.Load(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
			}
		}
		if err := store.Delete(ctx, "never-existed"); err != nil {
			t.Errorf("deleting a missing session should not fail: %v", err)
		}
	})
}
