package session

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trip", func(t *testing.T) {
		store := NewMemoryStore()
		want := testSession()

		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, ok := store.Load(ctx)
		if !ok {
			t.Fatal("Expected session to be present")
		}
		if got != want {
			t.Errorf("Got session %+v, want %+v", got, want)
		}
		if !store.IsAuthenticated(ctx) {
			t.Error("Expected IsAuthenticated after save")
		}
	})

	t.Run("empty store reports absent", func(t *testing.T) {
		store := NewMemoryStore()
		if _, ok := store.Load(ctx); ok {
			t.Error("Expected no session from fresh store")
		}
	})

	t.Run("session without access token reports absent", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Save(ctx, Session{RefreshToken: "only-refresh"}); err != nil {
			t.Fatal(err)
		}
		if store.IsAuthenticated(ctx) {
			t.Error("Expected unauthenticated without access token")
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Save(ctx, testSession()); err != nil {
			t.Fatal(err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Errorf("Second clear should succeed, got %v", err)
		}
		if _, ok := store.Load(ctx); ok {
			t.Error("Expected no session after clear")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		store := NewMemoryStore()
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				_ = store.Save(ctx, testSession())
				store.Load(ctx)
				store.IsAuthenticated(ctx)
				_ = store.Clear(ctx)
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}
	})
}
