package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testSession() Session {
	return Session{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		User: UserProfile{
			ID:          "user-1",
			DisplayName: "Ada",
			Email:       "ada@example.com",
			CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return NewFileStore(path, zerolog.Nop())
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save then load round-trips", func(t *testing.T) {
		store := newTestFileStore(t)
		want := testSession()

		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, ok := store.Load(ctx)
		if !ok {
			t.Fatal("Expected session to be present after save")
		}
		if got != want {
			t.Errorf("Got session %+v, want %+v", got, want)
		}
	})

	t.Run("load with no file reports absent", func(t *testing.T) {
		store := newTestFileStore(t)

		if _, ok := store.Load(ctx); ok {
			t.Error("Expected no session from empty store")
		}
		if store.IsAuthenticated(ctx) {
			t.Error("Expected IsAuthenticated to be false for empty store")
		}
	})

	t.Run("corrupt file treated as absent", func(t *testing.T) {
		store := newTestFileStore(t)
		if err := os.WriteFile(store.path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, ok := store.Load(ctx); ok {
			t.Error("Expected corrupt session file to read as absent")
		}
	})

	t.Run("corrupt user profile keeps tokens", func(t *testing.T) {
		store := newTestFileStore(t)
		raw := `{"trailstory_token":"tok","trailstory_refresh_token":"ref","trailstory_user":"{broken"}`
		if err := os.WriteFile(store.path, []byte(raw), 0o600); err != nil {
			t.Fatal(err)
		}

		got, ok := store.Load(ctx)
		if !ok {
			t.Fatal("Expected session with valid tokens to load")
		}
		if got.AccessToken != "tok" || got.RefreshToken != "ref" {
			t.Errorf("Got tokens %q/%q, want tok/ref", got.AccessToken, got.RefreshToken)
		}
		if got.User != (UserProfile{}) {
			t.Errorf("Expected zero user profile, got %+v", got.User)
		}
	})

	t.Run("save overwrites prior session wholesale", func(t *testing.T) {
		store := newTestFileStore(t)
		if err := store.Save(ctx, testSession()); err != nil {
			t.Fatal(err)
		}

		replacement := Session{AccessToken: "new-access", RefreshToken: "new-refresh"}
		if err := store.Save(ctx, replacement); err != nil {
			t.Fatal(err)
		}

		got, ok := store.Load(ctx)
		if !ok {
			t.Fatal("Expected session after overwrite")
		}
		if got.User.Email != "" {
			t.Errorf("Expected old profile gone, got %+v", got.User)
		}
		if got.AccessToken != "new-access" {
			t.Errorf("Got access token %q, want new-access", got.AccessToken)
		}
	})

	t.Run("clear removes session and is idempotent", func(t *testing.T) {
		store := newTestFileStore(t)
		if err := store.Save(ctx, testSession()); err != nil {
			t.Fatal(err)
		}

		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if _, ok := store.Load(ctx); ok {
			t.Error("Expected no session after clear")
		}
		if err := store.Clear(ctx); err != nil {
			t.Errorf("Second clear should be a no-op, got %v", err)
		}
	})

	t.Run("session file is private", func(t *testing.T) {
		store := newTestFileStore(t)
		if err := store.Save(ctx, testSession()); err != nil {
			t.Fatal(err)
		}

		info, err := os.Stat(store.path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("Got session file mode %o, want 600", perm)
		}
	})
}
