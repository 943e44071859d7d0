package storage

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/julianstephens/habitgrid/internal/models"
)

func newTestProviders(t *testing.T) map[string]Provider {
	t.Helper()
	dir := t.TempDir()
	return map[string]Provider{
		"json":   NewJSONStore(filepath.Join(dir, "cache.json"), zap.NewNop()),
		"sqlite": NewSQLiteStore(filepath.Join(dir, "cache.db"), zap.NewNop()),
	}
}

func sampleDocument() models.Document {
	doc := models.NewDocument()
	doc.HabitsByMonth["2024-01"] = []string{"Run", "Read"}
	doc.Completions["2024-01-02"] = []string{"Run"}
	doc.ProductiveHours["2024-01-02"] = "6.30"
	return doc
}

func TestProvider_DocumentRoundTrip(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Init(); err != nil {
				t.Fatalf("Init: %v", err)
			}
			defer store.Close()

			if _, ok := store.ReadDocument("u1"); ok {
				t.Fatal("expected miss before any write")
			}

			if err := store.WriteDocument("u1", sampleDocument()); err != nil {
				t.Fatalf("WriteDocument: %v", err)
			}

			got, ok := store.ReadDocument("u1")
			if !ok {
				t.Fatal("expected hit after write")
			}
			if len(got.HabitsByMonth["2024-01"]) != 2 {
				t.Errorf("habits lost in round trip: %v", got.HabitsByMonth)
			}
			if got.Completions["2024-01-02"][0] != "Run" {
				t.Errorf("completions lost in round trip: %v", got.Completions)
			}
			if got.ProductiveHours["2024-01-02"] != "6.30" {
				t.Errorf("hours lost in round trip: %v", got.ProductiveHours)
			}

			// Documents are namespaced per identity.
			if _, ok := store.ReadDocument("u2"); ok {
				t.Error("expected miss for a different identity")
			}

			if err := store.Clear("u1"); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, ok := store.ReadDocument("u1"); ok {
				t.Error("expected miss after Clear")
			}
		})
	}
}

func TestProvider_SessionRoundTrip(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Init(); err != nil {
				t.Fatalf("Init: %v", err)
			}
			defer store.Close()

			if _, ok := store.GetSession(); ok {
				t.Fatal("expected no session in a fresh cache")
			}

			sess := Session{
				Token: "tok-123",
				Identity: models.Identity{
					ID:       "u1",
					Email:    "a@example.com",
					Username: "@alice",
				},
			}
			if err := store.SaveSession(sess); err != nil {
				t.Fatalf("SaveSession: %v", err)
			}

			got, ok := store.GetSession()
			if !ok {
				t.Fatal("expected session after save")
			}
			if got.Token != "tok-123" || got.Identity.Username != "@alice" {
				t.Errorf("session corrupted in round trip: %+v", got)
			}

			if err := store.ClearSession(); err != nil {
				t.Fatalf("ClearSession: %v", err)
			}
			if _, ok := store.GetSession(); ok {
				t.Error("expected no session after clear")
			}
		})
	}
}

func TestProvider_InitTwiceErrors_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewJSONStore(path, zap.NewNop())
	if err := store.Init(); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if err := store.Init(); err == nil {
		t.Error("expected error initializing over an existing cache")
	}
}

func TestJSONStore_CorruptedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewJSONStore(path, zap.NewNop())
	if err := store.Load(); err != nil {
		t.Fatalf("Load over corrupted file should fail soft, got: %v", err)
	}
	if _, ok := store.ReadDocument("u1"); ok {
		t.Error("expected miss from a corrupted cache")
	}
	// The store stays writable after recovering.
	if err := store.WriteDocument("u1", sampleDocument()); err != nil {
		t.Fatalf("WriteDocument after recovery: %v", err)
	}
	if _, ok := store.ReadDocument("u1"); !ok {
		t.Error("expected hit after rewriting the recovered cache")
	}
}

func TestSQLiteStore_CorruptedPayloadIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store := NewSQLiteStore(path, zap.NewNop())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer store.Close()

	_, err := store.GetDB().Exec(
		"INSERT INTO documents (identity_id, payload, updated_at) VALUES (?, ?, ?)",
		"u1", "{broken", "2024-01-01T00:00:00Z",
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := store.ReadDocument("u1"); ok {
		t.Error("expected corrupted payload to read as a miss")
	}
}

func TestLoad_NotInitialized(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Load(); err == nil {
				t.Error("expected error loading an uninitialized cache")
			}
		})
	}
}
