package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeJSONCache(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "cache.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateAndList(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONCache(t, dir, `{"version":1}`)
	mgr := NewManager(path)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(backupPath), BackupFilePrefix) {
		t.Errorf("unexpected backup name: %s", backupPath)
	}
	if !strings.HasSuffix(backupPath, ".json") {
		t.Errorf("backup suffix should follow the cache extension, got %s", backupPath)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if backups[0].Size == 0 {
		t.Error("expected non-empty backup")
	}
}

func TestCreate_MissingCache(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "cache.json"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error backing up a missing cache")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONCache(t, dir, `{"version":1,"documents":{"u1":{}}}`)
	mgr := NewManager(path)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	// Wreck the live cache, then restore the snapshot.
	if err := os.WriteFile(path, []byte(`{"version":1,"documents":{}}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Restore(backupPath); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"u1"`) {
		t.Error("expected restored cache to hold the snapshotted content")
	}
}

func TestRestore_RejectsInvalidSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONCache(t, dir, `{"version":1}`)
	mgr := NewManager(path)

	bad := filepath.Join(dir, "backups", "habitgrid-20240101-0000.json")
	if err := os.MkdirAll(filepath.Dir(bad), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Restore(bad); err == nil {
		t.Error("expected restore to reject a corrupted snapshot")
	}
}

func TestList_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONCache(t, dir, `{"version":1}`)
	mgr := NewManager(path)

	if _, err := mgr.Create(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "habitgrid-garbage.json", "other-20240101-0000.json"} {
		if err := os.WriteFile(filepath.Join(mgr.BackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("expected foreign files to be ignored, got %d entries", len(backups))
	}
}
