package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreKV(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := store.Set("space-runner-highscore", "12"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := store.Set("space-runner-highscore", "40"); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}

	v, err := store.Get("space-runner-highscore")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if v != "40" {
		t.Errorf("Get() = %q, want %q", v, "40")
	}

	if err := store.Delete("space-runner-highscore"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get("space-runner-highscore"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete("space-runner-highscore"); err != nil {
		t.Errorf("Delete() of missing key failed: %v", err)
	}
}

func TestStorePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	v, err := store.Get("k")
	if err != nil || v != "v" {
		t.Errorf("Get() after reopen = %q, %v", v, err)
	}
}

func TestStoreListAndNamespace(t *testing.T) {
	store := openTestStore(t)

	alice := NewNamespace(store, "ssh:alice:")
	bob := NewNamespace(store, "ssh:bob:")

	if err := alice.Set("space-runner-highscore", "10"); err != nil {
		t.Fatal(err)
	}
	if err := alice.Set("space-runner-player-name", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := bob.Set("space-runner-highscore", "99"); err != nil {
		t.Fatal(err)
	}

	v, err := alice.Get("space-runner-highscore")
	if err != nil || v != "10" {
		t.Errorf("alice highscore = %q, %v; want 10", v, err)
	}
	v, err = bob.Get("space-runner-highscore")
	if err != nil || v != "99" {
		t.Errorf("bob highscore = %q, %v; want 99", v, err)
	}
	if _, err := bob.Get("space-runner-player-name"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob player name error = %v, want ErrNotFound", err)
	}

	keys, err := alice.List("space-runner-")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	want := []string{"space-runner-highscore", "space-runner-player-name"}
	if len(keys) != len(want) {
		t.Fatalf("List() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	all, err := store.List("ssh:")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("store.List(ssh:) = %v, want 3 keys", all)
	}
}

func TestStoreEntries(t *testing.T) {
	store := openTestStore(t)

	entries := []RemoteEntry{
		{ID: "a", UID: "u1", Name: "Bob", Score: 50, Timestamp: 1},
		{ID: "b", UID: "u1", Name: "bob", Score: 80, Timestamp: 2},
		{ID: "c", UID: "u2", Name: "Alice", Score: 60, Timestamp: 3},
		{ID: "d", UID: "u3", Name: "Carol", Score: 60, Timestamp: 0},
	}
	for _, e := range entries {
		if err := store.InsertEntry(e); err != nil {
			t.Fatalf("InsertEntry(%s) failed: %v", e.ID, err)
		}
	}

	if err := store.InsertEntry(entries[0]); err == nil {
		t.Error("InsertEntry() with duplicate id should fail")
	}

	n, err := store.CountEntries()
	if err != nil || n != 4 {
		t.Errorf("CountEntries() = %d, %v; want 4", n, err)
	}

	top, err := store.TopEntries(3)
	if err != nil {
		t.Fatalf("TopEntries() failed: %v", err)
	}
	wantIDs := []string{"b", "d", "c"}
	if len(top) != len(wantIDs) {
		t.Fatalf("TopEntries() returned %d entries, want %d", len(top), len(wantIDs))
	}
	for i, id := range wantIDs {
		if top[i].ID != id {
			t.Errorf("TopEntries()[%d].ID = %s, want %s", i, top[i].ID, id)
		}
	}
	if top[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()

	if _, err := kv.Get("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(x) error = %v, want ErrNotFound", err)
	}
	_ = kv.Set("b", "2")
	_ = kv.Set("a", "1")
	_ = kv.Set("other", "3")

	keys, _ := kv.List("")
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("List() = %v, want sorted keys", keys)
	}

	_ = kv.Delete("a")
	if _, err := kv.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(a) after Delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreIdentities(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LookupIdentity("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LookupIdentity(unknown) error = %v, want ErrNotFound", err)
	}
	if err := store.SaveIdentity("uid-1", "token-1"); err != nil {
		t.Fatalf("SaveIdentity() failed: %v", err)
	}
	uid, err := store.LookupIdentity("token-1")
	if err != nil || uid != "uid-1" {
		t.Errorf("LookupIdentity() = %q, %v; want uid-1", uid, err)
	}
}
