package session

import (
	"path/filepath"
	"testing"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": db,
	}
}

func TestStoreGetSetClear(t *testing.T) {
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get("missing"); err != nil || ok {
				t.Fatalf("Get(missing) ok=%v err=%v, want absent", ok, err)
			}
			if err := s.Set("k", "v1"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set("k", "v2"); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			v, ok, err := s.Get("k")
			if err != nil || !ok || v != "v2" {
				t.Fatalf("Get(k) = %q, %v, %v; want v2", v, ok, err)
			}
			if err := s.Clear("k"); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, ok, _ := s.Get("k"); ok {
				t.Error("key still present after Clear")
			}
			if err := s.Clear("k"); err != nil {
				t.Errorf("Clear on absent key: %v", err)
			}
		})
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set(KeyAccessToken, "AT"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, ok, err := s.Get(KeyAccessToken)
	if err != nil || !ok || v != "AT" {
		t.Errorf("after reopen Get = %q, %v, %v; want AT", v, ok, err)
	}
}
