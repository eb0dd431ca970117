package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openBackends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(filepath.Join(dir, "pet.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	bolt, err := OpenBolt(filepath.Join(dir, "pet.bolt"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlite.Close()
		_ = bolt.Close()
	})

	return map[string]KV{
		BackendSQLite: sqlite,
		BackendBolt:   bolt,
		BackendMemory: NewMemory(),
	}
}

func TestGetMissingKey(t *testing.T) {
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(context.Background(), "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSetThenGetOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set(ctx, "profile", []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set(ctx, "profile", []byte(`{"v":2}`)); err != nil {
				t.Fatalf("Set again: %v", err)
			}
			got, err := kv.Get(ctx, "profile")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"v":2}` {
				t.Fatalf("Get = %s, want {\"v\":2}", got)
			}
		})
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set(ctx, "  ", []byte("x")); err == nil {
				t.Fatal("Set with blank key succeeded")
			}
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "pet.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("hello")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Get after reopen = %q, want hello", got)
	}
}

func TestBoltGetHonorsCanceledContext(t *testing.T) {
	kv := openBackends(t)[BackendBolt]
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Get err = %v, want context.Canceled", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Fatal("Open(redis) succeeded, want error")
	}
}

func TestMemoryFailWrites(t *testing.T) {
	m := NewMemory()
	m.FailWrites = errors.New("disk full")
	if err := m.Set(context.Background(), "k", []byte("v")); err == nil {
		t.Fatal("Set succeeded with FailWrites")
	}
}
