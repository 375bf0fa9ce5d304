package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestKV(t *testing.T) *KVStore {
	t.Helper()
	kv, err := NewKVStore(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("open kv store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestKVStorePutGet(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if err := kv.Put(ctx, KeyTrips, []byte(`[{"id":"t1"}]`)); err != nil {
		t.Fatal(err)
	}
	got, err := kv.Get(ctx, KeyTrips)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `[{"id":"t1"}]` {
		t.Errorf("got %s", got)
	}
}

func TestKVStoreUpsert(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if err := kv.Put(ctx, KeyDataVersion, []byte(`"1.0.0"`)); err != nil {
		t.Fatal(err)
	}
	if err := kv.Put(ctx, KeyDataVersion, []byte(`"1.0.2"`)); err != nil {
		t.Fatal(err)
	}
	got, err := kv.Get(ctx, KeyDataVersion)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `"1.0.2"` {
		t.Errorf("got %s, want the second write", got)
	}
}

func TestKVStoreMissingKey(t *testing.T) {
	kv := newTestKV(t)
	_, err := kv.Get(context.Background(), "nope")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStoreDelete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if err := kv.Put(ctx, KeySelectedYear, []byte("2025")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, KeySelectedYear); err != nil {
		t.Fatal(err)
	}
	if _, err := kv.Get(ctx, KeySelectedYear); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("err = %v, want ErrKeyNotFound after delete", err)
	}
}
