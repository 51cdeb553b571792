package storage

import (
	"bytes"
	"testing"
)

func TestPrefixDBIsolation(t *testing.T) {
	inner := NewMemory()
	wallets := NewPrefixDB(inner, []byte("w/"))
	txs := NewPrefixDB(inner, []byte("t/"))

	if err := wallets.Put([]byte("0xA"), []byte("wallet")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := txs.Put([]byte("0xA"), []byte("tx")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	val, err := wallets.Get([]byte("0xA"))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !bytes.Equal(val, []byte("wallet")) {
		t.Errorf("wallets.Get() = %q, want %q", val, "wallet")
	}

	val, err = txs.Get([]byte("0xA"))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !bytes.Equal(val, []byte("tx")) {
		t.Errorf("txs.Get() = %q, want %q", val, "tx")
	}

	// Keys in the inner DB carry the namespace prefix.
	if ok, _ := inner.Has([]byte("w/0xA")); !ok {
		t.Error("inner DB missing namespaced wallet key")
	}
	if ok, _ := inner.Has([]byte("t/0xA")); !ok {
		t.Error("inner DB missing namespaced tx key")
	}
}

func TestPrefixDBForEachStripsPrefix(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("w/"))

	db.Put([]byte("a"), []byte("1"))
	db.Put([]byte("b"), []byte("2"))
	inner.Put([]byte("t/c"), []byte("3")) // Different namespace, must not appear.

	var keys []string
	err := db.ForEach(nil, func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach() error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("ForEach() visited %d keys, want 2", len(keys))
	}
	for _, k := range keys {
		if k != "a" && k != "b" {
			t.Errorf("ForEach() yielded unexpected key %q", k)
		}
	}
}
