package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestMemStoreCreateAndCommit(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	addr := solana.NewWallet().PublicKey()

	unit, err := store.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := unit.Create(addr, 8); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := unit.Put(addr, []byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := unit.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	unit, _ = store.Begin(ctx)
	data, err := unit.Get(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(data) != 8 || data[0] != 1 {
		t.Errorf("unexpected data %v", data)
	}
}

func TestMemStoreExclusiveCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	addr := solana.NewWallet().PublicKey()

	unit, _ := store.Begin(ctx)
	if err := unit.Create(addr, 4); err != nil {
		t.Fatal(err)
	}
	if err := unit.Commit(); err != nil {
		t.Fatal(err)
	}

	unit, _ = store.Begin(ctx)
	if err := unit.Create(addr, 4); !errors.Is(err, ErrAlreadyInUse) {
		t.Errorf("expected ErrAlreadyInUse, got %v", err)
	}
}

func TestMemStoreRacingUnitsSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	addr := solana.NewWallet().PublicKey()

	first, _ := store.Begin(ctx)
	second, _ := store.Begin(ctx)

	if err := first.Create(addr, 4); err != nil {
		t.Fatal(err)
	}
	if err := second.Create(addr, 4); err != nil {
		t.Fatal(err)
	}

	if err := first.Commit(); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := second.Commit(); !errors.Is(err, ErrAlreadyInUse) {
		t.Errorf("expected second commit to lose, got %v", err)
	}
}

func TestMemStoreRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	addr := solana.NewWallet().PublicKey()

	unit, _ := store.Begin(ctx)
	if err := unit.Create(addr, 4); err != nil {
		t.Fatal(err)
	}
	if err := unit.Rollback(); err != nil {
		t.Fatal(err)
	}

	unit, _ = store.Begin(ctx)
	if _, err := unit.Get(addr); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestMemStorePutUnknownAddress(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	unit, _ := store.Begin(ctx)
	err := unit.Put(solana.NewWallet().PublicKey(), []byte{1})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
