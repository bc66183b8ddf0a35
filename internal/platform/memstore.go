package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// MemStore is an in-memory AccountStore. Units buffer their writes and apply
// them on commit under one lock, re-checking creations so that of two racing
// units creating the same address only the first can commit.
type MemStore struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[solana.PublicKey][]byte)}
}

func (s *MemStore) Begin(ctx context.Context) (Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memUnit{
		store:   s,
		created: make(map[solana.PublicKey]struct{}),
		writes:  make(map[solana.PublicKey][]byte),
	}, nil
}

type memUnit struct {
	store   *MemStore
	created map[solana.PublicKey]struct{}
	writes  map[solana.PublicKey][]byte
	done    bool
}

func (u *memUnit) Create(addr solana.PublicKey, size int) error {
	if u.done {
		return fmt.Errorf("unit is closed")
	}
	u.store.mu.Lock()
	_, occupied := u.store.accounts[addr]
	u.store.mu.Unlock()
	if occupied {
		return ErrAlreadyInUse
	}
	if _, ok := u.writes[addr]; ok {
		return ErrAlreadyInUse
	}
	u.created[addr] = struct{}{}
	u.writes[addr] = make([]byte, size)
	return nil
}

func (u *memUnit) Get(addr solana.PublicKey) ([]byte, error) {
	if data, ok := u.writes[addr]; ok {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	data, ok := u.store.accounts[addr]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (u *memUnit) Put(addr solana.PublicKey, data []byte) error {
	if u.done {
		return fmt.Errorf("unit is closed")
	}
	if _, ok := u.writes[addr]; !ok {
		u.store.mu.Lock()
		_, exists := u.store.accounts[addr]
		u.store.mu.Unlock()
		if !exists {
			return ErrAccountNotFound
		}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	u.writes[addr] = buf
	return nil
}

func (u *memUnit) Commit() error {
	if u.done {
		return fmt.Errorf("unit is closed")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for addr := range u.created {
		if _, occupied := u.store.accounts[addr]; occupied {
			u.done = true
			return ErrAlreadyInUse
		}
	}
	for addr, data := range u.writes {
		u.store.accounts[addr] = data
	}
	u.done = true
	return nil
}

func (u *memUnit) Rollback() error {
	u.done = true
	return nil
}
