package platform

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/gagliardetto/solana-go"
)

type mintInfo struct {
	authority solana.PublicKey
	decimals  uint8
	supply    uint64
}

type tokenAccount struct {
	owner  solana.PublicKey
	mint   solana.PublicKey
	amount uint64
}

// MemLedger is an in-process Ledger and MetadataRegistry. It is the reference
// collaborator for tests and the local simulator; a deployment binds the
// Ledger interface to the host chain's token programs instead.
type MemLedger struct {
	mu       sync.Mutex
	native   map[solana.PublicKey]uint64
	mints    map[solana.PublicKey]*mintInfo
	accounts map[solana.PublicKey]*tokenAccount
	metadata map[solana.PublicKey]TokenMetadata
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		native:   make(map[solana.PublicKey]uint64),
		mints:    make(map[solana.PublicKey]*mintInfo),
		accounts: make(map[solana.PublicKey]*tokenAccount),
		metadata: make(map[solana.PublicKey]TokenMetadata),
	}
}

// Credit funds a native balance, standing in for deposits that happened
// outside the scenario under test.
func (l *MemLedger) Credit(addr solana.PublicKey, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.native[addr] += amount
}

// SetMetadata seeds a metadata record directly, bypassing mint creation.
func (l *MemLedger) SetMetadata(mint solana.PublicKey, md TokenMetadata) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metadata[mint] = md
}

func (l *MemLedger) TransferNative(ctx context.Context, from, to solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.native[from] < amount {
		return ErrInsufficientFunds
	}
	l.native[from] -= amount
	l.native[to] += amount
	return nil
}

func (l *MemLedger) MintAsset(ctx context.Context, mint, to, authority solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.mints[mint]
	if !ok {
		return ErrAccountNotFound
	}
	if info.authority != authority {
		return ErrInsufficientFunds
	}
	acc, ok := l.accounts[to]
	if !ok || acc.mint != mint {
		return ErrAccountNotFound
	}
	info.supply += amount
	acc.amount += amount
	return nil
}

func (l *MemLedger) TransferAsset(ctx context.Context, from, to, authority solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.accounts[from]
	if !ok {
		return ErrAccountNotFound
	}
	dst, ok := l.accounts[to]
	if !ok || dst.mint != src.mint {
		return ErrAccountNotFound
	}
	if src.owner != authority {
		return ErrInsufficientFunds
	}
	if src.amount < amount {
		return ErrInsufficientFunds
	}
	src.amount -= amount
	dst.amount += amount
	return nil
}

func (l *MemLedger) BurnAsset(ctx context.Context, from, mint, authority solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[from]
	if !ok || acc.mint != mint {
		return ErrAccountNotFound
	}
	if acc.owner != authority || acc.amount < amount {
		return ErrInsufficientFunds
	}
	acc.amount -= amount
	l.mints[mint].supply -= amount
	return nil
}

func (l *MemLedger) CreateMint(ctx context.Context, mint, authority solana.PublicKey, decimals uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.mints[mint]; ok {
		return ErrAlreadyInUse
	}
	l.mints[mint] = &mintInfo{authority: authority, decimals: decimals}
	return nil
}

func (l *MemLedger) CreateAssociatedAccount(ctx context.Context, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr := l.AssociatedAccount(owner, mint)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[addr]; ok {
		return addr, ErrAlreadyInUse
	}
	l.accounts[addr] = &tokenAccount{owner: owner, mint: mint}
	return addr, nil
}

func (l *MemLedger) CreateMetadataRecord(ctx context.Context, mint solana.PublicKey, name, symbol, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.mints[mint]
	if !ok {
		return ErrAccountNotFound
	}
	l.metadata[mint] = TokenMetadata{Name: name, Symbol: symbol, URI: uri, Decimals: info.decimals}
	return nil
}

func (l *MemLedger) AssociatedAccount(owner, mint solana.PublicKey) solana.PublicKey {
	h := sha256.New()
	h.Write([]byte("associated"))
	h.Write(owner[:])
	h.Write(mint[:])
	return solana.PublicKeyFromBytes(h.Sum(nil))
}

func (l *MemLedger) HasAccount(ctx context.Context, addr solana.PublicKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.accounts[addr]
	return ok, nil
}

func (l *MemLedger) HasMint(ctx context.Context, mint solana.PublicKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.mints[mint]
	return ok, nil
}

func (l *MemLedger) NativeBalance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.native[addr], nil
}

func (l *MemLedger) AssetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[account]
	if !ok {
		return 0, nil
	}
	return acc.amount, nil
}

func (l *MemLedger) Metadata(ctx context.Context, mint solana.PublicKey) (TokenMetadata, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	md, ok := l.metadata[mint]
	if !ok {
		return TokenMetadata{}, ErrNoMetadata
	}
	return md, nil
}
