// Package platform defines the capability boundary between the bridge core
// and the ledger it runs on. The core never moves value or allocates storage
// itself; it asks these interfaces, and the hosting runtime (or the in-memory
// doubles in this package) answers.
package platform

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrAlreadyInUse is returned by Unit.Create when the derived address is
	// already occupied. Exclusive creation is the replay guard's primitive.
	ErrAlreadyInUse = errors.New("account already in use")
	// ErrAccountNotFound is returned by Unit.Get for an address no unit has
	// ever created.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds is returned by ledger operations that would
	// overdraw a balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoMetadata is returned when a mint has no metadata record.
	ErrNoMetadata = errors.New("no metadata for mint")
)

// AccountStore hands out atomic units over record storage keyed by derived
// addresses. A unit is all-or-nothing and single-writer-wins: two concurrent
// units creating the same address cannot both commit.
type AccountStore interface {
	Begin(ctx context.Context) (Unit, error)
}

// Unit is one atomic batch of record reads and writes.
type Unit interface {
	// Create allocates a zero-filled record of the given size at addr.
	// Fails with ErrAlreadyInUse if the address is occupied.
	Create(addr solana.PublicKey, size int) error
	// Get returns the current record bytes at addr.
	Get(addr solana.PublicKey) ([]byte, error)
	// Put replaces the record bytes at addr.
	Put(addr solana.PublicKey, data []byte) error

	Commit() error
	// Rollback discards the unit. Safe to call after Commit.
	Rollback() error
}

// Ledger is the value-movement capability. Implementations bind it to the
// host chain's token primitives; tests and the simulator use MemLedger.
type Ledger interface {
	TransferNative(ctx context.Context, from, to solana.PublicKey, amount uint64) error
	MintAsset(ctx context.Context, mint, to, authority solana.PublicKey, amount uint64) error
	TransferAsset(ctx context.Context, from, to, authority solana.PublicKey, amount uint64) error
	BurnAsset(ctx context.Context, from, mint, authority solana.PublicKey, amount uint64) error

	CreateMint(ctx context.Context, mint, authority solana.PublicKey, decimals uint8) error
	CreateAssociatedAccount(ctx context.Context, owner, mint solana.PublicKey) (solana.PublicKey, error)
	CreateMetadataRecord(ctx context.Context, mint solana.PublicKey, name, symbol, uri string) error

	// AssociatedAccount derives the token account address for (owner, mint)
	// without creating it.
	AssociatedAccount(owner, mint solana.PublicKey) solana.PublicKey
	HasAccount(ctx context.Context, addr solana.PublicKey) (bool, error)
	HasMint(ctx context.Context, mint solana.PublicKey) (bool, error)
	NativeBalance(ctx context.Context, addr solana.PublicKey) (uint64, error)
	AssetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// TokenMetadata is the slice of a metadata record the bridge consumes.
// Strings may carry the NUL padding of their on-chain layout; consumers trim.
type TokenMetadata struct {
	Name       string
	Symbol     string
	URI        string
	Decimals   uint8
	Collection *solana.PublicKey
}

// MetadataRegistry resolves a mint to its metadata record.
type MetadataRegistry interface {
	Metadata(ctx context.Context, mint solana.PublicKey) (TokenMetadata, error)
}

// Instruction is the shape of one operation inside an atomic execution unit,
// as seen through introspection.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.PublicKey
	Data      []byte
}

// UnitInspector exposes the operation bundled immediately before the one
// currently executing. Production binds this to the host's instruction
// introspection; tests supply canned sequences.
type UnitInspector interface {
	PrecedingInstruction() (Instruction, bool)
}

// StaticInspector is a canned UnitInspector.
type StaticInspector struct {
	Preceding *Instruction
}

func (s *StaticInspector) PrecedingInstruction() (Instruction, bool) {
	if s == nil || s.Preceding == nil {
		return Instruction{}, false
	}
	return *s.Preceding, true
}
