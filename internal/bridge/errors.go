package bridge

import (
	"errors"

	"github.com/dexlane/solana-bridge/internal/commission"
	"github.com/dexlane/solana-bridge/internal/merkle"
	"github.com/dexlane/solana-bridge/internal/platform"
	"github.com/dexlane/solana-bridge/internal/sigverify"
)

var (
	// ErrWrongSeeds means the supplied seed does not derive a valid admin
	// address for this program.
	ErrWrongSeeds = errors.New("wrong seeds")
	// ErrNotInitialized means the admin record does not exist or was never
	// initialized.
	ErrNotInitialized = errors.New("bridge admin not initialized")
	// ErrWrongTokenSeed means the supplied token seed does not derive the
	// given mint.
	ErrWrongTokenSeed = errors.New("wrong token seed")
	// ErrNoTokenMeta means a bridge-derived mint must be created but no
	// signed metadata was supplied.
	ErrNoTokenMeta = errors.New("no token metadata")
	// ErrNoMetadata means the mint has no metadata record to encode from.
	ErrNoMetadata = errors.New("no metadata record for mint")
	// ErrArgsTooLong rejects oversized network or receiver-address strings.
	ErrArgsTooLong = errors.New("argument exceeds maximum size")
	// ErrInsufficientBalance means the bridge cannot cover a native
	// withdrawal.
	ErrInsufficientBalance = errors.New("insufficient bridge balance")
)

// Class buckets every error the core can return. Errors are deterministic
// functions of input and persisted state, so relayers can key retry policy
// off the class.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassConfig
	ClassState
	ClassAuth
	ClassData
	ClassResource
)

func (c Class) String() string {
	switch c {
	case ClassConfig:
		return "config"
	case ClassState:
		return "state"
	case ClassAuth:
		return "auth"
	case ClassData:
		return "data"
	case ClassResource:
		return "resource"
	default:
		return "unknown"
	}
}

// ClassOf resolves an error (possibly wrapped) to its taxonomy class.
func ClassOf(err error) Class {
	switch {
	case errors.Is(err, ErrWrongSeeds),
		errors.Is(err, ErrWrongTokenSeed),
		errors.Is(err, ErrNoMetadata):
		return ClassConfig
	case errors.Is(err, platform.ErrAlreadyInUse),
		errors.Is(err, ErrNotInitialized):
		return ClassState
	case errors.Is(err, sigverify.ErrInvalidSignature),
		errors.Is(err, sigverify.ErrWrongSignature),
		errors.Is(err, commission.ErrWrongProgram),
		errors.Is(err, commission.ErrWrongAccount),
		errors.Is(err, commission.ErrWrongArguments):
		return ClassAuth
	case errors.Is(err, merkle.ErrEmptyPath),
		errors.Is(err, ErrArgsTooLong),
		errors.Is(err, ErrNoTokenMeta):
		return ClassData
	case errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, platform.ErrInsufficientFunds):
		return ClassResource
	default:
		return ClassUnknown
	}
}
