package platform

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// AddressDeriver turns seeds into a deterministic, collision-free address
// within a program's namespace. Injected so tests can substitute a trivial
// derivation that never rejects seeds.
type AddressDeriver interface {
	// Derive computes the address for exactly these seeds. Fails if the
	// seeds do not map to a valid address.
	Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error)
	// DeriveWithBump searches for the canonical bump seed and returns the
	// resulting address together with the bump.
	DeriveWithBump(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error)
}

// SolanaDeriver binds derivation to program-derived addresses.
type SolanaDeriver struct{}

func (SolanaDeriver) Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	return solana.CreateProgramAddress(seeds, programID)
}

func (SolanaDeriver) DeriveWithBump(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(seeds, programID)
}

// HashDeriver derives addresses by hashing the seeds. It accepts every seed
// set, which keeps tests and local simulation free of the off-curve search a
// real deployment does when picking its admin seed.
type HashDeriver struct{}

func (HashDeriver) Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	h := sha256.New()
	h.Write(programID[:])
	for _, seed := range seeds {
		h.Write(seed)
	}
	return solana.PublicKeyFromBytes(h.Sum(nil)), nil
}

func (d HashDeriver) DeriveWithBump(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, err := d.Derive(seeds, programID)
	return addr, 255, err
}
