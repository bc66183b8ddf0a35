package merkle

import (
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
)

// NetworkSolana is the network tag baked into every content leaf hashed on
// this side of the bridge. Relayers sign roots over leaves carrying this
// exact ASCII string, so it must never change.
const NetworkSolana = "Solana"

// TransferContent is the payload half of a content leaf. It is a closed sum:
// exactly one of NativeTransfer, FungibleTransfer or NonFungibleTransfer.
type TransferContent interface {
	operationBytes() []byte
}

// NativeTransfer moves the chain's native token.
type NativeTransfer struct {
	Amount uint64
}

// FungibleTransfer moves an SPL-style fungible token. Decimals ride along for
// mint creation but are never part of the hashed encoding.
type FungibleTransfer struct {
	Mint   solana.PublicKey
	Amount uint64
	Name   string
	Symbol string
	URI    string

	Decimals uint8
}

// NonFungibleTransfer moves a single NFT. Amount is implicitly 1.
type NonFungibleTransfer struct {
	Mint       solana.PublicKey
	Collection *solana.PublicKey
	Name       string
	Symbol     string
	URI        string
}

func (t NativeTransfer) operationBytes() []byte {
	var zero [32]byte
	amount := amountBytes(t.Amount)

	data := make([]byte, 0, 64)
	data = append(data, zero[:]...)
	data = append(data, amount[:]...)
	return data
}

func (t FungibleTransfer) operationBytes() []byte {
	amount := amountBytes(t.Amount)

	data := make([]byte, 0, 64+len(t.Name)+len(t.Symbol)+len(t.URI))
	data = append(data, t.Mint[:]...)
	data = append(data, amount[:]...)
	data = append(data, t.Name...)
	data = append(data, t.Symbol...)
	data = append(data, t.URI...)
	return data
}

func (t NonFungibleTransfer) operationBytes() []byte {
	var collection [32]byte
	if t.Collection != nil {
		collection = *t.Collection
	}
	amount := amountBytes(1)

	data := make([]byte, 0, 96+len(t.Name)+len(t.Symbol)+len(t.URI))
	data = append(data, t.Mint[:]...)
	data = append(data, collection[:]...)
	data = append(data, amount[:]...)
	data = append(data, t.Name...)
	data = append(data, t.Symbol...)
	data = append(data, t.URI...)
	return data
}

// ContentLeaf is the canonical form of one transfer intent. Its hash is the
// value batched into the merkle tree the authority key signs over.
type ContentLeaf struct {
	Origin    [32]byte
	Receiver  solana.PublicKey
	ProgramID solana.PublicKey
	Content   TransferContent
}

// Hash encodes the leaf as
// origin || networkTag || receiver || programID || operation
// and returns its keccak-256 digest. Field widths are fixed except for the
// trailing metadata strings; the encoding is only ever compared for exact
// equality, never re-parsed.
func (l ContentLeaf) Hash() [32]byte {
	op := l.Content.operationBytes()

	data := make([]byte, 0, 96+len(NetworkSolana)+len(op))
	data = append(data, l.Origin[:]...)
	data = append(data, NetworkSolana...)
	data = append(data, l.Receiver[:]...)
	data = append(data, l.ProgramID[:]...)
	data = append(data, op...)

	var hash [32]byte
	copy(hash[:], crypto.Keccak256(data))
	return hash
}

// amountBytes widens a u64 amount into a 32-byte big-endian word, matching
// the encoding relayers use on the other chains.
func amountBytes(amount uint64) [32]byte {
	var out [32]byte
	for i := 0; i < 8; i++ {
		out[31-i] = byte(amount >> (8 * i))
	}
	return out
}

// TrimNULs strips the NUL padding metadata accounts store around their
// fixed-width name/symbol/uri fields. Must be applied before hashing.
func TrimNULs(s string) string {
	return strings.Trim(s, "\x00")
}
