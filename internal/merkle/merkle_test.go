package merkle

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func fill(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func TestNativeLeafEncoding(t *testing.T) {
	origin := fill(0x11)
	receiver := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x22}, 32))
	program := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x33}, 32))

	leaf := ContentLeaf{
		Origin:    origin,
		Receiver:  receiver,
		ProgramID: program,
		Content:   NativeTransfer{Amount: 100},
	}

	var amount [32]byte
	amount[31] = 100
	var zero [32]byte
	expected := crypto.Keccak256(
		origin[:], []byte("Solana"), receiver[:], program[:],
		zero[:], amount[:],
	)

	hash := leaf.Hash()
	require.Equal(t, expected, hash[:])
}

func TestFungibleLeafEncoding(t *testing.T) {
	origin := fill(0x01)
	receiver := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x02}, 32))
	program := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x03}, 32))
	mint := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x04}, 32))

	content := FungibleTransfer{
		Mint:     mint,
		Amount:   1 << 40,
		Name:     "Wrapped Thing",
		Symbol:   "WTH",
		URI:      "https://example.org/wth.json",
		Decimals: 9,
	}
	leaf := ContentLeaf{Origin: origin, Receiver: receiver, ProgramID: program, Content: content}

	var amount [32]byte
	amount[26] = 1 // 2^40 big-endian
	expected := crypto.Keccak256(
		origin[:], []byte("Solana"), receiver[:], program[:],
		mint[:], amount[:],
		[]byte("Wrapped Thing"), []byte("WTH"), []byte("https://example.org/wth.json"),
	)

	hash := leaf.Hash()
	require.Equal(t, expected, hash[:])

	// Decimals ride along for mint creation but never enter the hash.
	content.Decimals = 0
	leaf.Content = content
	same := leaf.Hash()
	require.Equal(t, hash, same)
}

func TestNonFungibleLeafEncoding(t *testing.T) {
	origin := fill(0x0a)
	receiver := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x0b}, 32))
	program := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x0c}, 32))
	mint := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x0d}, 32))
	collection := solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x0e}, 32))

	var one [32]byte
	one[31] = 1
	var zero [32]byte

	withCollection := ContentLeaf{
		Origin: origin, Receiver: receiver, ProgramID: program,
		Content: NonFungibleTransfer{
			Mint: mint, Collection: &collection,
			Name: "Punks", Symbol: "PNK", URI: "ipfs://punks/1",
		},
	}
	expected := crypto.Keccak256(
		origin[:], []byte("Solana"), receiver[:], program[:],
		mint[:], collection[:], one[:],
		[]byte("Punks"), []byte("PNK"), []byte("ipfs://punks/1"),
	)
	hash := withCollection.Hash()
	require.Equal(t, expected, hash[:])

	withoutCollection := withCollection
	withoutCollection.Content = NonFungibleTransfer{
		Mint: mint, Name: "Punks", Symbol: "PNK", URI: "ipfs://punks/1",
	}
	expectedZero := crypto.Keccak256(
		origin[:], []byte("Solana"), receiver[:], program[:],
		mint[:], zero[:], one[:],
		[]byte("Punks"), []byte("PNK"), []byte("ipfs://punks/1"),
	)
	hashZero := withoutCollection.Hash()
	require.Equal(t, expectedZero, hashZero[:])
	require.NotEqual(t, hash, hashZero)
}

func TestRootSortedPairFold(t *testing.T) {
	leaf := fill(0x80)
	low := fill(0x01)  // numerically below the running hash
	high := fill(0xff) // numerically above the running hash

	root, err := Root(leaf, [][32]byte{low, high})
	require.NoError(t, err)

	// First step: leaf > low, so leaf goes first. Second step: high wins.
	step1 := crypto.Keccak256(leaf[:], low[:])
	expected := crypto.Keccak256(high[:], step1)
	require.Equal(t, expected, root[:])
}

func TestRootDeterministic(t *testing.T) {
	leaf := fill(0x42)
	path := [][32]byte{fill(0x10), fill(0xe0), fill(0x55)}

	a, err := Root(leaf, path)
	require.NoError(t, err)
	b, err := Root(leaf, path)
	require.NoError(t, err)
	require.Equal(t, a, b)

	// Changing any sibling changes the root.
	path[1][0] ^= 0x01
	c, err := Root(leaf, path)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestRootEmptyPath(t *testing.T) {
	_, err := Root(fill(0x01), nil)
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = Root(fill(0x01), [][32]byte{})
	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestTrimNULs(t *testing.T) {
	require.Equal(t, "ABC", TrimNULs("ABC\x00\x00\x00"))
	require.Equal(t, "ABC", TrimNULs("\x00ABC"))
	require.Equal(t, "", TrimNULs("\x00\x00"))
	require.Equal(t, "A\x00B", TrimNULs("A\x00B\x00"))
}
