package merkle

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrEmptyPath rejects zero-length proofs: a leaf that went through no
// batching step was never attested by anything.
var ErrEmptyPath = errors.New("empty merkle path")

// Root folds a leaf hash with its sibling path into the batch root. At every
// step the two 256-bit halves are ordered numerically (big-endian, larger
// first) before hashing, so callers need no left/right position flags and
// the result is independent of how path metadata was encoded.
func Root(leaf [32]byte, path [][32]byte) ([32]byte, error) {
	if len(path) == 0 {
		return [32]byte{}, ErrEmptyPath
	}

	hash := leaf
	for _, sibling := range path {
		var node []byte
		if bytes.Compare(sibling[:], hash[:]) >= 0 {
			node = crypto.Keccak256(sibling[:], hash[:])
		} else {
			node = crypto.Keccak256(hash[:], sibling[:])
		}
		copy(hash[:], node)
	}
	return hash, nil
}
