// Package sigverify holds the bridge's single root of trust: secp256k1
// public-key recovery checked against the stored authority key.
package sigverify

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// PublicKeyLength is the size of an uncompressed secp256k1 public key
	// without the 0x04 prefix byte.
	PublicKeyLength = 64
	// SignatureLength is the size of a compact signature (r || s).
	SignatureLength = 64
)

var (
	// ErrInvalidSignature means recovery itself failed: malformed signature,
	// bad recovery id or a point off the curve.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrWrongSignature means the signature is well formed but was not
	// produced by the expected key.
	ErrWrongSignature = errors.New("wrong signature")
)

// Verify recovers the public key that signed the 32-byte message and compares
// it byte-for-byte to the expected key. Both withdrawal authorization and
// admin-key rotation are gated through this check against the currently
// stored key, never a proposed one.
func Verify(message []byte, sig [SignatureLength]byte, recoveryID byte, expected [PublicKeyLength]byte) error {
	full := make([]byte, SignatureLength+1)
	copy(full, sig[:])
	full[SignatureLength] = recoveryID

	recovered, err := crypto.Ecrecover(message, full)
	if err != nil {
		return ErrInvalidSignature
	}

	// Ecrecover returns the uncompressed key with its 0x04 prefix.
	if !bytes.Equal(recovered[1:], expected[:]) {
		return ErrWrongSignature
	}
	return nil
}
