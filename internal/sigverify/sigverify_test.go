package sigverify

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func signDigest(t *testing.T, key *ecdsa.PrivateKey, digest []byte) ([SignatureLength]byte, byte) {
	t.Helper()
	raw, err := crypto.Sign(digest, key)
	require.NoError(t, err)
	var sig [SignatureLength]byte
	copy(sig[:], raw[:SignatureLength])
	return sig, raw[SignatureLength]
}

func publicKeyOf(key *ecdsa.PrivateKey) [PublicKeyLength]byte {
	var out [PublicKeyLength]byte
	copy(out[:], crypto.FromECDSAPub(&key.PublicKey)[1:])
	return out
}

func TestVerifyRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("merkle root under test"))
	sig, recID := signDigest(t, key, digest)

	require.NoError(t, Verify(digest, sig, recID, publicKeyOf(key)))
}

func TestVerifyWrongKey(t *testing.T) {
	signer, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("payload"))
	sig, recID := signDigest(t, signer, digest)

	require.ErrorIs(t, Verify(digest, sig, recID, publicKeyOf(other)), ErrWrongSignature)
}

func TestVerifyTamperedMessage(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("payload"))
	sig, recID := signDigest(t, key, digest)

	tampered := make([]byte, len(digest))
	copy(tampered, digest)
	tampered[7] ^= 0x01

	// Recovery over a different message yields a different key (or fails).
	require.Error(t, Verify(tampered, sig, recID, publicKeyOf(key)))
}

func TestVerifyTamperedSignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("payload"))
	sig, recID := signDigest(t, key, digest)
	sig[3] ^= 0x40

	require.Error(t, Verify(digest, sig, recID, publicKeyOf(key)))
}

func TestVerifyBadRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("payload"))
	sig, _ := signDigest(t, key, digest)

	require.ErrorIs(t, Verify(digest, sig, 5, publicKeyOf(key)), ErrInvalidSignature)
}
