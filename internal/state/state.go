// Package state defines the two records the bridge persists and their
// borsh wire layout. The layout must stay byte-compatible with the records
// off-chain relayers already read, so every field is written explicitly.
package state

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// TokenKind tags which asset class a transfer or commission charge refers to.
type TokenKind uint8

const (
	Native TokenKind = iota
	Fungible
	NonFungible
)

func (k TokenKind) String() string {
	switch k {
	case Native:
		return "native"
	case Fungible:
		return "ft"
	case NonFungible:
		return "nft"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

const (
	// AuthorityKeyLength is the stored secp256k1 public key size
	// (uncompressed, no prefix byte).
	AuthorityKeyLength = 64

	// BridgeAdminLen is the fixed account size of a BridgeAdmin record:
	// initialized(1) + publicKey(64) + commissionProgram(32).
	BridgeAdminLen = 1 + AuthorityKeyLength + 32

	// WithdrawLen is the fixed account size of a Withdraw record:
	// initialized(1) + kind(1) + origin(32) + mint option(1+32) +
	// amount(8) + receiver(32). Records without a mint encode shorter and
	// are zero-padded up to this size.
	WithdrawLen = 1 + 1 + 32 + 1 + 32 + 8 + 32
)

// BridgeAdmin is the singleton admin record of a bridge deployment. Created
// once, mutated only by key rotation, never deleted.
type BridgeAdmin struct {
	Initialized       bool
	PublicKey         [AuthorityKeyLength]byte
	CommissionProgram solana.PublicKey
}

func (a *BridgeAdmin) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBool(a.Initialized); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(a.PublicKey[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(a.CommissionProgram[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *BridgeAdmin) UnmarshalBinary(data []byte) error {
	dec := bin.NewBorshDecoder(data)
	var err error
	if a.Initialized, err = dec.ReadBool(); err != nil {
		return err
	}
	key, err := dec.ReadNBytes(AuthorityKeyLength)
	if err != nil {
		return err
	}
	copy(a.PublicKey[:], key)
	program, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	copy(a.CommissionProgram[:], program)
	return nil
}

// Withdraw records one redeemed cross-chain event. Its account address is
// derived from the origin, which is what makes redemption exclusive.
type Withdraw struct {
	Initialized bool
	Kind        TokenKind
	Origin      [32]byte
	Mint        *solana.PublicKey // nil for native withdrawals
	Amount      uint64
	Receiver    solana.PublicKey
}

func (w *Withdraw) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBool(w.Initialized); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(w.Kind)); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(w.Origin[:], false); err != nil {
		return nil, err
	}
	if w.Mint != nil {
		if err := enc.WriteUint8(1); err != nil {
			return nil, err
		}
		if err := enc.WriteBytes(w.Mint[:], false); err != nil {
			return nil, err
		}
	} else {
		if err := enc.WriteUint8(0); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteUint64(w.Amount, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(w.Receiver[:], false); err != nil {
		return nil, err
	}

	// The account is fixed size; the borsh image without a mint is shorter.
	out := make([]byte, WithdrawLen)
	copy(out, buf.Bytes())
	return out, nil
}

func (w *Withdraw) UnmarshalBinary(data []byte) error {
	dec := bin.NewBorshDecoder(data)
	var err error
	if w.Initialized, err = dec.ReadBool(); err != nil {
		return err
	}
	kind, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	w.Kind = TokenKind(kind)
	origin, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	copy(w.Origin[:], origin)
	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if tag != 0 {
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return err
		}
		mint := solana.PublicKeyFromBytes(raw)
		w.Mint = &mint
	} else {
		w.Mint = nil
	}
	if w.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	receiver, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	copy(w.Receiver[:], receiver)
	return nil
}
