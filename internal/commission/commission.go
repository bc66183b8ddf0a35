// Package commission asserts that a deposit was preceded, inside the same
// atomic unit, by a matching fee charge issued to the configured commission
// program. The bridge never moves the fee itself; it only refuses deposits
// whose charge is absent or mismatched.
package commission

import (
	"bytes"
	"encoding/binary"
	"errors"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/dexlane/solana-bridge/internal/platform"
	"github.com/dexlane/solana-bridge/internal/state"
)

// AdminSeed is the fixed domain tag of the commission program's admin
// account, derived together with the bridge admin address.
const AdminSeed = "commission_admin"

// chargeCommissionTag is the variant index of the charge instruction in the
// commission program's instruction enum.
const chargeCommissionTag = 0

var (
	ErrWrongProgram   = errors.New("wrong commission program")
	ErrWrongAccount   = errors.New("wrong commission account")
	ErrWrongArguments = errors.New("wrong commission arguments")
)

// ChargeCommission is the decoded payload of a commission charge.
type ChargeCommission struct {
	DepositToken  state.TokenKind
	DepositAmount uint64
}

func (c *ChargeCommission) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(chargeCommissionTag); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(c.DepositToken)); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.DepositAmount, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *ChargeCommission) UnmarshalBinary(data []byte) error {
	dec := bin.NewBorshDecoder(data)
	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if tag != chargeCommissionTag {
		return ErrWrongArguments
	}
	kind, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if kind > uint8(state.NonFungible) {
		return ErrWrongArguments
	}
	c.DepositToken = state.TokenKind(kind)
	if c.DepositAmount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	return nil
}

// VerifyCharged inspects the operation immediately preceding the deposit and
// fails closed unless it is a charge by admin.CommissionProgram, targeting
// the commission-admin account derived from the bridge admin address, with
// arguments exactly equal to the deposit's (kind, amount).
func VerifyCharged(
	inspector platform.UnitInspector,
	deriver platform.AddressDeriver,
	admin state.BridgeAdmin,
	bridgeAdmin solana.PublicKey,
	kind state.TokenKind,
	amount uint64,
) error {
	ins, ok := inspector.PrecedingInstruction()
	if !ok {
		return ErrWrongProgram
	}
	if ins.ProgramID != admin.CommissionProgram {
		return ErrWrongProgram
	}

	commissionAdmin, err := deriver.Derive(
		[][]byte{[]byte(AdminSeed), bridgeAdmin[:]},
		admin.CommissionProgram,
	)
	if err != nil {
		return ErrWrongAccount
	}
	if len(ins.Accounts) == 0 || ins.Accounts[0] != commissionAdmin {
		return ErrWrongAccount
	}

	var charge ChargeCommission
	if err := charge.UnmarshalBinary(ins.Data); err != nil {
		return ErrWrongArguments
	}
	if charge.DepositToken != kind || charge.DepositAmount != amount {
		return ErrWrongArguments
	}
	return nil
}
