package commission

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/dexlane/solana-bridge/internal/platform"
	"github.com/dexlane/solana-bridge/internal/state"
)

type fixture struct {
	deriver         platform.HashDeriver
	admin           state.BridgeAdmin
	bridgeAdmin     solana.PublicKey
	commissionAdmin solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bridgeAdmin: solana.NewWallet().PublicKey(),
	}
	f.admin = state.BridgeAdmin{
		Initialized:       true,
		CommissionProgram: solana.NewWallet().PublicKey(),
	}
	var err error
	f.commissionAdmin, err = f.deriver.Derive(
		[][]byte{[]byte(AdminSeed), f.bridgeAdmin[:]},
		f.admin.CommissionProgram,
	)
	require.NoError(t, err)
	return f
}

func (f *fixture) charge(t *testing.T, kind state.TokenKind, amount uint64) platform.Instruction {
	t.Helper()
	c := ChargeCommission{DepositToken: kind, DepositAmount: amount}
	data, err := c.MarshalBinary()
	require.NoError(t, err)
	return platform.Instruction{
		ProgramID: f.admin.CommissionProgram,
		Accounts:  []solana.PublicKey{f.commissionAdmin},
		Data:      data,
	}
}

func (f *fixture) verify(ins *platform.Instruction, kind state.TokenKind, amount uint64) error {
	inspector := &platform.StaticInspector{Preceding: ins}
	return VerifyCharged(inspector, f.deriver, f.admin, f.bridgeAdmin, kind, amount)
}

func TestVerifyChargedMatching(t *testing.T) {
	f := newFixture(t)
	ins := f.charge(t, state.Native, 100)
	require.NoError(t, f.verify(&ins, state.Native, 100))
}

func TestVerifyChargedNoPreceding(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.verify(nil, state.Native, 100), ErrWrongProgram)
}

func TestVerifyChargedWrongProgram(t *testing.T) {
	f := newFixture(t)
	ins := f.charge(t, state.Native, 100)
	ins.ProgramID = solana.NewWallet().PublicKey()
	require.ErrorIs(t, f.verify(&ins, state.Native, 100), ErrWrongProgram)
}

func TestVerifyChargedWrongAccount(t *testing.T) {
	f := newFixture(t)

	ins := f.charge(t, state.Native, 100)
	ins.Accounts = []solana.PublicKey{solana.NewWallet().PublicKey()}
	require.ErrorIs(t, f.verify(&ins, state.Native, 100), ErrWrongAccount)

	ins.Accounts = nil
	require.ErrorIs(t, f.verify(&ins, state.Native, 100), ErrWrongAccount)
}

func TestVerifyChargedMismatchedValues(t *testing.T) {
	f := newFixture(t)

	ins := f.charge(t, state.Native, 99)
	require.ErrorIs(t, f.verify(&ins, state.Native, 100), ErrWrongArguments)

	ins = f.charge(t, state.Fungible, 100)
	require.ErrorIs(t, f.verify(&ins, state.Native, 100), ErrWrongArguments)
}

func TestVerifyChargedGarbagePayload(t *testing.T) {
	f := newFixture(t)
	ins := f.charge(t, state.Native, 100)
	ins.Data = []byte{0xde, 0xad}
	require.ErrorIs(t, f.verify(&ins, state.Native, 100), ErrWrongArguments)
}

func TestChargeCommissionRoundTrip(t *testing.T) {
	in := ChargeCommission{DepositToken: state.NonFungible, DepositAmount: 1}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out ChargeCommission
	require.NoError(t, out.UnmarshalBinary(data))
	require.Equal(t, in, out)
}
