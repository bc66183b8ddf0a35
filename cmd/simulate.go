package cmd

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dexlane/solana-bridge/internal/bridge"
	"github.com/dexlane/solana-bridge/internal/commission"
	"github.com/dexlane/solana-bridge/internal/merkle"
	"github.com/dexlane/solana-bridge/internal/platform"
	"github.com/dexlane/solana-bridge/internal/platform/sqlstore"
	"github.com/dexlane/solana-bridge/internal/state"
)

// simulateCmd runs the whole authorization flow against the in-memory
// platform: admin init, a deposit rejected without its commission charge and
// accepted with it, a signed native withdrawal, and the replayed withdrawal
// that the origin guard rejects.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the deposit/withdraw flow against an in-memory ledger",
	PreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd, args)
	},
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String(
		"db",
		"",
		"SQLite database path for the record store; in-memory when empty")

	viper.BindPFlag("db", simulateCmd.Flags().Lookup("db"))
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	logger := zap.L().With(zap.String("component", "Simulator"))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	authority, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate authority key: %v", err)
	}
	var authorityPub [state.AuthorityKeyLength]byte
	copy(authorityPub[:], crypto.FromECDSAPub(&authority.PublicKey)[1:])

	programID := solana.NewWallet().PublicKey()
	commissionProgram := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	receiver := solana.NewWallet().PublicKey()

	var store platform.AccountStore = platform.NewMemStore()
	if dbPath := viper.GetString("db"); dbPath != "" {
		sqlStore, err := sqlstore.New(dbPath)
		if err != nil {
			return fmt.Errorf("open record store: %w", err)
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("Using SQLite record store", zap.String("path", dbPath))
	}

	deriver := platform.HashDeriver{}
	ledger := platform.NewMemLedger()
	inspector := &platform.StaticInspector{}
	processor := bridge.New(
		logger, programID,
		store, ledger, ledger, deriver, inspector,
	)

	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return err
	}
	if err := processor.InitializeAdmin(ctx, seed, authorityPub, commissionProgram); err != nil {
		return fmt.Errorf("initialize admin: %w", err)
	}

	adminAddr, err := deriver.Derive([][]byte{seed[:]}, programID)
	if err != nil {
		return err
	}
	ledger.Credit(owner, 1_000)

	// First attempt: no commission charge precedes the deposit.
	deposit := bridge.DepositNativeArgs{
		Seed:            seed,
		NetworkTo:       "Ethereum",
		ReceiverAddress: "0x00000000000000000000000000000000000000aa",
		Amount:          100,
		Owner:           owner,
	}
	err = processor.DepositNative(ctx, deposit)
	logger.Info("Deposit without charge rejected",
		zap.String("class", bridge.ClassOf(err).String()),
		zap.Error(err))

	// Second attempt: bundle a matching charge in front of it.
	charge := commission.ChargeCommission{DepositToken: state.Native, DepositAmount: 100}
	chargeData, err := charge.MarshalBinary()
	if err != nil {
		return err
	}
	commissionAdmin, err := deriver.Derive(
		[][]byte{[]byte(commission.AdminSeed), adminAddr[:]},
		commissionProgram,
	)
	if err != nil {
		return err
	}
	inspector.Preceding = &platform.Instruction{
		ProgramID: commissionProgram,
		Accounts:  []solana.PublicKey{commissionAdmin},
		Data:      chargeData,
	}
	if err := processor.DepositNative(ctx, deposit); err != nil {
		return fmt.Errorf("deposit with charge: %w", err)
	}
	logger.Info("Deposit accepted", zap.Uint64("amount", deposit.Amount))

	// Withdraw the deposit on a relayer-signed merkle root.
	var origin, sibling [32]byte
	if _, err := rand.Read(origin[:]); err != nil {
		return err
	}
	if _, err := rand.Read(sibling[:]); err != nil {
		return err
	}
	leaf := merkle.ContentLeaf{
		Origin:    origin,
		Receiver:  receiver,
		ProgramID: programID,
		Content:   merkle.NativeTransfer{Amount: 100},
	}
	path := [][32]byte{sibling}
	root, err := merkle.Root(leaf.Hash(), path)
	if err != nil {
		return err
	}
	rawSig, err := crypto.Sign(root[:], authority)
	if err != nil {
		return err
	}
	withdraw := bridge.WithdrawNativeArgs{
		Seed:       seed,
		RecoveryID: rawSig[64],
		Path:       path,
		Origin:     origin,
		Amount:     100,
		Receiver:   receiver,
	}
	copy(withdraw.Signature[:], rawSig[:64])

	if err := processor.WithdrawNative(ctx, withdraw); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	balance, _ := ledger.NativeBalance(ctx, receiver)
	logger.Info("Withdrawal accepted", zap.Uint64("receiverBalance", balance))

	// Replay the identical withdrawal; the origin guard must reject it.
	err = processor.WithdrawNative(ctx, withdraw)
	logger.Info("Replayed withdrawal rejected",
		zap.String("class", bridge.ClassOf(err).String()),
		zap.Error(err))
	return nil
}
