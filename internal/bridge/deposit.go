package bridge

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dexlane/solana-bridge/internal/commission"
	"github.com/dexlane/solana-bridge/internal/state"
)

// DepositNativeArgs describes a native-token deposit. NetworkTo and
// ReceiverAddress are opaque strings for the destination chain; the core only
// bounds their sizes.
type DepositNativeArgs struct {
	Seed            [32]byte
	NetworkTo       string
	ReceiverAddress string
	Amount          uint64
	Owner           solana.PublicKey
}

func (a DepositNativeArgs) validate() error {
	return validateDepositStrings(a.NetworkTo, a.ReceiverAddress)
}

// DepositFTArgs describes a fungible-token deposit. TokenSeed is set when the
// mint is bridge-derived; such deposits burn instead of locking.
type DepositFTArgs struct {
	Seed            [32]byte
	NetworkTo       string
	ReceiverAddress string
	Amount          uint64
	Owner           solana.PublicKey
	Mint            solana.PublicKey
	TokenSeed       *[32]byte
}

func (a DepositFTArgs) validate() error {
	return validateDepositStrings(a.NetworkTo, a.ReceiverAddress)
}

// DepositNFTArgs describes an NFT deposit; the amount is implicitly 1.
type DepositNFTArgs struct {
	Seed            [32]byte
	NetworkTo       string
	ReceiverAddress string
	Owner           solana.PublicKey
	Mint            solana.PublicKey
	TokenSeed       *[32]byte
}

func (a DepositNFTArgs) validate() error {
	return validateDepositStrings(a.NetworkTo, a.ReceiverAddress)
}

func validateDepositStrings(network, receiver string) error {
	if len(network) > MaxNetworkLen || len(receiver) > MaxAddressLen {
		return ErrArgsTooLong
	}
	return nil
}

// DepositNative locks native tokens on the bridge after asserting the
// bundled commission charge.
func (p *Processor) DepositNative(ctx context.Context, args DepositNativeArgs) error {
	if err := args.validate(); err != nil {
		return err
	}
	adminAddr, err := p.adminAddress(args.Seed)
	if err != nil {
		return err
	}

	unit, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer discard(unit)

	admin, err := p.loadAdmin(unit, adminAddr)
	if err != nil {
		return err
	}

	if err := commission.VerifyCharged(p.inspector, p.deriver, admin, adminAddr, state.Native, args.Amount); err != nil {
		return err
	}

	p.logger.Debug("Transferring native deposit",
		zap.String("owner", args.Owner.String()),
		zap.Uint64("amount", args.Amount))
	if err := p.ledger.TransferNative(ctx, args.Owner, adminAddr, args.Amount); err != nil {
		return fmt.Errorf("transfer native: %w", err)
	}

	return unit.Commit()
}

// DepositFT locks (or burns, for bridge-derived mints) fungible tokens.
func (p *Processor) DepositFT(ctx context.Context, args DepositFTArgs) error {
	if err := args.validate(); err != nil {
		return err
	}
	adminAddr, err := p.adminAddress(args.Seed)
	if err != nil {
		return err
	}

	unit, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer discard(unit)

	admin, err := p.loadAdmin(unit, adminAddr)
	if err != nil {
		return err
	}

	if err := commission.VerifyCharged(p.inspector, p.deriver, admin, adminAddr, state.Fungible, args.Amount); err != nil {
		return err
	}

	if err := p.collectAsset(ctx, adminAddr, args.Owner, args.Mint, args.TokenSeed, args.Amount); err != nil {
		return err
	}

	return unit.Commit()
}

// DepositNFT locks (or burns) a single NFT.
func (p *Processor) DepositNFT(ctx context.Context, args DepositNFTArgs) error {
	if err := args.validate(); err != nil {
		return err
	}
	adminAddr, err := p.adminAddress(args.Seed)
	if err != nil {
		return err
	}

	unit, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer discard(unit)

	admin, err := p.loadAdmin(unit, adminAddr)
	if err != nil {
		return err
	}

	if err := commission.VerifyCharged(p.inspector, p.deriver, admin, adminAddr, state.NonFungible, 1); err != nil {
		return err
	}

	if err := p.collectAsset(ctx, adminAddr, args.Owner, args.Mint, args.TokenSeed, 1); err != nil {
		return err
	}

	return unit.Commit()
}

// collectAsset moves the deposited amount out of the owner's token account:
// burned when the mint is bridge-derived, locked on the bridge otherwise.
func (p *Processor) collectAsset(
	ctx context.Context,
	adminAddr, owner, mint solana.PublicKey,
	tokenSeed *[32]byte,
	amount uint64,
) error {
	ownerAssoc := p.ledger.AssociatedAccount(owner, mint)

	if tokenSeed != nil {
		derived, _, err := p.deriver.DeriveWithBump([][]byte{tokenSeed[:]}, p.programID)
		if err != nil || derived != mint {
			return ErrWrongTokenSeed
		}
		p.logger.Debug("Burning deposited token",
			zap.String("mint", mint.String()),
			zap.Uint64("amount", amount))
		if err := p.ledger.BurnAsset(ctx, ownerAssoc, mint, owner, amount); err != nil {
			return fmt.Errorf("burn asset: %w", err)
		}
		return nil
	}

	bridgeAssoc, err := p.ensureAssociated(ctx, adminAddr, mint)
	if err != nil {
		return err
	}
	p.logger.Debug("Locking deposited token",
		zap.String("mint", mint.String()),
		zap.Uint64("amount", amount))
	if err := p.ledger.TransferAsset(ctx, ownerAssoc, bridgeAssoc, owner, amount); err != nil {
		return fmt.Errorf("transfer asset: %w", err)
	}
	return nil
}

// ensureAssociated returns the (owner, mint) token account, creating it on
// first use.
func (p *Processor) ensureAssociated(ctx context.Context, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr := p.ledger.AssociatedAccount(owner, mint)
	exists, err := p.ledger.HasAccount(ctx, addr)
	if err != nil {
		return addr, err
	}
	if !exists {
		if _, err := p.ledger.CreateAssociatedAccount(ctx, owner, mint); err != nil {
			return addr, fmt.Errorf("create associated account: %w", err)
		}
	}
	return addr, nil
}
