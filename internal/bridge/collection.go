package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// MintCollectionArgs creates a bridge-authored collection: a zero-decimal
// mint derived from TokenSeed, one token minted to the bridge, and a
// metadata record.
type MintCollectionArgs struct {
	Seed      [32]byte
	TokenSeed [32]byte
	Name      string
	Symbol    string
	URI       string
}

func (p *Processor) MintCollection(ctx context.Context, args MintCollectionArgs) error {
	adminAddr, err := p.adminAddress(args.Seed)
	if err != nil {
		return err
	}

	unit, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer discard(unit)

	if _, err := p.loadAdmin(unit, adminAddr); err != nil {
		return err
	}

	mint, _, err := p.deriver.DeriveWithBump([][]byte{args.TokenSeed[:]}, p.programID)
	if err != nil {
		return ErrWrongTokenSeed
	}

	if err := p.ledger.CreateMint(ctx, mint, adminAddr, 0); err != nil {
		return fmt.Errorf("create collection mint: %w", err)
	}
	assoc, err := p.ledger.CreateAssociatedAccount(ctx, adminAddr, mint)
	if err != nil {
		return fmt.Errorf("create associated account: %w", err)
	}
	if err := p.ledger.MintAsset(ctx, mint, assoc, adminAddr, 1); err != nil {
		return fmt.Errorf("mint collection token: %w", err)
	}
	if err := p.ledger.CreateMetadataRecord(ctx, mint, args.Name, args.Symbol, args.URI); err != nil {
		return fmt.Errorf("create metadata record: %w", err)
	}

	p.logger.Info("Collection minted",
		zap.String("mint", mint.String()),
		zap.String("name", args.Name))
	return unit.Commit()
}
