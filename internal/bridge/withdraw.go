package bridge

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dexlane/solana-bridge/internal/merkle"
	"github.com/dexlane/solana-bridge/internal/platform"
	"github.com/dexlane/solana-bridge/internal/sigverify"
	"github.com/dexlane/solana-bridge/internal/state"
)

// SignedMetadata carries the metadata for a mint the bridge must create on
// first withdrawal of a foreign token. Its content is covered by the signed
// merkle root, since the same fields feed the content leaf.
type SignedMetadata struct {
	Name     string
	Symbol   string
	URI      string
	Decimals uint8
}

// WithdrawNativeArgs redeems a native transfer authenticated by the signed
// merkle root. Origin identifies the source-chain event.
type WithdrawNativeArgs struct {
	Seed       [32]byte
	Signature  [sigverify.SignatureLength]byte
	RecoveryID byte
	Path       [][32]byte
	Origin     [32]byte
	Amount     uint64
	Receiver   solana.PublicKey
}

// WithdrawFTArgs redeems a fungible-token transfer.
type WithdrawFTArgs struct {
	Seed       [32]byte
	Signature  [sigverify.SignatureLength]byte
	RecoveryID byte
	Path       [][32]byte
	Origin     [32]byte
	Amount     uint64
	Receiver   solana.PublicKey
	Mint       solana.PublicKey
	TokenSeed  *[32]byte
	SignedMeta *SignedMetadata
}

// WithdrawNFTArgs redeems an NFT transfer; the amount is implicitly 1.
type WithdrawNFTArgs struct {
	Seed       [32]byte
	Signature  [sigverify.SignatureLength]byte
	RecoveryID byte
	Path       [][32]byte
	Origin     [32]byte
	Receiver   solana.PublicKey
	Mint       solana.PublicKey
	TokenSeed  *[32]byte
	SignedMeta *SignedMetadata
}

// WithdrawNative authorizes and executes a native withdrawal, then records
// the origin so it can never be redeemed again.
func (p *Processor) WithdrawNative(ctx context.Context, args WithdrawNativeArgs) error {
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

	leaf := merkle.ContentLeaf{
		Origin:    args.Origin,
		Receiver:  args.Receiver,
		ProgramID: p.programID,
		Content:   merkle.NativeTransfer{Amount: args.Amount},
	}
	if err := p.authorize(leaf, args.Path, args.Signature, args.RecoveryID, admin); err != nil {
		return err
	}

	// Claim the origin before anything else can fail: a replayed origin must
	// always surface as already-in-use, never as a balance problem.
	if err := p.guardOrigin(unit, args.Origin); err != nil {
		return err
	}

	balance, err := p.ledger.NativeBalance(ctx, adminAddr)
	if err != nil {
		return err
	}
	if balance < args.Amount {
		return ErrInsufficientBalance
	}

	p.logger.Debug("Transferring native withdrawal",
		zap.String("receiver", args.Receiver.String()),
		zap.Uint64("amount", args.Amount))
	if err := p.ledger.TransferNative(ctx, adminAddr, args.Receiver, args.Amount); err != nil {
		return fmt.Errorf("transfer native: %w", err)
	}

	record := state.Withdraw{
		Initialized: true,
		Kind:        state.Native,
		Origin:      args.Origin,
		Amount:      args.Amount,
		Receiver:    args.Receiver,
	}
	if err := p.persistWithdraw(unit, record); err != nil {
		return err
	}
	return unit.Commit()
}

// WithdrawFT authorizes and executes a fungible-token withdrawal. For
// bridge-derived mints the mint and its metadata are created on first use
// from the signed metadata.
func (p *Processor) WithdrawFT(ctx context.Context, args WithdrawFTArgs) error {
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

	pendingMint, err := p.bridgeMintPending(ctx, args.Mint, args.TokenSeed, args.SignedMeta)
	if err != nil {
		return err
	}

	md, err := p.withdrawnMetadata(ctx, args.Mint, pendingMint, args.SignedMeta)
	if err != nil {
		return err
	}

	leaf := merkle.ContentLeaf{
		Origin:    args.Origin,
		Receiver:  args.Receiver,
		ProgramID: p.programID,
		Content: merkle.FungibleTransfer{
			Mint:     args.Mint,
			Amount:   args.Amount,
			Name:     merkle.TrimNULs(md.Name),
			Symbol:   merkle.TrimNULs(md.Symbol),
			URI:      merkle.TrimNULs(md.URI),
			Decimals: md.Decimals,
		},
	}
	if err := p.authorize(leaf, args.Path, args.Signature, args.RecoveryID, admin); err != nil {
		return err
	}

	if err := p.guardOrigin(unit, args.Origin); err != nil {
		return err
	}

	if pendingMint {
		if err := p.createBridgeMint(ctx, adminAddr, args.Mint, args.SignedMeta); err != nil {
			return err
		}
	}

	if err := p.releaseAsset(ctx, adminAddr, args.Receiver, args.Mint, args.Amount); err != nil {
		return err
	}

	mint := args.Mint
	record := state.Withdraw{
		Initialized: true,
		Kind:        state.Fungible,
		Origin:      args.Origin,
		Mint:        &mint,
		Amount:      args.Amount,
		Receiver:    args.Receiver,
	}
	if err := p.persistWithdraw(unit, record); err != nil {
		return err
	}
	return unit.Commit()
}

// WithdrawNFT authorizes and executes an NFT withdrawal. When the token
// belongs to a collection, the collection's name and symbol take precedence
// in the content leaf, matching what was hashed on the source side.
func (p *Processor) WithdrawNFT(ctx context.Context, args WithdrawNFTArgs) error {
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

	pendingMint, err := p.bridgeMintPending(ctx, args.Mint, args.TokenSeed, args.SignedMeta)
	if err != nil {
		return err
	}

	md, err := p.withdrawnMetadata(ctx, args.Mint, pendingMint, args.SignedMeta)
	if err != nil {
		return err
	}

	name, symbol := md.Name, md.Symbol
	var collection *solana.PublicKey
	if md.Collection != nil {
		collectionMD, err := p.meta.Metadata(ctx, *md.Collection)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoMetadata, err)
		}
		name, symbol = collectionMD.Name, collectionMD.Symbol
		collection = md.Collection
	}

	leaf := merkle.ContentLeaf{
		Origin:    args.Origin,
		Receiver:  args.Receiver,
		ProgramID: p.programID,
		Content: merkle.NonFungibleTransfer{
			Mint:       args.Mint,
			Collection: collection,
			Name:       merkle.TrimNULs(name),
			Symbol:     merkle.TrimNULs(symbol),
			URI:        merkle.TrimNULs(md.URI),
		},
	}
	if err := p.authorize(leaf, args.Path, args.Signature, args.RecoveryID, admin); err != nil {
		return err
	}

	if err := p.guardOrigin(unit, args.Origin); err != nil {
		return err
	}

	if pendingMint {
		if err := p.createBridgeMint(ctx, adminAddr, args.Mint, args.SignedMeta); err != nil {
			return err
		}
	}

	if err := p.releaseAsset(ctx, adminAddr, args.Receiver, args.Mint, 1); err != nil {
		return err
	}

	mint := args.Mint
	record := state.Withdraw{
		Initialized: true,
		Kind:        state.NonFungible,
		Origin:      args.Origin,
		Mint:        &mint,
		Amount:      1,
		Receiver:    args.Receiver,
	}
	if err := p.persistWithdraw(unit, record); err != nil {
		return err
	}
	return unit.Commit()
}

// authorize folds the leaf into the batch root and checks the authority
// signature over it.
func (p *Processor) authorize(
	leaf merkle.ContentLeaf,
	path [][32]byte,
	sig [sigverify.SignatureLength]byte,
	recoveryID byte,
	admin state.BridgeAdmin,
) error {
	root, err := merkle.Root(leaf.Hash(), path)
	if err != nil {
		return err
	}
	p.logger.Debug("Computed merkle root", zap.String("root", b58(root)))
	return sigverify.Verify(root[:], sig, recoveryID, admin.PublicKey)
}

// guardOrigin creates the withdraw record account at the origin-derived
// address. Exclusive creation is what enforces one redemption per origin.
func (p *Processor) guardOrigin(unit platform.Unit, origin [32]byte) error {
	addr, _, err := p.deriver.DeriveWithBump([][]byte{origin[:]}, p.programID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrongSeeds, err)
	}
	if err := unit.Create(addr, state.WithdrawLen); err != nil {
		return err
	}
	return nil
}

// persistWithdraw writes the final withdraw record. The initialized-flag
// check is defense-in-depth behind the exclusive creation in guardOrigin.
func (p *Processor) persistWithdraw(unit platform.Unit, record state.Withdraw) error {
	addr, _, err := p.deriver.DeriveWithBump([][]byte{record.Origin[:]}, p.programID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrongSeeds, err)
	}

	data, err := unit.Get(addr)
	if err != nil {
		return fmt.Errorf("read withdraw record: %w", err)
	}
	var existing state.Withdraw
	if err := existing.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode withdraw record: %w", err)
	}
	if existing.Initialized {
		return platform.ErrAlreadyInUse
	}

	encoded, err := record.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode withdraw record: %w", err)
	}
	if err := unit.Put(addr, encoded); err != nil {
		return err
	}
	p.logger.Info("Withdraw recorded",
		zap.String("origin", b58(record.Origin)),
		zap.String("kind", record.Kind.String()),
		zap.Uint64("amount", record.Amount),
		zap.String("receiver", record.Receiver.String()))
	return nil
}

// releaseAsset delivers the withdrawn amount to the receiver, minting the
// shortfall to the bridge first when its holdings do not cover it.
func (p *Processor) releaseAsset(ctx context.Context, adminAddr, receiver, mint solana.PublicKey, amount uint64) error {
	bridgeAssoc, err := p.ensureAssociated(ctx, adminAddr, mint)
	if err != nil {
		return err
	}
	receiverAssoc, err := p.ensureAssociated(ctx, receiver, mint)
	if err != nil {
		return err
	}

	held, err := p.ledger.AssetBalance(ctx, bridgeAssoc)
	if err != nil {
		return err
	}
	if held < amount {
		p.logger.Debug("Minting shortfall to bridge",
			zap.String("mint", mint.String()),
			zap.Uint64("amount", amount-held))
		if err := p.ledger.MintAsset(ctx, mint, bridgeAssoc, adminAddr, amount-held); err != nil {
			return fmt.Errorf("mint shortfall: %w", err)
		}
	}

	p.logger.Debug("Transferring withdrawn token",
		zap.String("mint", mint.String()),
		zap.Uint64("amount", amount))
	if err := p.ledger.TransferAsset(ctx, bridgeAssoc, receiverAssoc, adminAddr, amount); err != nil {
		return fmt.Errorf("transfer asset: %w", err)
	}
	return nil
}

// bridgeMintPending reports whether a bridge-derived mint still has to be
// created for this withdrawal. It only validates; nothing is written here, so
// a withdrawal rejected later leaves no trace on the ledger.
func (p *Processor) bridgeMintPending(
	ctx context.Context,
	mint solana.PublicKey,
	tokenSeed *[32]byte,
	meta *SignedMetadata,
) (bool, error) {
	if tokenSeed == nil {
		return false, nil
	}
	derived, _, err := p.deriver.DeriveWithBump([][]byte{tokenSeed[:]}, p.programID)
	if err != nil || derived != mint {
		return false, ErrWrongTokenSeed
	}

	exists, err := p.ledger.HasMint(ctx, mint)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if meta == nil {
		return false, ErrNoTokenMeta
	}
	return true, nil
}

// withdrawnMetadata resolves the metadata that feeds the content leaf: the
// signed metadata when the mint is yet to be created, the registry record
// otherwise.
func (p *Processor) withdrawnMetadata(
	ctx context.Context,
	mint solana.PublicKey,
	pendingMint bool,
	meta *SignedMetadata,
) (platform.TokenMetadata, error) {
	if pendingMint {
		return platform.TokenMetadata{
			Name:     meta.Name,
			Symbol:   meta.Symbol,
			URI:      meta.URI,
			Decimals: meta.Decimals,
		}, nil
	}
	md, err := p.meta.Metadata(ctx, mint)
	if err != nil {
		return platform.TokenMetadata{}, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}
	return md, nil
}

// createBridgeMint materializes a bridge-derived mint and its metadata record
// once the withdrawal is fully authorized and the origin is claimed.
func (p *Processor) createBridgeMint(
	ctx context.Context,
	adminAddr, mint solana.PublicKey,
	meta *SignedMetadata,
) error {
	p.logger.Debug("Creating bridge-derived mint",
		zap.String("mint", mint.String()),
		zap.Uint8("decimals", meta.Decimals))
	if err := p.ledger.CreateMint(ctx, mint, adminAddr, meta.Decimals); err != nil {
		return fmt.Errorf("create mint: %w", err)
	}
	if err := p.ledger.CreateMetadataRecord(ctx, mint, meta.Name, meta.Symbol, meta.URI); err != nil {
		return fmt.Errorf("create metadata record: %w", err)
	}
	return nil
}
