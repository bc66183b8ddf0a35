// Package bridge is the authorization core: it decides whether a deposit or
// withdrawal is legitimate and guarantees each cross-chain event is redeemed
// exactly once. Value movement and storage allocation stay behind the
// capability interfaces in internal/platform.
package bridge

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/dexlane/solana-bridge/internal/platform"
	"github.com/dexlane/solana-bridge/internal/sigverify"
	"github.com/dexlane/solana-bridge/internal/state"
)

const (
	// MaxAddressLen bounds receiver-address strings in deposit arguments.
	MaxAddressLen = 128
	// MaxNetworkLen bounds destination-network strings in deposit arguments.
	MaxNetworkLen = 32
)

// Processor executes bridge operations. Every operation runs as one store
// unit: all record changes commit together or not at all.
type Processor struct {
	programID solana.PublicKey
	store     platform.AccountStore
	ledger    platform.Ledger
	meta      platform.MetadataRegistry
	deriver   platform.AddressDeriver
	inspector platform.UnitInspector
	logger    *zap.Logger
}

func New(
	logger *zap.Logger,
	programID solana.PublicKey,
	store platform.AccountStore,
	ledger platform.Ledger,
	meta platform.MetadataRegistry,
	deriver platform.AddressDeriver,
	inspector platform.UnitInspector,
) *Processor {
	return &Processor{
		programID: programID,
		store:     store,
		ledger:    ledger,
		meta:      meta,
		deriver:   deriver,
		inspector: inspector,
		logger:    logger.With(zap.String("component", "BridgeProcessor")),
	}
}

// adminAddress derives the bridge admin address from the caller's seed.
func (p *Processor) adminAddress(seed [32]byte) (solana.PublicKey, error) {
	addr, err := p.deriver.Derive([][]byte{seed[:]}, p.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrWrongSeeds, err)
	}
	return addr, nil
}

// loadAdmin fetches and decodes the initialized admin record.
func (p *Processor) loadAdmin(unit platform.Unit, addr solana.PublicKey) (state.BridgeAdmin, error) {
	var admin state.BridgeAdmin
	data, err := unit.Get(addr)
	if err != nil {
		if err == platform.ErrAccountNotFound {
			return admin, ErrNotInitialized
		}
		return admin, fmt.Errorf("read admin record: %w", err)
	}
	if err := admin.UnmarshalBinary(data); err != nil {
		return admin, fmt.Errorf("decode admin record: %w", err)
	}
	if !admin.Initialized {
		return admin, ErrNotInitialized
	}
	return admin, nil
}

func (p *Processor) putAdmin(unit platform.Unit, addr solana.PublicKey, admin state.BridgeAdmin) error {
	data, err := admin.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode admin record: %w", err)
	}
	return unit.Put(addr, data)
}

// InitializeAdmin creates the singleton admin record. Valid exactly once per
// deployment; a second call fails with the store's already-in-use error.
func (p *Processor) InitializeAdmin(
	ctx context.Context,
	seed [32]byte,
	publicKey [state.AuthorityKeyLength]byte,
	commissionProgram solana.PublicKey,
) error {
	addr, err := p.adminAddress(seed)
	if err != nil {
		return err
	}

	unit, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer discard(unit)

	if err := unit.Create(addr, state.BridgeAdminLen); err != nil {
		return err
	}

	data, err := unit.Get(addr)
	if err != nil {
		return fmt.Errorf("read admin record: %w", err)
	}
	var admin state.BridgeAdmin
	if err := admin.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode admin record: %w", err)
	}
	if admin.Initialized {
		return platform.ErrAlreadyInUse
	}

	admin.Initialized = true
	admin.PublicKey = publicKey
	admin.CommissionProgram = commissionProgram
	if err := p.putAdmin(unit, addr, admin); err != nil {
		return err
	}

	p.logger.Info("Bridge admin initialized",
		zap.String("admin", addr.String()),
		zap.String("commissionProgram", commissionProgram.String()))
	return unit.Commit()
}

// TransferOwnership rotates the authority key. The rotation message is the
// keccak hash of the candidate key, and it must be signed by the key
// currently stored; a self-signed candidate is rejected by construction.
func (p *Processor) TransferOwnership(
	ctx context.Context,
	seed [32]byte,
	newKey [state.AuthorityKeyLength]byte,
	sig [sigverify.SignatureLength]byte,
	recoveryID byte,
) error {
	addr, err := p.adminAddress(seed)
	if err != nil {
		return err
	}

	unit, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer discard(unit)

	admin, err := p.loadAdmin(unit, addr)
	if err != nil {
		return err
	}

	message := crypto.Keccak256(newKey[:])
	if err := sigverify.Verify(message, sig, recoveryID, admin.PublicKey); err != nil {
		return err
	}

	admin.PublicKey = newKey
	if err := p.putAdmin(unit, addr, admin); err != nil {
		return err
	}

	p.logger.Info("Bridge authority key rotated", zap.String("admin", addr.String()))
	return unit.Commit()
}

// discard rolls a unit back; harmless after commit.
func discard(unit platform.Unit) {
	_ = unit.Rollback()
}

func b58(hash [32]byte) string {
	return base58.Encode(hash[:])
}
