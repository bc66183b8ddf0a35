package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/dexlane/solana-bridge/internal/platform"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "bridge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreatePutGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	addr := solana.NewWallet().PublicKey()

	unit, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, unit.Create(addr, 4))

	data, err := unit.Get(addr)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, data)

	require.NoError(t, unit.Put(addr, []byte{9, 8, 7, 6}))
	require.NoError(t, unit.Commit())

	unit, err = store.Begin(ctx)
	require.NoError(t, err)
	defer unit.Rollback()
	data, err = unit.Get(addr)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 8, 7, 6}, data)
}

func TestExclusiveCreate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	addr := solana.NewWallet().PublicKey()

	unit, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, unit.Create(addr, 4))
	require.NoError(t, unit.Commit())

	unit, err = store.Begin(ctx)
	require.NoError(t, err)
	defer unit.Rollback()
	require.ErrorIs(t, unit.Create(addr, 4), platform.ErrAlreadyInUse)
}

func TestRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	addr := solana.NewWallet().PublicKey()

	unit, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, unit.Create(addr, 4))
	require.NoError(t, unit.Rollback())

	unit, err = store.Begin(ctx)
	require.NoError(t, err)
	defer unit.Rollback()
	_, err = unit.Get(addr)
	require.ErrorIs(t, err, platform.ErrAccountNotFound)
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	unit, err := store.Begin(ctx)
	require.NoError(t, err)
	defer unit.Rollback()

	_, err = unit.Get(solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, platform.ErrAccountNotFound)
}

func TestPutMissing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	unit, err := store.Begin(ctx)
	require.NoError(t, err)
	defer unit.Rollback()

	err = unit.Put(solana.NewWallet().PublicKey(), []byte{1})
	require.ErrorIs(t, err, platform.ErrAccountNotFound)
}
