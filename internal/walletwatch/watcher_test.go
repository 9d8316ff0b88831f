package walletwatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedu/presale-server/internal/config"
)

func newTestWatcher(balanceOf BalanceFunc, cfg config.WalletWatchConfig) *Watcher {
	return NewWatcher(balanceOf, cfg, zerolog.Nop())
}

func randomAddr(t *testing.T) string {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey().String()
}

func TestTrackPrimesSnapshot(t *testing.T) {
	balanceOf := func(context.Context, solana.PublicKey) (uint64, error) {
		return 2_500_000_000, nil
	}
	w := newTestWatcher(balanceOf, config.WalletWatchConfig{})

	addr := randomAddr(t)

	snap, err := w.Track(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000_000), snap.Lamports)
	assert.Equal(t, "2.500000000", snap.SOL)
	assert.False(t, snap.UpdatedAt.IsZero())

	_, err = w.Track(context.Background(), "not-an-address")
	require.Error(t, err)
}

func TestPollLoopSweeps(t *testing.T) {
	var calls atomic.Int64
	balanceOf := func(context.Context, solana.PublicKey) (uint64, error) {
		calls.Add(1)
		return 1, nil
	}
	w := newTestWatcher(balanceOf, config.WalletWatchConfig{
		PollInterval: config.Duration{Duration: 10 * time.Millisecond},
	})

	_, err := w.Track(context.Background(), randomAddr(t))
	require.NoError(t, err)

	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestCheckFailureKeepsLastBalance(t *testing.T) {
	var fail atomic.Bool
	balanceOf := func(context.Context, solana.PublicKey) (uint64, error) {
		if fail.Load() {
			return 0, errors.New("rpc down")
		}
		return 7_000_000_000, nil
	}
	w := newTestWatcher(balanceOf, config.WalletWatchConfig{})

	addr := randomAddr(t)

	_, err := w.Track(context.Background(), addr)
	require.NoError(t, err)

	fail.Store(true)
	pubkey := solana.MustPublicKeyFromBase58(addr)
	w.check(context.Background(), addr, pubkey)

	snap, exists := w.Snapshot(addr)
	require.True(t, exists)
	assert.Equal(t, uint64(7_000_000_000), snap.Lamports, "stale balance stays readable")
	assert.NotEmpty(t, snap.CheckError)
}

func TestUntrackStopsRecording(t *testing.T) {
	balanceOf := func(context.Context, solana.PublicKey) (uint64, error) { return 1, nil }
	w := newTestWatcher(balanceOf, config.WalletWatchConfig{})

	addr := randomAddr(t)

	_, err := w.Track(context.Background(), addr)
	require.NoError(t, err)

	w.Untrack(addr)
	_, exists := w.Snapshot(addr)
	assert.False(t, exists)

	w.check(context.Background(), addr, solana.MustPublicKeyFromBase58(addr))
	_, exists = w.Snapshot(addr)
	assert.False(t, exists, "untracked wallets gain no snapshots")
}

func TestSweepDropsIdleWallets(t *testing.T) {
	balanceOf := func(context.Context, solana.PublicKey) (uint64, error) { return 1, nil }
	w := newTestWatcher(balanceOf, config.WalletWatchConfig{
		IdleTTL: config.Duration{Duration: 20 * time.Millisecond},
	})

	idle := randomAddr(t)
	active := randomAddr(t)

	_, err := w.Track(context.Background(), idle)
	require.NoError(t, err)
	_, err = w.Track(context.Background(), active)
	require.NoError(t, err)
	require.Equal(t, 2, w.Tracked())

	time.Sleep(30 * time.Millisecond)
	// Reading a snapshot counts as interest and keeps the wallet alive.
	_, exists := w.Snapshot(active)
	require.True(t, exists)

	w.sweep(context.Background())

	assert.Equal(t, 1, w.Tracked())
	_, exists = w.Snapshot(idle)
	assert.False(t, exists, "idle wallet evicted")
	_, exists = w.Snapshot(active)
	assert.True(t, exists)
}

func TestTrackEvictsOldestAtCap(t *testing.T) {
	balanceOf := func(context.Context, solana.PublicKey) (uint64, error) { return 1, nil }
	w := newTestWatcher(balanceOf, config.WalletWatchConfig{MaxTracked: 2})

	first := randomAddr(t)
	second := randomAddr(t)

	_, err := w.Track(context.Background(), first)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = w.Track(context.Background(), second)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	_, err = w.Track(context.Background(), randomAddr(t))
	require.NoError(t, err)

	assert.Equal(t, 2, w.Tracked())
	_, exists := w.Snapshot(first)
	assert.False(t, exists, "least recently requested wallet evicted")
	_, exists = w.Snapshot(second)
	assert.True(t, exists)
}
