package presale

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/transfer"
)

type stubChain struct {
	balance uint64
	sent    int
}

func (c *stubChain) GetBalance(context.Context, solana.PublicKey) (uint64, error) {
	return c.balance, nil
}

func (c *stubChain) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (c *stubChain) SendTransaction(context.Context, *solana.Transaction) (solana.Signature, error) {
	c.sent++
	return solana.Signature{1}, nil
}

func (c *stubChain) ConfirmTransaction(context.Context, solana.Signature) error {
	return nil
}

type fixedQuoter struct{}

func (fixedQuoter) Amounts(string) (float64, uint64) { return 300, 3_000_000 }

func newTestManager(t *testing.T, chain transfer.Chain) (*Manager, *Store) {
	t.Helper()

	cfg := config.PresaleConfig{
		TokenPriceUSD:  0.0001,
		MinPurchaseUSD: 150,
		MaxPurchaseUSD: 25000,
		FeeReserveSOL:  0.01,
		SessionTTL:     config.Duration{Duration: 5 * time.Second},
		MaxAttempts:    3,
	}

	treasury := solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	exec := transfer.NewExecutor(chain, treasury, FeeReserveLamports(cfg), fixedQuoter{}, nil)

	store := NewStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	return NewManager(store, chain, exec, cfg, nil, zerolog.Nop()), store
}

func signUnsigned(t *testing.T, unsignedB64 string, key solana.PrivateKey) string {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(unsignedB64)
	require.NoError(t, err)

	var tx solana.Transaction
	require.NoError(t, tx.UnmarshalWithDecoder(bin.NewBinDecoder(raw)))

	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(key.PublicKey()) {
			return &key
		}
		return nil
	})
	require.NoError(t, err)

	signed, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(signed)
}

func TestPrepareThenSubmitConfirms(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	mgr, _ := newTestManager(t, chain)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	wallet := key.PublicKey().String()

	prep, err := mgr.Prepare(context.Background(), wallet, "5", 60)
	require.NoError(t, err)
	require.NotEmpty(t, prep.UnsignedTransaction)
	assert.InDelta(t, 300, prep.USDValue, 1e-9)

	status := mgr.Status(wallet)
	assert.Equal(t, transfer.StateAwaitingSignature, status.State)
	assert.True(t, status.PendingSignature)

	view, err := mgr.Submit(context.Background(), wallet, signUnsigned(t, prep.UnsignedTransaction, key))
	require.NoError(t, err)

	assert.Equal(t, transfer.StateConfirmed, view.State)
	require.NotNil(t, view.Receipt)
	assert.Equal(t, uint64(3_000_000), view.Receipt.TokenAmount)
	assert.Zero(t, view.Attempts)
	assert.InDelta(t, 300, view.SpentUSD, 1e-9)
	assert.Equal(t, 1, chain.sent)
}

func TestPrepareRejectsInvalidPurchase(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	mgr, _ := newTestManager(t, chain)

	key, _ := solana.NewRandomPrivateKey()
	wallet := key.PublicKey().String()

	_, err := mgr.Prepare(context.Background(), wallet, "0.01", 60)
	require.Error(t, err)
	var flow *Error
	require.ErrorAs(t, err, &flow)
	assert.Equal(t, errors.ErrCodeBelowMinimum, flow.Code)

	_, err = mgr.Prepare(context.Background(), "not-a-pubkey", "5", 60)
	require.Error(t, err)
	require.ErrorAs(t, err, &flow)
	assert.Equal(t, errors.ErrCodeInvalidWallet, flow.Code)

	assert.Zero(t, chain.sent)
}

func TestPrepareBlocksConcurrentAttempt(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	mgr, _ := newTestManager(t, chain)

	key, _ := solana.NewRandomPrivateKey()
	wallet := key.PublicKey().String()

	_, err := mgr.Prepare(context.Background(), wallet, "5", 60)
	require.NoError(t, err)

	_, err = mgr.Prepare(context.Background(), wallet, "5", 60)
	require.Error(t, err)
	var flow *Error
	require.ErrorAs(t, err, &flow)
	assert.Equal(t, errors.ErrCodePurchaseInFlight, flow.Code)

	// Unblock the parked attempt.
	_, err = mgr.Cancel(context.Background(), wallet)
	require.NoError(t, err)
}

func TestSubmitWithoutPending(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	mgr, _ := newTestManager(t, chain)

	_, err := mgr.Submit(context.Background(), "unknown", "aGVsbG8=")
	var flow *Error
	require.ErrorAs(t, err, &flow)
	assert.Equal(t, errors.ErrCodeSessionNotFound, flow.Code)
}

func TestThreeFailuresLatchSupportState(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	mgr, _ := newTestManager(t, chain)

	key, _ := solana.NewRandomPrivateKey()
	wallet := key.PublicKey().String()

	for i := 0; i < 3; i++ {
		_, err := mgr.Prepare(context.Background(), wallet, "5", 60)
		require.NoError(t, err, "attempt %d", i+1)

		view, err := mgr.Cancel(context.Background(), wallet)
		require.NoError(t, err)
		assert.Equal(t, errors.ErrCodeSigningRejected, view.LastError)
	}

	status := mgr.Status(wallet)
	assert.True(t, status.SupportRequired)
	assert.Equal(t, 3, status.Attempts)
	assert.Zero(t, status.AttemptsLeft)

	// The fourth attempt stays blocked until an explicit reset.
	_, err := mgr.Prepare(context.Background(), wallet, "5", 60)
	require.Error(t, err)
	var flow *Error
	require.ErrorAs(t, err, &flow)
	assert.Equal(t, errors.ErrCodeSupportRequired, flow.Code)

	view := mgr.Reset(wallet)
	assert.False(t, view.SupportRequired)
	assert.Zero(t, view.Attempts)

	prep, err := mgr.Prepare(context.Background(), wallet, "5", 60)
	require.NoError(t, err)

	_, err = mgr.Submit(context.Background(), wallet, signUnsigned(t, prep.UnsignedTransaction, key))
	require.NoError(t, err)
	assert.Zero(t, mgr.Status(wallet).Attempts, "success clears the failure streak")
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	mgr, _ := newTestManager(t, chain)

	key, _ := solana.NewRandomPrivateKey()
	wallet := key.PublicKey().String()

	for i := 0; i < 2; i++ {
		_, err := mgr.Prepare(context.Background(), wallet, "5", 60)
		require.NoError(t, err)
		_, err = mgr.Cancel(context.Background(), wallet)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, mgr.Status(wallet).Attempts)

	prep, err := mgr.Prepare(context.Background(), wallet, "5", 60)
	require.NoError(t, err)
	view, err := mgr.Submit(context.Background(), wallet, signUnsigned(t, prep.UnsignedTransaction, key))
	require.NoError(t, err)

	assert.Zero(t, view.Attempts)
	assert.False(t, view.SupportRequired)
}

func TestWalletInfo(t *testing.T) {
	chain := &stubChain{balance: 1_000_000_000}
	mgr, _ := newTestManager(t, chain)

	key, _ := solana.NewRandomPrivateKey()
	info, err := mgr.WalletInfo(context.Background(), key.PublicKey().String())
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000_000), info.BalanceLamports)
	assert.Equal(t, uint64(990_000_000), info.MaxSpendableLamports)
	assert.Equal(t, "0.990000000", info.MaxSpendableSOL)

	_, err = mgr.WalletInfo(context.Background(), "nope")
	var flow *Error
	require.ErrorAs(t, err, &flow)
	assert.Equal(t, errors.ErrCodeInvalidWallet, flow.Code)
}

func TestStoreEvictsIdleSessionsOnly(t *testing.T) {
	store := NewStore(time.Millisecond)
	t.Cleanup(func() { _ = store.Close() })

	idle := store.GetOrCreate("idle-wallet")
	_ = idle

	latched := store.GetOrCreate("support-wallet")
	latched.mu.Lock()
	latched.support = true
	latched.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	store.removeExpired()

	assert.Nil(t, store.Get("idle-wallet"))
	assert.NotNil(t, store.Get("support-wallet"), "support state must survive the janitor")
}
