package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cryptoedu/presale-server/internal/errors"
)

type stubChain struct {
	balance    uint64
	balanceErr error
	sendErr    error
	confirmErr error
	sent       int
}

func (c *stubChain) GetBalance(_ context.Context, _ solana.PublicKey) (uint64, error) {
	return c.balance, c.balanceErr
}

func (c *stubChain) LatestBlockhash(_ context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (c *stubChain) SendTransaction(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
	c.sent++
	if c.sendErr != nil {
		return solana.Signature{}, c.sendErr
	}
	return solana.Signature{1}, nil
}

func (c *stubChain) ConfirmTransaction(_ context.Context, _ solana.Signature) error {
	return c.confirmErr
}

type rejectingWallet struct {
	key solana.PrivateKey
}

func (w rejectingWallet) PublicKey() (solana.PublicKey, bool) {
	return w.key.PublicKey(), true
}

func (w rejectingWallet) SignTransaction(context.Context, *solana.Transaction) (*solana.Transaction, error) {
	return nil, ErrSigningRejected
}

type disconnectedWallet struct{}

func (disconnectedWallet) PublicKey() (solana.PublicKey, bool) { return solana.PublicKey{}, false }
func (disconnectedWallet) SignTransaction(context.Context, *solana.Transaction) (*solana.Transaction, error) {
	return nil, errors.New("unreachable")
}

type fixedQuoter struct {
	usd    float64
	tokens uint64
}

func (q fixedQuoter) Amounts(string) (float64, uint64) { return q.usd, q.tokens }

func newTestExecutor(chain Chain) *Executor {
	treasury := solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	return NewExecutor(chain, treasury, 10_000_000, fixedQuoter{usd: 300, tokens: 3_000_000}, nil)
}

func TestExecuteConfirms(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	exec := newTestExecutor(chain)
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	wallet := NewKeypairWallet(key)

	var states []State
	receipt, err := exec.Execute(context.Background(), wallet, "5", func(s State) {
		states = append(states, s)
	})
	require.NoError(t, err)

	assert.Equal(t, []State{StatePreparing, StateAwaitingSignature, StateSubmitting, StateConfirmed}, states)
	assert.Equal(t, key.PublicKey().String(), receipt.Wallet)
	assert.Equal(t, uint64(5_000_000_000), receipt.Lamports)
	assert.Equal(t, "5.000000000", receipt.AmountSOL)
	assert.Equal(t, uint64(3_000_000), receipt.TokenAmount)
	assert.Equal(t, 1, chain.sent)
}

func TestExecuteWalletNotConnected(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	exec := newTestExecutor(chain)

	_, err := exec.Execute(context.Background(), disconnectedWallet{}, "5", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeWalletNotConnected, CodeOf(err))
	assert.Zero(t, chain.sent, "nothing may be broadcast without a wallet")
}

func TestExecuteInvalidAmount(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	exec := newTestExecutor(chain)
	key, _ := solana.NewRandomPrivateKey()

	for _, amount := range []string{"", "abc", "-1", "0"} {
		_, err := exec.Execute(context.Background(), NewKeypairWallet(key), amount, nil)
		require.Error(t, err, "amount %q", amount)
		assert.Equal(t, apperrors.ErrCodeInvalidAmount, CodeOf(err))
	}
	assert.Zero(t, chain.sent)
}

func TestExecuteFreshBalanceCheck(t *testing.T) {
	// Balance covers the transfer but not the fee reserve.
	chain := &stubChain{balance: 5_000_000_000}
	exec := newTestExecutor(chain)
	key, _ := solana.NewRandomPrivateKey()

	var states []State
	_, err := exec.Execute(context.Background(), NewKeypairWallet(key), "5", func(s State) {
		states = append(states, s)
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInsufficientBalance, CodeOf(err))
	assert.Equal(t, []State{StatePreparing, StateFailed}, states,
		"must fail before requesting a signature")
	assert.Zero(t, chain.sent)
}

func TestExecuteSigningRejected(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	exec := newTestExecutor(chain)
	key, _ := solana.NewRandomPrivateKey()

	var states []State
	_, err := exec.Execute(context.Background(), rejectingWallet{key: key}, "5", func(s State) {
		states = append(states, s)
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSigningRejected, CodeOf(err))
	assert.Equal(t, []State{StatePreparing, StateAwaitingSignature, StateFailed}, states)
	assert.Zero(t, chain.sent, "a rejected signature must never reach the chain")
}

func TestExecuteSendFailure(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000, sendErr: errors.New("rpc down")}
	exec := newTestExecutor(chain)
	key, _ := solana.NewRandomPrivateKey()

	_, err := exec.Execute(context.Background(), NewKeypairWallet(key), "5", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNetworkError, CodeOf(err))
	assert.Equal(t, 1, chain.sent, "exactly one submission attempt, no resend")
}

func TestExecuteConfirmationFailure(t *testing.T) {
	key, _ := solana.NewRandomPrivateKey()

	t.Run("on-chain failure", func(t *testing.T) {
		chain := &stubChain{balance: 6_000_000_000, confirmErr: errors.New("transfer: transaction error: InstructionError")}
		_, err := newTestExecutor(chain).Execute(context.Background(), NewKeypairWallet(key), "5", nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTransactionFailed, CodeOf(err))
		assert.Equal(t, 1, chain.sent)
	})

	t.Run("never seen on chain", func(t *testing.T) {
		chain := &stubChain{balance: 6_000_000_000, confirmErr: errors.New("transfer: transaction not found within blockhash validity window")}
		_, err := newTestExecutor(chain).Execute(context.Background(), NewKeypairWallet(key), "5", nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfirmationTimeout, CodeOf(err))
		assert.Equal(t, 1, chain.sent, "a possibly-landed transaction is never resubmitted")
	})
}

func TestExecuteFloorsSubLamportAmount(t *testing.T) {
	chain := &stubChain{balance: 6_000_000_000}
	exec := newTestExecutor(chain)
	key, _ := solana.NewRandomPrivateKey()

	receipt, err := exec.Execute(context.Background(), NewKeypairWallet(key), "1.0000000019", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_001), receipt.Lamports)
}
