package transfer

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/logger"
	"github.com/cryptoedu/presale-server/internal/metrics"
	"github.com/cryptoedu/presale-server/internal/money"
)

// State is the executor's position in a single purchase attempt.
type State string

const (
	StateIdle              State = "idle"
	StatePreparing         State = "preparing"
	StateAwaitingSignature State = "awaiting_signature"
	StateSubmitting        State = "submitting"
	StateConfirmed         State = "confirmed"
	StateFailed            State = "failed"
)

// ErrSigningRejected is returned by wallets when the user declines to sign.
var ErrSigningRejected = stderrors.New("transfer: signing rejected")

// Error pairs a machine-readable code with the underlying cause.
type Error struct {
	Code errors.ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func failWith(code errors.ErrorCode, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the error code from an executor failure, falling back to
// network_error for anything unclassified.
func CodeOf(err error) errors.ErrorCode {
	var te *Error
	if stderrors.As(err, &te) {
		return te.Code
	}
	return errors.ErrCodeNetworkError
}

// Receipt is the durable record of a confirmed purchase.
type Receipt struct {
	Signature   string    `json:"signature"`
	Wallet      string    `json:"wallet"`
	AmountSOL   string    `json:"amountSol"`
	Lamports    uint64    `json:"lamports"`
	USDValue    float64   `json:"usdValue"`
	TokenAmount uint64    `json:"tokenAmount"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// Quoter supplies the USD value and token amount recorded on the receipt.
type Quoter interface {
	Amounts(amountSOL string) (usdValue float64, tokenAmount uint64)
}

// Executor drives one SOL transfer end to end. It submits exactly one
// transaction per Execute call and never resubmits on its own; retry policy
// belongs to the caller.
type Executor struct {
	chain      Chain
	treasury   solana.PublicKey
	feeReserve uint64
	quoter     Quoter
	collector  *metrics.Metrics
}

func NewExecutor(chain Chain, treasury solana.PublicKey, feeReserveLamports uint64, quoter Quoter, collector *metrics.Metrics) *Executor {
	return &Executor{
		chain:      chain,
		treasury:   treasury,
		feeReserve: feeReserveLamports,
		quoter:     quoter,
		collector:  collector,
	}
}

// Execute runs the purchase state machine: prepare the transfer, collect the
// wallet's signature, submit, and wait for confirmation. onState, when
// non-nil, observes every transition. The balance is re-read from the chain
// immediately before signing so a stale snapshot can never authorize an
// overdraft.
func (e *Executor) Execute(ctx context.Context, wallet Wallet, amountSOL string, onState func(State)) (*Receipt, error) {
	start := time.Now()
	receipt, err := e.execute(ctx, wallet, amountSOL, onState)

	outcome := "confirmed"
	if err != nil {
		outcome = string(CodeOf(err))
	} else if e.collector != nil {
		e.collector.PurchaseLamports.Add(float64(receipt.Lamports))
	}
	e.collector.ObservePurchase(outcome, time.Since(start))
	return receipt, err
}

func (e *Executor) execute(ctx context.Context, wallet Wallet, amountSOL string, onState func(State)) (*Receipt, error) {
	transition := func(s State) {
		if onState != nil {
			onState(s)
		}
	}
	log := logger.FromContext(ctx)

	transition(StatePreparing)

	buyer, connected := wallet.PublicKey()
	if !connected {
		transition(StateFailed)
		return nil, failWith(errors.ErrCodeWalletNotConnected, stderrors.New("no wallet connected"))
	}

	lamports, err := money.LamportsFromSOL(amountSOL)
	if err != nil || lamports == 0 {
		transition(StateFailed)
		return nil, failWith(errors.ErrCodeInvalidAmount, err)
	}

	// Fresh read, not the cached snapshot.
	balance, err := e.chain.GetBalance(ctx, buyer)
	if err != nil {
		transition(StateFailed)
		return nil, failWith(errors.ErrCodeRPCError, err)
	}
	if balance < lamports+e.feeReserve {
		transition(StateFailed)
		return nil, failWith(errors.ErrCodeInsufficientBalance,
			fmt.Errorf("balance %d lamports, need %d", balance, lamports+e.feeReserve))
	}

	blockhash, err := e.chain.LatestBlockhash(ctx)
	if err != nil {
		transition(StateFailed)
		return nil, failWith(errors.ErrCodeRPCError, err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, buyer, e.treasury).Build(),
		},
		blockhash,
		solana.TransactionPayer(buyer),
	)
	if err != nil {
		transition(StateFailed)
		return nil, failWith(errors.ErrCodeInternalError, err)
	}

	transition(StateAwaitingSignature)

	signed, err := wallet.SignTransaction(ctx, tx)
	if err != nil {
		transition(StateFailed)
		if stderrors.Is(err, ErrSigningRejected) || stderrors.Is(err, context.Canceled) {
			return nil, failWith(errors.ErrCodeSigningRejected, err)
		}
		return nil, failWith(errors.ErrCodeNetworkError, err)
	}

	transition(StateSubmitting)

	sig, err := e.chain.SendTransaction(ctx, signed)
	if err != nil {
		transition(StateFailed)
		return nil, failWith(errors.ErrCodeNetworkError, err)
	}

	log.Info().
		Str("signature", sig.String()).
		Str("wallet", logger.TruncateAddress(buyer.String())).
		Uint64("lamports", lamports).
		Msg("purchase.submitted")

	if err := e.chain.ConfirmTransaction(ctx, sig); err != nil {
		transition(StateFailed)
		return nil, failWith(classifyConfirmError(err), err)
	}

	transition(StateConfirmed)

	var usdValue float64
	var tokenAmount uint64
	if e.quoter != nil {
		usdValue, tokenAmount = e.quoter.Amounts(amountSOL)
	}

	receipt := &Receipt{
		Signature:   sig.String(),
		Wallet:      buyer.String(),
		AmountSOL:   money.SOLFromLamports(lamports),
		Lamports:    lamports,
		USDValue:    usdValue,
		TokenAmount: tokenAmount,
		ConfirmedAt: time.Now().UTC(),
	}

	log.Info().
		Str("signature", receipt.Signature).
		Str("wallet", logger.TruncateAddress(receipt.Wallet)).
		Uint64("tokens", receipt.TokenAmount).
		Msg("purchase.confirmed")

	return receipt, nil
}

func classifyConfirmError(err error) errors.ErrorCode {
	msg := err.Error()
	if strings.Contains(msg, "transaction error") {
		return errors.ErrCodeTransactionFailed
	}
	if strings.Contains(msg, "not found") || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrCodeConfirmationTimeout
	}
	return errors.ErrCodeNetworkError
}
