package presale

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/logger"
	"github.com/cryptoedu/presale-server/internal/metrics"
	"github.com/cryptoedu/presale-server/internal/money"
	"github.com/cryptoedu/presale-server/internal/transfer"
)

// Error is a flow-level failure carrying a machine-readable code plus the
// message handlers return to the client.
type Error struct {
	Code    errors.ErrorCode
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func flowErr(code errors.ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Manager runs the two-step purchase flow. Prepare builds an unsigned
// transfer and parks the executor at the signature step; Submit or Cancel
// resolves it. One executor invocation spans the whole round-trip, so the
// state machine and its guarantees are identical to a locally-signed run.
type Manager struct {
	store      *Store
	chain      transfer.Chain
	exec       *transfer.Executor
	cfg        config.PresaleConfig
	collector  *metrics.Metrics
	log        zerolog.Logger
	feeReserve uint64
}

func NewManager(store *Store, chain transfer.Chain, exec *transfer.Executor, cfg config.PresaleConfig, collector *metrics.Metrics, log zerolog.Logger) *Manager {
	return &Manager{
		store:      store,
		chain:      chain,
		exec:       exec,
		cfg:        cfg,
		collector:  collector,
		log:        log.With().Str("component", "presale").Logger(),
		feeReserve: FeeReserveLamports(cfg),
	}
}

// FeeReserveLamports converts the configured SOL fee reserve to lamports.
func FeeReserveLamports(cfg config.PresaleConfig) uint64 {
	return uint64(math.Round(cfg.FeeReserveSOL * money.LamportsPerSOL))
}

// Limits returns the purchase bounds the validator applies.
func (m *Manager) Limits() Limits {
	return Limits{
		MinPurchaseUSD:     m.cfg.MinPurchaseUSD,
		MaxPurchaseUSD:     m.cfg.MaxPurchaseUSD,
		AllocationCapUSD:   m.cfg.AllocationCapUSD,
		FeeReserveLamports: m.feeReserve,
	}
}

// WalletInfo is the snapshot returned by the wallet lookup endpoint.
type WalletInfo struct {
	Address              string  `json:"address"`
	BalanceLamports      uint64  `json:"balanceLamports"`
	BalanceSOL           string  `json:"balanceSol"`
	MaxSpendableLamports uint64  `json:"maxSpendableLamports"`
	MaxSpendableSOL      string  `json:"maxSpendableSol"`
	SpentUSD             float64 `json:"spentUsd"`
	AllocationCapUSD     float64 `json:"allocationCapUsd,omitempty"`
}

// WalletInfo reads the wallet's balance fresh and derives the spendable
// ceiling after the fee reserve.
func (m *Manager) WalletInfo(ctx context.Context, walletAddr string) (WalletInfo, error) {
	pubkey, err := solana.PublicKeyFromBase58(walletAddr)
	if err != nil {
		return WalletInfo{}, flowErr(errors.ErrCodeInvalidWallet, "not a valid Solana address")
	}

	balance, err := m.chain.GetBalance(ctx, pubkey)
	if err != nil {
		return WalletInfo{}, flowErr(errors.ErrCodeRPCError, "could not read wallet balance")
	}

	var spent float64
	if sess := m.store.Get(walletAddr); sess != nil {
		spent = sess.spent()
	}

	spendable := MaxSpendable(balance, m.feeReserve)
	return WalletInfo{
		Address:              walletAddr,
		BalanceLamports:      balance,
		BalanceSOL:           money.SOLFromLamports(balance),
		MaxSpendableLamports: spendable,
		MaxSpendableSOL:      money.SOLFromLamports(spendable),
		SpentUSD:             spent,
		AllocationCapUSD:     m.cfg.AllocationCapUSD,
	}, nil
}

// PrepareResult carries the unsigned transaction the buyer's wallet signs.
type PrepareResult struct {
	UnsignedTransaction string  `json:"unsignedTransaction"`
	Wallet              string  `json:"wallet"`
	USDValue            float64 `json:"usdValue"`
	Lamports            uint64  `json:"lamports"`
}

// CheckPurchase validates a purchase request against the current price and
// a fresh balance read without starting an attempt.
func (m *Manager) CheckPurchase(ctx context.Context, walletAddr, amountSOL string, priceUSD float64) (Result, error) {
	pubkey, err := solana.PublicKeyFromBase58(walletAddr)
	if err != nil {
		return Result{}, flowErr(errors.ErrCodeInvalidWallet, "not a valid Solana address")
	}

	balance, err := m.chain.GetBalance(ctx, pubkey)
	if err != nil {
		return Result{}, flowErr(errors.ErrCodeRPCError, "could not read wallet balance")
	}

	var spent float64
	if sess := m.store.Get(walletAddr); sess != nil {
		spent = sess.spent()
	}

	return Validate(Input{
		RawAmount:       amountSOL,
		SolPriceUSD:     priceUSD,
		SpentUSD:        spent,
		BalanceLamports: balance,
		Limits:          m.Limits(),
	}), nil
}

// Prepare validates the purchase, starts an executor run against the
// session's browser wallet, and returns the unsigned transaction once the
// run reaches the signature step. Fails fast when the session is in the
// support state or already has an attempt in flight.
func (m *Manager) Prepare(ctx context.Context, walletAddr, amountSOL string, priceUSD float64) (*PrepareResult, error) {
	result, err := m.CheckPurchase(ctx, walletAddr, amountSOL, priceUSD)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, flowErr(result.Code, result.Message)
	}

	session := m.store.GetOrCreate(walletAddr)
	outcome, code := session.beginAttempt()
	if code != "" {
		return nil, flowErr(code, failMessage(code))
	}

	pubkey, _ := solana.PublicKeyFromBase58(walletAddr)
	prepared := make(chan string, 1)
	wallet := &browserWallet{pubkey: pubkey, session: session, prepared: prepared}

	// The executor run outlives this request: it parks at the signature
	// step until submit or cancel arrives, then submits and confirms.
	execCtx, cancel := context.WithTimeout(context.Background(), m.cfg.SessionTTL.Duration)
	execCtx = logger.WithContext(execCtx, m.log)

	go func() {
		defer cancel()
		receipt, execErr := m.exec.Execute(execCtx, wallet, amountSOL, session.setState)
		escalated := session.finishAttempt(receipt, execErr, m.maxAttempts())
		if escalated {
			m.escalate(walletAddr)
		}
		outcome <- execOutcome{receipt: receipt, err: execErr}
	}()

	select {
	case unsigned := <-prepared:
		return &PrepareResult{
			UnsignedTransaction: unsigned,
			Wallet:              walletAddr,
			USDValue:            result.USDValue,
			Lamports:            result.Lamports,
		}, nil
	case out := <-outcome:
		// Failed before reaching the signature step.
		return nil, flowErr(transfer.CodeOf(out.err), out.err.Error())
	case <-ctx.Done():
		return nil, flowErr(errors.ErrCodeNetworkError, "request cancelled")
	}
}

// Submit delivers the signed transaction into the parked executor run and
// blocks until the purchase confirms or fails.
func (m *Manager) Submit(ctx context.Context, walletAddr, signedTxB64 string) (View, error) {
	session := m.store.Get(walletAddr)
	if session == nil {
		return View{}, flowErr(errors.ErrCodeSessionNotFound, "no purchase session for this wallet")
	}

	raw, err := base64.StdEncoding.DecodeString(signedTxB64)
	if err != nil {
		return m.viewOf(session), flowErr(errors.ErrCodeInvalidField, "signedTransaction is not valid base64")
	}
	var tx solana.Transaction
	if err := tx.UnmarshalWithDecoder(bin.NewBinDecoder(raw)); err != nil {
		return m.viewOf(session), flowErr(errors.ErrCodeInvalidField, "signedTransaction does not decode")
	}
	if !hasSignature(&tx) {
		return m.viewOf(session), flowErr(errors.ErrCodeInvalidField, "transaction is not signed")
	}

	outcome := session.outcomeChan()
	pending := session.takePending()
	if pending == nil || outcome == nil {
		return m.viewOf(session), flowErr(errors.ErrCodeNoPendingSigning, "nothing is awaiting a signature")
	}
	pending.resolve <- signingResult{tx: &tx}

	return m.awaitOutcome(ctx, session, outcome)
}

// Cancel rejects the pending signature request. The attempt fails with
// signing_rejected and counts toward the failure streak.
func (m *Manager) Cancel(ctx context.Context, walletAddr string) (View, error) {
	session := m.store.Get(walletAddr)
	if session == nil {
		return View{}, flowErr(errors.ErrCodeSessionNotFound, "no purchase session for this wallet")
	}

	outcome := session.outcomeChan()
	pending := session.takePending()
	if pending == nil || outcome == nil {
		return m.viewOf(session), flowErr(errors.ErrCodeNoPendingSigning, "nothing is awaiting a signature")
	}
	pending.resolve <- signingResult{rejected: true}

	view, _ := m.awaitOutcome(ctx, session, outcome)
	return view, nil
}

// Reset clears the support-required latch so the buyer can try again.
func (m *Manager) Reset(walletAddr string) View {
	session := m.store.GetOrCreate(walletAddr)
	session.resetSupport()
	m.log.Info().Str("wallet", logger.TruncateAddress(walletAddr)).Msg("purchase.support_reset")
	return m.viewOf(session)
}

// Status reports the session state; unknown wallets read as idle.
func (m *Manager) Status(walletAddr string) View {
	session := m.store.Get(walletAddr)
	if session == nil {
		return View{
			Wallet:       walletAddr,
			State:        transfer.StateIdle,
			AttemptsLeft: m.maxAttempts(),
		}
	}
	return m.viewOf(session)
}

func (m *Manager) awaitOutcome(ctx context.Context, session *Session, outcome chan execOutcome) (View, error) {
	select {
	case out := <-outcome:
		view := m.viewOf(session)
		if out.err != nil {
			return view, flowErr(transfer.CodeOf(out.err), out.err.Error())
		}
		return view, nil
	case <-ctx.Done():
		return m.viewOf(session), flowErr(errors.ErrCodeNetworkError, "request cancelled while awaiting confirmation")
	}
}

func (m *Manager) viewOf(session *Session) View {
	return session.view(m.maxAttempts())
}

func (m *Manager) maxAttempts() int {
	if m.cfg.MaxAttempts > 0 {
		return m.cfg.MaxAttempts
	}
	return 3
}

func (m *Manager) escalate(walletAddr string) {
	if m.collector != nil {
		m.collector.SupportEscalations.Inc()
	}
	m.log.Warn().
		Str("wallet", logger.TruncateAddress(walletAddr)).
		Int("attempts", m.maxAttempts()).
		Msg("purchase.support_required")
}

func failMessage(code errors.ErrorCode) string {
	switch code {
	case errors.ErrCodeSupportRequired:
		return "too many failed attempts, contact support and reset to continue"
	case errors.ErrCodePurchaseInFlight:
		return "a purchase is already in progress for this wallet"
	default:
		return string(code)
	}
}

func hasSignature(tx *solana.Transaction) bool {
	for _, sig := range tx.Signatures {
		if !sig.IsZero() {
			return true
		}
	}
	return false
}

// browserWallet bridges the buyer's browser wallet into the executor's
// Wallet interface. SignTransaction publishes the unsigned transaction for
// the client and blocks until Submit or Cancel resolves it.
type browserWallet struct {
	pubkey   solana.PublicKey
	session  *Session
	prepared chan<- string
}

func (w *browserWallet) PublicKey() (solana.PublicKey, bool) {
	return w.pubkey, true
}

func (w *browserWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("presale: marshal unsigned transaction: %w", err)
	}
	unsigned := base64.StdEncoding.EncodeToString(raw)

	resolve := w.session.offerSigning(unsigned)
	select {
	case w.prepared <- unsigned:
	default:
	}

	select {
	case res := <-resolve:
		if res.rejected {
			return nil, transfer.ErrSigningRejected
		}
		return res.tx, nil
	case <-ctx.Done():
		// Expired without a signature. Claim the pending slot back so a
		// late submit gets no_pending_signing instead of a dead channel.
		w.session.takePending()
		return nil, fmt.Errorf("presale: signature wait expired: %w", ctx.Err())
	}
}
