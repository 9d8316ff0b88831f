package presale

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/transfer"
)

// Session is the per-wallet purchase state the browser flow runs against.
// All fields are guarded by mu; handlers only ever see copies via View.
type Session struct {
	mu sync.Mutex

	wallet    string
	state     transfer.State
	attempts  int
	support   bool
	receipt   *transfer.Receipt
	lastError errors.ErrorCode
	spentUSD  float64
	inFlight  bool

	pending *pendingSigning
	outcome chan execOutcome

	createdAt time.Time
	updatedAt time.Time
}

type pendingSigning struct {
	unsignedTx string
	resolve    chan signingResult
}

type signingResult struct {
	tx       *solana.Transaction
	rejected bool
}

type execOutcome struct {
	receipt *transfer.Receipt
	err     error
}

func newSession(wallet string) *Session {
	now := time.Now()
	return &Session{
		wallet:    wallet,
		state:     transfer.StateIdle,
		createdAt: now,
		updatedAt: now,
	}
}

// View is a point-in-time copy of session state, safe to serialize.
type View struct {
	Wallet           string            `json:"wallet"`
	State            transfer.State    `json:"state"`
	Attempts         int               `json:"attempts"`
	AttemptsLeft     int               `json:"attemptsLeft"`
	SupportRequired  bool              `json:"supportRequired"`
	LastError        errors.ErrorCode  `json:"lastError,omitempty"`
	Receipt          *transfer.Receipt `json:"receipt,omitempty"`
	SpentUSD         float64           `json:"spentUsd"`
	PendingSignature bool              `json:"pendingSignature"`
}

func (s *Session) view(maxAttempts int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	left := maxAttempts - s.attempts
	if left < 0 {
		left = 0
	}
	return View{
		Wallet:           s.wallet,
		State:            s.state,
		Attempts:         s.attempts,
		AttemptsLeft:     left,
		SupportRequired:  s.support,
		LastError:        s.lastError,
		Receipt:          s.receipt,
		SpentUSD:         s.spentUSD,
		PendingSignature: s.pending != nil,
	}
}

func (s *Session) setState(state transfer.State) {
	s.mu.Lock()
	s.state = state
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

func (s *Session) expirable(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.inFlight && !s.support && s.updatedAt.Before(cutoff)
}

func (s *Session) spent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spentUSD
}

// beginAttempt marks the session in-flight and hands back the channel the
// attempt's outcome will arrive on. It fails when support contact is
// required or another purchase is already running.
func (s *Session) beginAttempt() (chan execOutcome, errors.ErrorCode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.support {
		return nil, errors.ErrCodeSupportRequired
	}
	if s.inFlight {
		return nil, errors.ErrCodePurchaseInFlight
	}
	s.inFlight = true
	s.state = transfer.StatePreparing
	s.lastError = ""
	s.outcome = make(chan execOutcome, 1)
	s.updatedAt = time.Now()
	return s.outcome, ""
}

// outcomeChan returns the channel of the attempt in flight, or nil.
func (s *Session) outcomeChan() chan execOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFlight {
		return nil
	}
	return s.outcome
}

// offerSigning publishes the unsigned transaction and hands back the channel
// submit or cancel resolves.
func (s *Session) offerSigning(unsignedTx string) chan signingResult {
	resolve := make(chan signingResult, 1)
	s.mu.Lock()
	s.pending = &pendingSigning{unsignedTx: unsignedTx, resolve: resolve}
	s.updatedAt = time.Now()
	s.mu.Unlock()
	return resolve
}

// takePending claims the pending signing request, if any. At most one caller
// wins; the rest see nil.
func (s *Session) takePending() *pendingSigning {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	return p
}

// finishAttempt records the executor outcome and applies the retry policy:
// any success clears the failure streak, and maxAttempts consecutive
// failures latch the support-required state until an explicit reset.
func (s *Session) finishAttempt(receipt *transfer.Receipt, err error, maxAttempts int) (escalated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	s.pending = nil
	s.updatedAt = time.Now()

	if err == nil {
		s.state = transfer.StateConfirmed
		s.receipt = receipt
		s.attempts = 0
		s.lastError = ""
		if receipt != nil {
			s.spentUSD += receipt.USDValue
		}
		return false
	}

	s.state = transfer.StateFailed
	s.lastError = transfer.CodeOf(err)
	s.attempts++
	if s.attempts >= maxAttempts && !s.support {
		s.support = true
		return true
	}
	return false
}

// resetSupport clears the support-required latch and the failure streak.
func (s *Session) resetSupport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.support = false
	s.attempts = 0
	s.lastError = ""
	s.state = transfer.StateIdle
	s.updatedAt = time.Now()
}
