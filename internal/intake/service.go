package intake

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/logger"
	"github.com/cryptoedu/presale-server/internal/metrics"
)

// ContactInfo is the post-purchase contact form. Name and Email are
// required; everything else is optional.
type ContactInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Telegram string `json:"telegram,omitempty"`
	Message  string `json:"message,omitempty"`
	Wallet   string `json:"wallet,omitempty"`
}

// Ack confirms a recorded submission.
type Ack struct {
	Reference   string    `json:"reference"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Error is a field-level intake failure.
type Error struct {
	Code  errors.ErrorCode
	Field string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Field)
	}
	return string(e.Code)
}

// Service collects contact details after a confirmed purchase or a support
// escalation. Submissions are held in memory only and the send is simulated
// with a configured delay; a record freezes once submitted until the caller
// explicitly resets it.
type Service struct {
	delay time.Duration
	log   zerolog.Logger

	collector *metrics.Metrics

	mu        sync.Mutex
	submitted map[string]Ack
	pending   map[string]struct{}
	seq       int
}

func NewService(delay time.Duration, collector *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		delay:     delay,
		log:       log.With().Str("component", "intake").Logger(),
		collector: collector,
		submitted: make(map[string]Ack),
		pending:   make(map[string]struct{}),
	}
}

// SubmitContact validates and records the form. Missing name or email fails
// with missing_field naming the first absent field; a repeat submission for
// the same key fails with already_submitted until Reset.
func (s *Service) SubmitContact(ctx context.Context, info ContactInfo) (Ack, error) {
	if strings.TrimSpace(info.Name) == "" {
		return Ack{}, &Error{Code: errors.ErrCodeMissingField, Field: "name"}
	}
	email := strings.TrimSpace(info.Email)
	if email == "" {
		return Ack{}, &Error{Code: errors.ErrCodeMissingField, Field: "email"}
	}
	if !strings.Contains(email, "@") {
		return Ack{}, &Error{Code: errors.ErrCodeInvalidField, Field: "email"}
	}

	key := s.keyFor(info)

	// Reserve the key before sleeping so a concurrent submission for the
	// same contact sees already_submitted instead of racing past the check.
	s.mu.Lock()
	_, exists := s.submitted[key]
	_, inFlight := s.pending[key]
	if exists || inFlight {
		s.mu.Unlock()
		return Ack{}, &Error{Code: errors.ErrCodeAlreadySubmitted}
	}
	s.pending[key] = struct{}{}
	s.mu.Unlock()

	// Simulated delivery; there is no backend to persist to.
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
		return Ack{}, ctx.Err()
	}

	s.mu.Lock()
	delete(s.pending, key)
	s.seq++
	ack := Ack{
		Reference:   fmt.Sprintf("contact_%d_%d", time.Now().Unix(), s.seq),
		SubmittedAt: time.Now().UTC(),
	}
	s.submitted[key] = ack
	s.mu.Unlock()

	if s.collector != nil {
		s.collector.ContactSubmissions.Inc()
	}
	s.log.Info().
		Str("email", logger.RedactEmail(email)).
		Str("wallet", logger.TruncateAddress(info.Wallet)).
		Str("reference", ack.Reference).
		Msg("intake.contact_submitted")

	return ack, nil
}

// Submitted reports whether this contact has already gone through.
func (s *Service) Submitted(info ContactInfo) (Ack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ack, exists := s.submitted[s.keyFor(info)]
	return ack, exists
}

// Reset unfreezes a submitted record so another form can be sent.
func (s *Service) Reset(info ContactInfo) {
	s.mu.Lock()
	delete(s.submitted, s.keyFor(info))
	s.mu.Unlock()
}

func (s *Service) keyFor(info ContactInfo) string {
	if wallet := strings.TrimSpace(info.Wallet); wallet != "" {
		return "wallet:" + wallet
	}
	return "email:" + strings.ToLower(strings.TrimSpace(info.Email))
}
