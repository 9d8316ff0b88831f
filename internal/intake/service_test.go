package intake

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedu/presale-server/internal/errors"
)

func newTestService() *Service {
	return NewService(time.Millisecond, nil, zerolog.Nop())
}

func TestSubmitContact(t *testing.T) {
	svc := newTestService()

	ack, err := svc.SubmitContact(context.Background(), ContactInfo{
		Name:   "Ada",
		Email:  "ada@example.com",
		Wallet: "wallet-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ack.Reference)
	assert.False(t, ack.SubmittedAt.IsZero())
}

func TestSubmitContactMissingFields(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name  string
		info  ContactInfo
		code  errors.ErrorCode
		field string
	}{
		{"missing name", ContactInfo{Email: "a@b.c"}, errors.ErrCodeMissingField, "name"},
		{"blank name", ContactInfo{Name: "  ", Email: "a@b.c"}, errors.ErrCodeMissingField, "name"},
		{"missing email", ContactInfo{Name: "Ada"}, errors.ErrCodeMissingField, "email"},
		{"malformed email", ContactInfo{Name: "Ada", Email: "not-an-email"}, errors.ErrCodeInvalidField, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitContact(context.Background(), tt.info)
			require.Error(t, err)
			var ie *Error
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.code, ie.Code)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestSubmitContactFreezesUntilReset(t *testing.T) {
	svc := newTestService()
	info := ContactInfo{Name: "Ada", Email: "ada@example.com", Wallet: "wallet-1"}

	first, err := svc.SubmitContact(context.Background(), info)
	require.NoError(t, err)

	_, err = svc.SubmitContact(context.Background(), info)
	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, errors.ErrCodeAlreadySubmitted, ie.Code)

	ack, submitted := svc.Submitted(info)
	assert.True(t, submitted)
	assert.Equal(t, first.Reference, ack.Reference)

	svc.Reset(info)
	_, submitted = svc.Submitted(info)
	assert.False(t, submitted)

	second, err := svc.SubmitContact(context.Background(), info)
	require.NoError(t, err)
	assert.NotEqual(t, first.Reference, second.Reference)
}

func TestSubmitContactKeysByEmailWithoutWallet(t *testing.T) {
	svc := newTestService()

	_, err := svc.SubmitContact(context.Background(), ContactInfo{Name: "Ada", Email: "Ada@Example.com"})
	require.NoError(t, err)

	_, err = svc.SubmitContact(context.Background(), ContactInfo{Name: "Ada", Email: "ada@example.com"})
	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, errors.ErrCodeAlreadySubmitted, ie.Code, "email keys are case-insensitive")
}

func TestSubmitContactConcurrentDuplicates(t *testing.T) {
	svc := NewService(50*time.Millisecond, nil, zerolog.Nop())
	info := ContactInfo{Name: "Ada", Email: "ada@example.com", Wallet: "wallet-1"}

	const attempts = 4
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := svc.SubmitContact(context.Background(), info)
			errs <- err
		}()
	}

	var successes int
	for i := 0; i < attempts; i++ {
		if err := <-errs; err == nil {
			successes++
		} else {
			var ie *Error
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, errors.ErrCodeAlreadySubmitted, ie.Code)
		}
	}
	assert.Equal(t, 1, successes, "only one concurrent submission may record")
}

func TestSubmitContactHonorsContext(t *testing.T) {
	svc := NewService(50*time.Millisecond, nil, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := svc.SubmitContact(ctx, ContactInfo{Name: "Ada", Email: "ada@example.com"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// A cancelled submit must not freeze the record.
	_, err = svc.SubmitContact(context.Background(), ContactInfo{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
}
