package solanautil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKeyBase58(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), parsed.PublicKey())

	// Surrounding whitespace is tolerated.
	parsed, err = ParsePrivateKey("  " + key.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), parsed.PublicKey())
}

func TestParsePrivateKeyJSONArray(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	parts := make([]string, len(key))
	for i, b := range key {
		parts[i] = fmt.Sprintf("%d", b)
	}
	arrayForm := "[" + strings.Join(parts, ",") + "]"

	parsed, err := ParsePrivateKey(arrayForm)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), parsed.PublicKey())
}

func TestParsePrivateKeyRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage base58", "not-a-key-0OIl"},
		{"short array", "[1,2,3]"},
		{"unterminated array", "[1,2,3"},
		{"non-numeric element", "[1,2,x" + strings.Repeat(",0", 61) + "]"},
		{"out of range element", "[999" + strings.Repeat(",0", 63) + "]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrivateKey(tt.input)
			assert.Error(t, err)
		})
	}
}
