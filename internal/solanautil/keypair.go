// Package solanautil holds small Solana helpers shared by the server and
// the operational CLIs.
package solanautil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ParsePrivateKey reads a private key in either of the two encodings that
// show up in practice: the base58 string used in env vars and CLI flags, or
// the 64-element JSON byte array that solana-keygen writes to keypair files.
// The array form is detected by its leading bracket.
func ParsePrivateKey(keyStr string) (solana.PrivateKey, error) {
	keyStr = strings.TrimSpace(keyStr)
	if keyStr == "" {
		return nil, fmt.Errorf("solanautil: empty private key")
	}

	if strings.HasPrefix(keyStr, "[") {
		return keyFromJSONArray(keyStr)
	}

	key, err := solana.PrivateKeyFromBase58(keyStr)
	if err != nil {
		return nil, fmt.Errorf("solanautil: not a base58 private key: %w", err)
	}
	return key, nil
}

func keyFromJSONArray(keyStr string) (solana.PrivateKey, error) {
	var values []int
	if err := json.Unmarshal([]byte(keyStr), &values); err != nil {
		return nil, fmt.Errorf("solanautil: malformed key array: %w", err)
	}
	if len(values) != 64 {
		return nil, fmt.Errorf("solanautil: key array must hold 64 bytes, got %d", len(values))
	}

	key := make(solana.PrivateKey, 64)
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("solanautil: key array element %d out of byte range: %d", i, v)
		}
		key[i] = byte(v)
	}
	return key, nil
}
