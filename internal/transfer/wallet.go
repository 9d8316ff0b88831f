package transfer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Wallet is the signing capability the executor needs. PublicKey reports
// whether a wallet is connected at all; SignTransaction may block until a
// user approves or rejects (a browser wallet round-trip) and must honor ctx.
type Wallet interface {
	PublicKey() (solana.PublicKey, bool)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// KeypairWallet signs locally with a private key. Used by operational
// tooling and tests; buyers sign in their own wallet via the session flow.
type KeypairWallet struct {
	key solana.PrivateKey
}

func NewKeypairWallet(key solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{key: key}
}

func (w *KeypairWallet) PublicKey() (solana.PublicKey, bool) {
	if w == nil || len(w.key) == 0 {
		return solana.PublicKey{}, false
	}
	return w.key.PublicKey(), true
}

func (w *KeypairWallet) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if w == nil || len(w.key) == 0 {
		return nil, fmt.Errorf("transfer: no key material")
	}
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transfer: sign transaction: %w", err)
	}
	return tx, nil
}
