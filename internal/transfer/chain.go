package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/cryptoedu/presale-server/internal/circuitbreaker"
	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/metrics"
	"github.com/cryptoedu/presale-server/internal/rpcutil"
)

const (
	confirmPollInterval = 2 * time.Second

	// Blockhashes stay valid for roughly 150 slots. A transaction not seen
	// on-chain within this window was dropped and will never land.
	blockhashValidityWindow = 90 * time.Second
)

// Chain is the executor's view of Solana. Reads may retry internally;
// SendTransaction never does.
type Chain interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
}

// RPCChain implements Chain over a solana-go RPC client plus an optional
// WebSocket client for fast confirmations.
type RPCChain struct {
	rpcClient  *rpc.Client
	wsClient   *ws.Client
	breakers   *circuitbreaker.Manager
	collector  *metrics.Metrics
	network    string
	commitment rpc.CommitmentType
	sendOpts   rpc.TransactionOpts
}

// NewRPCChain dials the configured RPC endpoint. The WebSocket connection is
// optional; confirmation falls back to RPC polling without it.
func NewRPCChain(ctx context.Context, cfg config.SolanaConfig, breakers *circuitbreaker.Manager, collector *metrics.Metrics) (*RPCChain, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("transfer: rpc url not configured")
	}

	commitment := parseCommitment(cfg.Commitment)

	c := &RPCChain{
		rpcClient:  rpc.New(cfg.RPCURL),
		breakers:   breakers,
		collector:  collector,
		network:    cfg.Network,
		commitment: commitment,
		sendOpts: rpc.TransactionOpts{
			SkipPreflight:       cfg.SkipPreflight,
			PreflightCommitment: commitment,
		},
	}

	if cfg.WSURL != "" {
		wsClient, err := ws.Connect(ctx, cfg.WSURL)
		if err != nil {
			return nil, fmt.Errorf("transfer: connect websocket: %w", err)
		}
		c.wsClient = wsClient
	}

	return c, nil
}

func parseCommitment(s string) rpc.CommitmentType {
	switch strings.ToLower(s) {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

// Close shuts down the WebSocket connection if one was opened.
func (c *RPCChain) Close() error {
	if c.wsClient != nil {
		c.wsClient.Close()
	}
	return nil
}

func (c *RPCChain) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	start := time.Now()
	result, err := c.breakers.Execute(circuitbreaker.ServiceSolanaRPC, func() (interface{}, error) {
		return rpcutil.WithRetry(ctx, func() (*rpc.GetBalanceResult, error) {
			return c.rpcClient.GetBalance(ctx, pubkey, c.commitment)
		})
	})
	c.collector.ObserveRPCCall("GetBalance", c.network, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("transfer: get balance: %w", err)
	}
	out, okCast := result.(*rpc.GetBalanceResult)
	if !okCast || out == nil {
		return 0, errors.New("transfer: empty balance result")
	}
	return out.Value, nil
}

func (c *RPCChain) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	result, err := c.breakers.Execute(circuitbreaker.ServiceSolanaRPC, func() (interface{}, error) {
		return rpcutil.WithRetry(ctx, func() (*rpc.GetLatestBlockhashResult, error) {
			return c.rpcClient.GetLatestBlockhash(ctx, c.commitment)
		})
	})
	c.collector.ObserveRPCCall("GetLatestBlockhash", c.network, time.Since(start), err)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("transfer: get latest blockhash: %w", err)
	}
	out, okCast := result.(*rpc.GetLatestBlockhashResult)
	if !okCast || out == nil || out.Value == nil {
		return solana.Hash{}, errors.New("transfer: empty blockhash result")
	}
	return out.Value.Blockhash, nil
}

// SendTransaction broadcasts exactly once. No retry wrapper here: a
// submission that timed out may still land, and resubmitting double-spends.
func (c *RPCChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	start := time.Now()
	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, c.sendOpts)
	c.collector.ObserveRPCCall("SendTransaction", c.network, time.Since(start), err)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("transfer: send transaction: %w", err)
	}
	return sig, nil
}

// ConfirmTransaction waits for the signature to reach the configured
// commitment, preferring the WebSocket subscription and falling back to RPC
// polling when the socket is unavailable or breaks mid-wait.
func (c *RPCChain) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	if c.wsClient != nil {
		if err := c.confirmViaWebSocket(ctx, sig); err == nil {
			return nil
		}
	}
	return c.confirmViaPolling(ctx, sig)
}

func (c *RPCChain) confirmViaWebSocket(ctx context.Context, sig solana.Signature) error {
	sub, err := c.wsClient.SignatureSubscribe(sig, c.commitment)
	if err != nil {
		return fmt.Errorf("transfer: subscribe signature: %w", err)
	}
	defer sub.Unsubscribe()

	res, err := sub.Recv(ctx)
	if err != nil {
		return fmt.Errorf("transfer: wait confirmation: %w", err)
	}
	if res == nil {
		return errors.New("transfer: empty confirmation result")
	}
	if res.Value.Err != nil {
		return fmt.Errorf("transfer: transaction error: %v", res.Value.Err)
	}
	return nil
}

func (c *RPCChain) confirmViaPolling(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(blockhashValidityWindow)

	for {
		select {
		case <-ctx.Done():
			// One last status check before giving up.
			return c.checkSignatureStatus(ctx, sig)
		case <-ticker.C:
			err := c.checkSignatureStatus(ctx, sig)
			if err == nil {
				return nil
			}
			if time.Now().After(deadline) {
				return errors.New("transfer: transaction not found within blockhash validity window")
			}
			if isStillPendingError(err) {
				continue
			}
			return err
		}
	}
}

func (c *RPCChain) checkSignatureStatus(ctx context.Context, sig solana.Signature) error {
	start := time.Now()
	result, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
	c.collector.ObserveRPCCall("GetSignatureStatuses", c.network, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("transfer: get signature status: %w", err)
	}
	if result == nil || len(result.Value) == 0 || result.Value[0] == nil {
		return errors.New("transfer: transaction not found")
	}

	status := result.Value[0]
	if status.Err != nil {
		return fmt.Errorf("transfer: transaction error: %v", status.Err)
	}
	if !commitmentReached(status.ConfirmationStatus, c.commitment) {
		return errors.New("transfer: transaction not confirmed yet")
	}
	return nil
}

func commitmentReached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	rank := func(s rpc.ConfirmationStatusType) int {
		switch s {
		case rpc.ConfirmationStatusProcessed:
			return 1
		case rpc.ConfirmationStatusConfirmed:
			return 2
		case rpc.ConfirmationStatusFinalized:
			return 3
		}
		return 0
	}
	wantRank := 2
	switch want {
	case rpc.CommitmentProcessed:
		wantRank = 1
	case rpc.CommitmentFinalized:
		wantRank = 3
	}
	return rank(status) >= wantRank
}

func isStillPendingError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "not found") || strings.Contains(msg, "not confirmed yet")
}
