package walletwatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/logger"
	"github.com/cryptoedu/presale-server/internal/money"
)

// BalanceFunc reads a wallet's lamport balance. Backed by the chain client
// in production and by stubs in tests.
type BalanceFunc func(ctx context.Context, pubkey solana.PublicKey) (uint64, error)

// Snapshot is a wallet's last observed balance.
type Snapshot struct {
	Address    string    `json:"address"`
	Lamports   uint64    `json:"lamports"`
	SOL        string    `json:"sol"`
	UpdatedAt  time.Time `json:"updatedAt"`
	CheckError string    `json:"checkError,omitempty"`
}

// Watcher polls tracked wallets' SOL balances on a fixed interval. Snapshots
// are written only by the poll loop; readers get copies. The tracked set is
// bounded: wallets nobody has asked about within the idle TTL are dropped on
// the next sweep, and when the cap is reached the least recently requested
// wallet makes room for the new one.
type Watcher struct {
	balanceOf  BalanceFunc
	interval   time.Duration
	idleTTL    time.Duration
	maxTracked int
	log        zerolog.Logger

	mu        sync.Mutex
	tracked   map[string]solana.PublicKey
	snapshots map[string]Snapshot
	lastSeen  map[string]time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewWatcher(balanceOf BalanceFunc, cfg config.WalletWatchConfig, log zerolog.Logger) *Watcher {
	interval := cfg.PollInterval.Duration
	if interval <= 0 {
		interval = 30 * time.Second
	}
	idleTTL := cfg.IdleTTL.Duration
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	maxTracked := cfg.MaxTracked
	if maxTracked <= 0 {
		maxTracked = 1000
	}
	return &Watcher{
		balanceOf:  balanceOf,
		interval:   interval,
		idleTTL:    idleTTL,
		maxTracked: maxTracked,
		log:        log.With().Str("component", "walletwatch").Logger(),
		tracked:    make(map[string]solana.PublicKey),
		snapshots:  make(map[string]Snapshot),
		lastSeen:   make(map[string]time.Time),
		stopCh:     make(chan struct{}),
	}
}

// Track adds a wallet to the poll set and primes an immediate check. At the
// cap, the least recently requested wallet is evicted first.
func (w *Watcher) Track(ctx context.Context, address string) (Snapshot, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return Snapshot{}, fmt.Errorf("walletwatch: invalid address: %w", err)
	}

	w.mu.Lock()
	if _, exists := w.tracked[address]; !exists && len(w.tracked) >= w.maxTracked {
		w.evictOldestLocked()
	}
	w.tracked[address] = pubkey
	w.lastSeen[address] = time.Now()
	w.mu.Unlock()

	w.check(ctx, address, pubkey)
	snap, _ := w.Snapshot(address)
	return snap, nil
}

// Untrack drops a wallet from the poll set.
func (w *Watcher) Untrack(address string) {
	w.mu.Lock()
	w.dropLocked(address)
	w.mu.Unlock()
}

// Snapshot returns the last observation for a wallet and marks it as still
// wanted, keeping it alive past the idle TTL.
func (w *Watcher) Snapshot(address string) (Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap, exists := w.snapshots[address]
	if exists {
		w.lastSeen[address] = time.Now()
	}
	return snap, exists
}

// Tracked reports the current poll set size.
func (w *Watcher) Tracked() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tracked)
}

// Start begins the poll loop with an immediate first sweep.
func (w *Watcher) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("walletwatch.started")
	w.wg.Add(1)
	go w.pollLoop(ctx)
}

// Stop halts the poll loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info().Msg("walletwatch.stopped")
}

func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.idleTTL)

	w.mu.Lock()
	batch := make(map[string]solana.PublicKey, len(w.tracked))
	for addr, pubkey := range w.tracked {
		if w.lastSeen[addr].Before(cutoff) {
			w.dropLocked(addr)
			continue
		}
		batch[addr] = pubkey
	}
	w.mu.Unlock()

	for addr, pubkey := range batch {
		w.check(ctx, addr, pubkey)
	}
}

func (w *Watcher) dropLocked(address string) {
	delete(w.tracked, address)
	delete(w.snapshots, address)
	delete(w.lastSeen, address)
}

func (w *Watcher) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for addr := range w.tracked {
		if seen := w.lastSeen[addr]; oldest == "" || seen.Before(oldestAt) {
			oldest = addr
			oldestAt = seen
		}
	}
	if oldest != "" {
		w.dropLocked(oldest)
	}
}

func (w *Watcher) check(ctx context.Context, address string, pubkey solana.PublicKey) {
	balance, err := w.balanceOf(ctx, pubkey)

	snap := Snapshot{
		Address:   address,
		UpdatedAt: time.Now().UTC(),
	}
	if err != nil {
		w.log.Error().
			Err(err).
			Str("wallet", logger.TruncateAddress(address)).
			Msg("walletwatch.check_failed")
		snap.CheckError = err.Error()

		// Keep the previous balance visible alongside the error.
		w.mu.Lock()
		if prev, exists := w.snapshots[address]; exists {
			snap.Lamports = prev.Lamports
			snap.SOL = prev.SOL
		}
		w.mu.Unlock()
	} else {
		snap.Lamports = balance
		snap.SOL = money.SOLFromLamports(balance)
	}

	w.mu.Lock()
	if _, stillTracked := w.tracked[address]; stillTracked {
		w.snapshots[address] = snap
	}
	w.mu.Unlock()
}
