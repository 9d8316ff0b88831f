// Command devbuy performs an end-to-end presale purchase against devnet,
// signing locally with a keypair instead of a browser wallet. Useful for
// verifying RPC connectivity and the transfer pipeline before a deploy.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cryptoedu/presale-server/internal/circuitbreaker"
	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/metrics"
	"github.com/cryptoedu/presale-server/internal/money"
	"github.com/cryptoedu/presale-server/internal/presale"
	"github.com/cryptoedu/presale-server/internal/quote"
	"github.com/cryptoedu/presale-server/internal/solanautil"
	"github.com/cryptoedu/presale-server/internal/transfer"
)

func main() {
	var (
		cfgPath     = flag.String("config", "", "path to YAML config file")
		keypairPath = flag.String("keypair", "", "path to Solana keypair (JSON array or base58 file)")
		amountSOL   = flag.String("amount", "", "purchase amount in SOL")
		timeout     = flag.Duration("timeout", 2*time.Minute, "overall deadline for the purchase")
	)
	flag.Parse()

	if *keypairPath == "" {
		log.Fatal("keypair flag is required")
	}
	if *amountSOL == "" {
		log.Fatal("amount flag is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !strings.Contains(cfg.Solana.Network, "devnet") {
		log.Fatalf("refusing to run against %s, point solana.network at devnet", cfg.Solana.Network)
	}

	raw, err := os.ReadFile(*keypairPath)
	if err != nil {
		log.Fatalf("read keypair: %v", err)
	}
	key, err := solanautil.ParsePrivateKey(strings.TrimSpace(string(raw)))
	if err != nil {
		log.Fatalf("parse keypair: %v", err)
	}
	wallet := transfer.NewKeypairWallet(key)

	treasury, err := solana.PublicKeyFromBase58(cfg.Presale.TreasuryAddress)
	if err != nil {
		log.Fatalf("parse treasury address: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	collector := metrics.New(prometheus.NewRegistry())
	breakers := circuitbreaker.NewManagerFromConfig(cfg.CircuitBreaker)

	chain, err := transfer.NewRPCChain(ctx, cfg.Solana, breakers, collector)
	if err != nil {
		log.Fatalf("connect chain: %v", err)
	}
	defer chain.Close()

	quotes := quote.NewService(cfg.Quote, cfg.Presale, breakers, collector)
	price, err := quotes.Refresh(ctx)
	if err != nil {
		log.Fatalf("fetch SOL price: %v", err)
	}
	fmt.Printf("SOL price: $%.2f\n", price)

	buyer := key.PublicKey()
	balance, err := chain.GetBalance(ctx, buyer)
	if err != nil {
		log.Fatalf("fetch balance: %v", err)
	}
	fmt.Printf("buyer %s balance %s SOL\n", buyer, money.SOLFromLamports(balance))

	exec := transfer.NewExecutor(chain, treasury, presale.FeeReserveLamports(cfg.Presale), quotes, collector)

	receipt, err := exec.Execute(ctx, wallet, *amountSOL, func(state transfer.State) {
		fmt.Printf("  state: %s\n", state)
	})
	if err != nil {
		log.Fatalf("purchase failed (%s): %v", transfer.CodeOf(err), err)
	}

	fmt.Printf("confirmed: signature=%s amount=%s SOL usd=%.2f tokens=%d\n",
		receipt.Signature, receipt.AmountSOL, receipt.USDValue, receipt.TokenAmount)
}
