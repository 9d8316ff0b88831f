package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedu/presale-server/internal/circuitbreaker"
	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/internal/content"
	"github.com/cryptoedu/presale-server/internal/intake"
	"github.com/cryptoedu/presale-server/internal/metrics"
	"github.com/cryptoedu/presale-server/internal/presale"
	"github.com/cryptoedu/presale-server/internal/quote"
	"github.com/cryptoedu/presale-server/internal/transfer"
	"github.com/cryptoedu/presale-server/internal/walletwatch"
)

type stubChain struct {
	balance uint64
}

func (c *stubChain) GetBalance(context.Context, solana.PublicKey) (uint64, error) {
	return c.balance, nil
}

func (c *stubChain) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (c *stubChain) SendTransaction(context.Context, *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{1}, nil
}

func (c *stubChain) ConfirmTransaction(context.Context, solana.Signature) error {
	return nil
}

type testEnv struct {
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	priceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"solana":{"usd":60}}`))
	}))
	t.Cleanup(priceSrv.Close)

	cfg := &config.Config{}
	cfg.Presale = config.PresaleConfig{
		TokenSymbol:             "EDU",
		TokenPriceUSD:           0.0001,
		MinPurchaseUSD:          150,
		MaxPurchaseUSD:          25000,
		TotalSupply:             10_000_000_000,
		VestingImmediatePercent: 40,
		VestingDuration:         config.Duration{Duration: 365 * 24 * time.Hour},
		TreasuryAddress:         "11111111111111111111111111111112",
		FeeReserveSOL:           0.01,
		SessionTTL:              config.Duration{Duration: 5 * time.Second},
		MaxAttempts:             3,
	}
	cfg.Quote = config.QuoteConfig{
		SourceURL: priceSrv.URL,
		Timeout:   config.Duration{Duration: time.Second},
	}

	log := zerolog.Nop()
	collector := metrics.New(prometheus.NewRegistry())
	breakers := circuitbreaker.NewManagerFromConfig(config.CircuitBreakerConfig{Enabled: false})

	quotes := quote.NewService(cfg.Quote, cfg.Presale, breakers, collector)
	_, err := quotes.Refresh(context.Background())
	require.NoError(t, err)

	chain := &stubChain{balance: 6_000_000_000}
	treasury := solana.MustPublicKeyFromBase58(cfg.Presale.TreasuryAddress)
	exec := transfer.NewExecutor(chain, treasury, presale.FeeReserveLamports(cfg.Presale), quotes, collector)

	store := presale.NewStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	manager := presale.NewManager(store, chain, exec, cfg.Presale, collector, log)

	repo, err := content.NewRepository(cfg.Content, cfg.Presale, collector, log)
	require.NoError(t, err)

	watcher := walletwatch.NewWatcher(chain.GetBalance, config.WalletWatchConfig{
		PollInterval: config.Duration{Duration: time.Minute},
	}, log)

	router := chi.NewRouter()
	ConfigureRouter(router, Deps{
		Config:  cfg,
		Quotes:  quotes,
		Manager: manager,
		Intake:  intake.NewService(time.Millisecond, collector, log),
		Content: repo,
		Watcher: watcher,
		Metrics: collector,
		Logger:  log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["priceReady"])
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestPresaleConfigEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/presale/v1/config")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EDU", body["tokenSymbol"])
	assert.Equal(t, float64(150), body["minPurchaseUsd"])
	assert.Equal(t, float64(3), body["maxAttempts"])
}

func TestQuoteEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/presale/v1/quote?amount=5")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(60), body["solPriceUsd"])
	assert.Equal(t, float64(300), body["usdValue"])
	assert.Equal(t, float64(3_000_000), body["tokenAmount"])

	vesting, isMap := body["vesting"].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, float64(1_200_000), vesting["immediateTokens"])

	// Garbage input degrades to zero amounts, never an error.
	resp, body = env.get(t, "/presale/v1/quote?amount=abc")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["tokenAmount"])
}

func TestPurchaseFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	wallet := key.PublicKey().String()

	resp, body := env.post(t, "/presale/v1/purchase/prepare", map[string]string{
		"wallet":    wallet,
		"amountSol": "5",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "prepare: %v", body)
	unsigned, isStr := body["unsignedTransaction"].(string)
	require.True(t, isStr)

	resp, body = env.get(t, "/presale/v1/purchase/status?wallet="+wallet)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "awaiting_signature", body["state"])

	raw, err := base64.StdEncoding.DecodeString(unsigned)
	require.NoError(t, err)
	var tx solana.Transaction
	require.NoError(t, tx.UnmarshalWithDecoder(bin.NewBinDecoder(raw)))
	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(key.PublicKey()) {
			return &key
		}
		return nil
	})
	require.NoError(t, err)
	signed, err := tx.MarshalBinary()
	require.NoError(t, err)

	resp, body = env.post(t, "/presale/v1/purchase/submit", map[string]string{
		"wallet":            wallet,
		"signedTransaction": base64.StdEncoding.EncodeToString(signed),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "submit: %v", body)
	assert.Equal(t, "confirmed", body["state"])

	receipt, isMap := body["receipt"].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, float64(3_000_000), receipt["tokenAmount"])
}

func TestPurchaseValidationErrorsOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	key, _ := solana.NewRandomPrivateKey()
	wallet := key.PublicKey().String()

	resp, body := env.post(t, "/presale/v1/purchase/prepare", map[string]string{
		"wallet":    wallet,
		"amountSol": "0.01",
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "below_minimum", errObj["code"])

	resp, body = env.post(t, "/presale/v1/purchase/submit", map[string]string{
		"wallet":            wallet,
		"signedTransaction": "aGVsbG8=",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errObj = body["error"].(map[string]any)
	assert.Equal(t, "session_not_found", errObj["code"])
}

func TestPurchaseStatusRequiresWallet(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/presale/v1/purchase/status")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "missing_field", errObj["code"])
}

func TestWalletEndpoint(t *testing.T) {
	env := newTestEnv(t)

	key, _ := solana.NewRandomPrivateKey()
	resp, body := env.get(t, "/presale/v1/wallet/"+key.PublicKey().String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(6_000_000_000), body["balanceLamports"])
	assert.Equal(t, "5.990000000", body["maxSpendableSol"])

	resp, body = env.get(t, "/presale/v1/wallet/garbage")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "invalid_wallet", errObj["code"])
}

func TestContactEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/presale/v1/contact", map[string]string{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", body)
	assert.NotEmpty(t, body["reference"])

	resp, body = env.post(t, "/presale/v1/contact", map[string]string{
		"email": "ada@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "missing_field", errObj["code"])
	details := errObj["details"].(map[string]any)
	assert.Equal(t, "name", details["field"])

	resp, _ = env.post(t, "/presale/v1/contact/reset", map[string]string{
		"email": "ada@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContentEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/content/blog")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	posts := body["posts"].([]any)
	require.NotEmpty(t, posts)

	slug := posts[0].(map[string]any)["slug"].(string)
	resp, body = env.get(t, "/content/blog/"+slug)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, slug, body["slug"])

	resp, _ = env.get(t, "/content/blog/no-such-post")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, path := range []string{
		"/content/audit",
		"/content/tokenomics",
		"/content/roadmap",
		"/content/whitepaper",
		"/content/privacy",
		"/content/team",
		"/content/scams",
	} {
		resp, _ := env.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestScamReportEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/content/scams/report", map[string]string{
		"name":        "FakeStaking.app",
		"description": "Deposits redirect to an attacker wallet.",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, false, body["verified"])

	resp, body = env.post(t, "/content/scams/report", map[string]string{
		"description": "anonymous",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "missing_field", errObj["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + fmt.Sprintf("/nope-%d", time.Now().Unix()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
