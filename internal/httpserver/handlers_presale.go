package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/pkg/responders"
)

// health reports service status including whether a usable price is loaded.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	price, asOf := h.quotes.Price()

	status := "ok"
	statusCode := http.StatusOK
	if price <= 0 {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	responders.JSON(w, statusCode, map[string]any{
		"status":     status,
		"uptime":     time.Since(serverStartTime).String(),
		"timestamp":  time.Now().UTC(),
		"priceAsOf":  asOf,
		"priceReady": price > 0,
	})
}

// presaleConfig exposes the fixed sale parameters the widget renders.
func (h *handlers) presaleConfig(w http.ResponseWriter, r *http.Request) {
	p := h.cfg.Presale
	responders.JSON(w, http.StatusOK, map[string]any{
		"tokenSymbol":             p.TokenSymbol,
		"tokenPriceUsd":           p.TokenPriceUSD,
		"minPurchaseUsd":          p.MinPurchaseUSD,
		"maxPurchaseUsd":          p.MaxPurchaseUSD,
		"totalSupply":             p.TotalSupply,
		"vestingImmediatePercent": p.VestingImmediatePercent,
		"vestingDuration":         p.VestingDuration.Duration.String(),
		"treasuryAddress":         p.TreasuryAddress,
		"allocationCapUsd":        p.AllocationCapUSD,
		"feeReserveSol":           p.FeeReserveSOL,
		"maxAttempts":             p.MaxAttempts,
	})
}

// getQuote derives amounts for ?amount=X at the current price. Bad input
// yields zero amounts, mirroring the widget recomputing on every keystroke.
func (h *handlers) getQuote(w http.ResponseWriter, r *http.Request) {
	rawAmount := r.URL.Query().Get("amount")
	price, asOf := h.quotes.Price()

	amounts := h.quotes.Derive(rawAmount)
	vesting := h.quotes.Vesting(amounts.TokenAmount)

	responders.JSON(w, http.StatusOK, map[string]any{
		"input":       rawAmount,
		"solPriceUsd": price,
		"priceAsOf":   asOf,
		"amountSol":   amounts.AmountSOL,
		"usdValue":    amounts.USDValue,
		"tokenAmount": amounts.TokenAmount,
		"vesting":     vesting,
	})
}

// refreshQuote forces a price fetch outside the periodic schedule.
func (h *handlers) refreshQuote(w http.ResponseWriter, r *http.Request) {
	price, err := h.quotes.Refresh(r.Context())
	if err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodePriceUnavailable, "price source is unavailable")
		return
	}

	_, asOf := h.quotes.Price()
	responders.JSON(w, http.StatusOK, map[string]any{
		"solPriceUsd": price,
		"priceAsOf":   asOf,
	})
}

// getWallet returns a fresh balance snapshot plus the spendable ceiling.
func (h *handlers) getWallet(w http.ResponseWriter, r *http.Request) {
	pubkey := chi.URLParam(r, "pubkey")

	info, err := h.manager.WalletInfo(r.Context(), pubkey)
	if err != nil {
		code, msg, details := errorCodeOf(err)
		apperrors.WriteError(w, code, msg, details)
		return
	}

	if h.watcher != nil {
		if _, tracked := h.watcher.Snapshot(pubkey); !tracked {
			_, _ = h.watcher.Track(r.Context(), pubkey)
		}
	}

	responders.JSON(w, http.StatusOK, info)
}

type prepareRequest struct {
	Wallet    string `json:"wallet"`
	AmountSol string `json:"amountSol"`
}

// preparePurchase validates and returns the unsigned transfer transaction.
func (h *handlers) preparePurchase(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeInvalidField, "malformed request body")
		return
	}

	price, _ := h.quotes.Price()
	result, err := h.manager.Prepare(r.Context(), req.Wallet, req.AmountSol, price)
	if err != nil {
		code, msg, details := errorCodeOf(err)
		apperrors.WriteError(w, code, msg, details)
		return
	}

	responders.JSON(w, http.StatusOK, result)
}

type submitRequest struct {
	Wallet            string `json:"wallet"`
	SignedTransaction string `json:"signedTransaction"`
}

// submitPurchase delivers the signed transaction and waits for confirmation.
func (h *handlers) submitPurchase(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeInvalidField, "malformed request body")
		return
	}

	view, err := h.manager.Submit(r.Context(), req.Wallet, req.SignedTransaction)
	if err != nil {
		code, msg, details := errorCodeOf(err)
		if details == nil {
			details = map[string]any{}
		}
		details["session"] = view
		apperrors.WriteError(w, code, msg, details)
		return
	}

	responders.JSON(w, http.StatusOK, view)
}

type walletRequest struct {
	Wallet string `json:"wallet"`
}

// cancelPurchase rejects the pending signature request.
func (h *handlers) cancelPurchase(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeInvalidField, "malformed request body")
		return
	}

	view, err := h.manager.Cancel(r.Context(), req.Wallet)
	if err != nil {
		code, msg, details := errorCodeOf(err)
		apperrors.WriteError(w, code, msg, details)
		return
	}

	responders.JSON(w, http.StatusOK, view)
}

// resetPurchase clears the support-contact state for a wallet.
func (h *handlers) resetPurchase(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeInvalidField, "malformed request body")
		return
	}
	if req.Wallet == "" {
		apperrors.WriteError(w, apperrors.ErrCodeMissingField, "required field is missing", map[string]any{"field": "wallet"})
		return
	}

	responders.JSON(w, http.StatusOK, h.manager.Reset(req.Wallet))
}

// purchaseStatus reports the purchase session for ?wallet=.
func (h *handlers) purchaseStatus(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		apperrors.WriteError(w, apperrors.ErrCodeMissingField, "required field is missing", map[string]any{"field": "wallet"})
		return
	}

	responders.JSON(w, http.StatusOK, h.manager.Status(wallet))
}
