package httpserver

import (
	"net/http"

	apperrors "github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/intake"
	"github.com/cryptoedu/presale-server/pkg/responders"
)

// submitContact records the post-purchase contact form.
func (h *handlers) submitContact(w http.ResponseWriter, r *http.Request) {
	var info intake.ContactInfo
	if err := decodeJSON(r.Body, &info); err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeInvalidField, "malformed request body")
		return
	}

	ack, err := h.intake.SubmitContact(r.Context(), info)
	if err != nil {
		code, msg, details := errorCodeOf(err)
		apperrors.WriteError(w, code, msg, details)
		return
	}

	responders.JSON(w, http.StatusOK, ack)
}

// resetContact unfreezes a submitted form so another can be sent.
func (h *handlers) resetContact(w http.ResponseWriter, r *http.Request) {
	var info intake.ContactInfo
	if err := decodeJSON(r.Body, &info); err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeInvalidField, "malformed request body")
		return
	}

	h.intake.Reset(info)
	responders.JSON(w, http.StatusOK, map[string]any{"reset": true})
}
