package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cryptoedu/presale-server/internal/content"
	apperrors "github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/pkg/responders"
)

func (h *handlers) listBlogPosts(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, map[string]any{"posts": h.content.BlogPosts()})
}

func (h *handlers) getBlogPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, found := h.content.BlogPost(slug)
	if !found {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeNotFound, "no article with that slug")
		return
	}
	responders.JSON(w, http.StatusOK, post)
}

func (h *handlers) getAudit(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, h.content.Audit())
}

func (h *handlers) getTokenomics(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, h.content.Tokenomics())
}

func (h *handlers) getRoadmap(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, map[string]any{"phases": h.content.Roadmap()})
}

func (h *handlers) getWhitepaper(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, h.content.Whitepaper())
}

func (h *handlers) getPrivacy(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, h.content.Privacy())
}

func (h *handlers) getTeam(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, map[string]any{"members": h.content.Team()})
}

func (h *handlers) listScams(w http.ResponseWriter, r *http.Request) {
	responders.JSON(w, http.StatusOK, map[string]any{"scams": h.content.Scams()})
}

func (h *handlers) reportScam(w http.ResponseWriter, r *http.Request) {
	var report content.ScamReport
	if err := decodeJSON(r.Body, &report); err != nil {
		apperrors.WriteSimpleError(w, apperrors.ErrCodeInvalidField, "malformed request body")
		return
	}

	record, err := h.content.ReportScam(report)
	if err != nil {
		code, msg, details := errorCodeOf(err)
		apperrors.WriteError(w, code, msg, details)
		return
	}

	responders.JSON(w, http.StatusCreated, record)
}
