package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"brandforge/internal/auth"
	"brandforge/internal/domain"
	"brandforge/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
	baseURL      string
	log          zerolog.Logger
}

func NewShareHandler(shareService *service.ShareService, baseURL string, log zerolog.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		baseURL:      baseURL,
		log:          log.With().Str("component", "share_handler").Logger(),
	}
}

type shareResponse struct {
	*domain.Share
	ShareURL string `json:"share_url"`
}

func (h *ShareHandler) respond(share *domain.Share) shareResponse {
	return shareResponse{Share: share, ShareURL: h.baseURL + "/share/" + share.UUID}
}

func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req service.CreateShareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	share, err := h.shareService.CreateShare(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.respond(share))
}

func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := domain.ShareFilter{Search: r.URL.Query().Get("search")}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if raw := r.URL.Query().Get("share_type"); raw != "" {
		t := domain.ShareType(raw)
		if !t.Valid() {
			writeError(w, h.log, domain.NewValidationError("share_type", "must be public or password_protected"))
			return
		}
		filter.ShareType = &t
	}

	list, err := h.shareService.GetUserShares(r.Context(), userID, filter)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	share, err := h.shareService.GetOwnedShare(r.Context(), userID, chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(share))
}

func (h *ShareHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req service.UpdateShareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	share, err := h.shareService.UpdateShare(r.Context(), userID, chi.URLParam(r, "uuid"), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(share))
}

// DeleteShare deactivates: the record and its access events persist.
func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.shareService.DeactivateShare(r.Context(), userID, chi.URLParam(r, "uuid")); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShareHandler) GetShareAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	analytics, err := h.shareService.GetShareAnalytics(r.Context(), userID, chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}
