package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"brandforge/internal/domain"
	"brandforge/internal/service"
	"brandforge/internal/sessionstore"
)

// PublicHandler serves the unauthenticated share surface.
type PublicHandler struct {
	shareService *service.ShareService
	resolver     *service.TargetResolver
	sessions     sessionstore.Store
	log          zerolog.Logger
}

func NewPublicHandler(
	shareService *service.ShareService,
	resolver *service.TargetResolver,
	sessions sessionstore.Store,
	log zerolog.Logger,
) *PublicHandler {
	return &PublicHandler{
		shareService: shareService,
		resolver:     resolver,
		sessions:     sessions,
		log:          log.With().Str("component", "public_handler").Logger(),
	}
}

type publicShareView struct {
	UUID        string                 `json:"uuid"`
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	ViewCount   int64                  `json:"view_count"`
	Brand       publicBrandView        `json:"brand"`
	Social      map[string]string      `json:"social_metadata"`
}

type publicBrandView struct {
	BusinessName string               `json:"business_name"`
	Industry     *string              `json:"industry,omitempty"`
	Logos        []domain.Logo        `json:"logos,omitempty"`
	Domains      []domain.DomainCheck `json:"domains,omitempty"`
}

// ShowShare returns the accessible share. 404 covers missing and inactive,
// 410 expired, 423 password-gated without a session flag.
func (h *PublicHandler) ShowShare(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	share, err := h.shareService.ValidateShareAccess(
		r.Context(), uuid, "", h.sessions.Authenticated(r, uuid))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	view := publicShareView{
		UUID:      share.UUID,
		ViewCount: share.ViewCount + 1, // includes the view being recorded
		Social:    h.shareService.SocialMetadata(share),
	}
	if share.Settings.TitleShown() {
		view.Title = share.Title
	}
	if share.Settings.DescriptionShown() {
		view.Description = share.Description
	}

	target, err := h.resolver.Resolve(r.Context(), share.TargetType, share.TargetID)
	if err != nil {
		// The shared entity was deleted from under the share.
		writeError(w, h.log, &domain.NotFoundError{Resource: "share"})
		return
	}
	view.Brand.BusinessName = target.TargetName()
	if project, ok := target.(*domain.Project); ok {
		view.Brand.Industry = project.Industry
		if share.Settings.LogosShown() {
			view.Brand.Logos = project.Logos
		}
		if share.Settings.DomainStatusShown() {
			view.Brand.Domains = project.Domains
		}
	}

	info := service.AccessInfo{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	if err := h.shareService.RecordShareAccess(r.Context(), share, info); err != nil {
		h.log.Error().Err(err).Str("share", uuid).Msg("failed to record share access")
	}

	writeJSON(w, http.StatusOK, view)
}

type authenticateRequest struct {
	Password string `json:"password"`
}

// AuthenticateShare verifies the supplied password and stores the per-share
// session flag so subsequent views skip the prompt.
func (h *PublicHandler) AuthenticateShare(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	var req authenticateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if req.Password == "" {
		writeError(w, h.log, domain.NewValidationError("password", "password is required"))
		return
	}

	if _, err := h.shareService.ValidateShareAccess(r.Context(), uuid, req.Password, false); err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.sessions.MarkAuthenticated(w, r, uuid); err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "authenticated",
		"redirect": "/share/" + uuid,
	})
}
