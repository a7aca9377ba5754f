package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"brandforge/internal/domain"
	"brandforge/internal/ratelimit"
	"brandforge/internal/secure"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 2000
	minPasswordLen    = 6
)

// ErrPasswordRequired signals that a password-protected share was accessed
// without a password and without a prior session flag. The HTTP layer maps
// it to 423.
var ErrPasswordRequired = errors.New("password required")

// ShareRepo is the persistence surface the share manager needs.
type ShareRepo interface {
	Create(ctx context.Context, share *domain.Share) error
	GetActiveByUUID(ctx context.Context, uuid string) (*domain.Share, error)
	GetOwned(ctx context.Context, uuid, ownerID string) (*domain.Share, error)
	Update(ctx context.Context, share *domain.Share) error
	Deactivate(ctx context.Context, id int64) error
	RecordAccess(ctx context.Context, access *domain.ShareAccess) error
	ListByOwner(ctx context.Context, ownerID string, filter domain.ShareFilter) (*domain.ShareList, error)
	Analytics(ctx context.Context, shareID int64, now time.Time) (*domain.ShareAnalytics, error)
}

type ShareService struct {
	shareRepo ShareRepo
	resolver  *TargetResolver
	limiter   ratelimit.Limiter
	maxExpiry time.Duration
	baseURL   string
	log       zerolog.Logger

	now func() time.Time
}

func NewShareService(
	shareRepo ShareRepo,
	resolver *TargetResolver,
	limiter ratelimit.Limiter,
	maxExpiry time.Duration,
	baseURL string,
	log zerolog.Logger,
) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		resolver:  resolver,
		limiter:   limiter,
		maxExpiry: maxExpiry,
		baseURL:   baseURL,
		log:       log.With().Str("component", "share_service").Logger(),
		now:       time.Now,
	}
}

type CreateShareRequest struct {
	TargetType  string               `json:"shareable_type"`
	TargetID    string               `json:"shareable_id"`
	ShareType   domain.ShareType     `json:"share_type"`
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Password    *string              `json:"password,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
	Settings    domain.ShareSettings `json:"settings"`
}

// CreateShare validates the request, applies the per-owner rate gate, and
// persists a new share with a freshly generated opaque id.
func (s *ShareService) CreateShare(ctx context.Context, ownerID string, req CreateShareRequest) (*domain.Share, error) {
	ok, retryAfter, err := s.limiter.Allow(ctx, "share_create:"+ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !ok {
		return nil, &domain.RateLimitedError{RetryAfter: retryAfter}
	}

	verr := &domain.ValidationError{}
	now := s.now()

	if !req.ShareType.Valid() {
		verr.Add("share_type", "must be public or password_protected")
	}

	if !s.resolver.Known(req.TargetType) {
		verr.Add("shareable_type", "unknown shareable type")
	} else {
		target, err := s.resolver.Resolve(ctx, req.TargetType, req.TargetID)
		var notFound *domain.NotFoundError
		switch {
		case errors.As(err, &notFound):
			verr.Add("shareable_id", "target not found")
		case err != nil:
			return nil, fmt.Errorf("failed to resolve share target: %w", err)
		case target.TargetOwner() != ownerID:
			// Same response as a missing target so ownership cannot be probed.
			verr.Add("shareable_id", "target not found")
		}
	}

	if req.ShareType == domain.ShareTypePasswordProtected {
		if req.Password == nil || *req.Password == "" {
			verr.Add("password", "password is required for password protected shares")
		} else if len(*req.Password) < minPasswordLen {
			verr.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		}
	}

	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(now) {
			verr.Add("expires_at", "must be in the future")
		} else if req.ExpiresAt.After(now.Add(s.maxExpiry)) {
			verr.Add("expires_at", "must be within one year")
		}
	}

	if req.Title != nil && len(*req.Title) > maxTitleLen {
		verr.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		verr.Add("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	}

	if !verr.Empty() {
		return nil, verr
	}

	share := &domain.Share{
		UUID:        secure.NewOpaqueID(),
		OwnerID:     ownerID,
		TargetType:  req.TargetType,
		TargetID:    req.TargetID,
		ShareType:   req.ShareType,
		Title:       sanitizeOptional(req.Title),
		Description: sanitizeOptional(req.Description),
		Settings:    req.Settings,
		IsActive:    true,
		ExpiresAt:   req.ExpiresAt,
	}

	if req.ShareType == domain.ShareTypePasswordProtected {
		hash, err := secure.HashSecret(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash share password: %w", err)
		}
		share.PasswordHash = &hash
	}

	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.log.Info().Str("share", share.UUID).Str("owner", ownerID).Msg("share created")
	return share, nil
}

type UpdateShareRequest struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Settings    *domain.ShareSettings `json:"settings,omitempty"`
}

// UpdateShare merges the provided fields into the share. Share type, target
// and password never change through this path.
func (s *ShareService) UpdateShare(ctx context.Context, ownerID, uuid string, req UpdateShareRequest) (*domain.Share, error) {
	share, err := s.shareRepo.GetOwned(ctx, uuid, ownerID)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if req.Title != nil && len(*req.Title) > maxTitleLen {
		verr.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		verr.Add("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	}
	if !verr.Empty() {
		return nil, verr
	}

	if req.Title != nil {
		share.Title = sanitizeOptional(req.Title)
	}
	if req.Description != nil {
		share.Description = sanitizeOptional(req.Description)
	}
	if req.Settings != nil {
		share.Settings = share.Settings.Merge(*req.Settings)
	}

	if err := s.shareRepo.Update(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to update share: %w", err)
	}
	return share, nil
}

// DeactivateShare soft-deletes the share. Access events are retained.
func (s *ShareService) DeactivateShare(ctx context.Context, ownerID, uuid string) error {
	share, err := s.shareRepo.GetOwned(ctx, uuid, ownerID)
	if err != nil {
		return err
	}
	if err := s.shareRepo.Deactivate(ctx, share.ID); err != nil {
		return fmt.Errorf("failed to deactivate share: %w", err)
	}
	s.log.Info().Str("share", uuid).Msg("share deactivated")
	return nil
}

// GetOwnedShare returns the share to its owner, active or not.
func (s *ShareService) GetOwnedShare(ctx context.Context, ownerID, uuid string) (*domain.Share, error) {
	return s.shareRepo.GetOwned(ctx, uuid, ownerID)
}

// ValidateShareAccess checks whether the caller may view the share. The
// caller passes sessionAuthenticated when a prior password check for this
// share is present in its session; the session itself is owned by the HTTP
// layer. A successful return is not yet a counted view.
func (s *ShareService) ValidateShareAccess(ctx context.Context, uuid, suppliedPassword string, sessionAuthenticated bool) (*domain.Share, error) {
	share, err := s.shareRepo.GetActiveByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	if share.Expired(s.now()) {
		return nil, &domain.GoneError{Resource: "share"}
	}

	if share.ShareType == domain.ShareTypePasswordProtected && !sessionAuthenticated {
		if suppliedPassword == "" {
			return nil, ErrPasswordRequired
		}
		if share.PasswordHash == nil || !secure.VerifySecret(suppliedPassword, *share.PasswordHash) {
			return nil, &domain.InvalidPasswordError{}
		}
	}

	return share, nil
}

// AccessInfo is the request context recorded with a view.
type AccessInfo struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// RecordShareAccess appends one access event and bumps the view counter.
// Each call counts exactly once; concurrent calls for the same share are
// safe.
func (s *ShareService) RecordShareAccess(ctx context.Context, share *domain.Share, info AccessInfo) error {
	access := &domain.ShareAccess{
		ShareID:   share.ID,
		IPAddress: optional(info.IPAddress),
		UserAgent: optional(info.UserAgent),
		Referrer:  optional(info.Referrer),
	}
	if err := s.shareRepo.RecordAccess(ctx, access); err != nil {
		return fmt.Errorf("failed to record share access: %w", err)
	}
	return nil
}

func (s *ShareService) GetShareAnalytics(ctx context.Context, ownerID, uuid string) (*domain.ShareAnalytics, error) {
	share, err := s.shareRepo.GetOwned(ctx, uuid, ownerID)
	if err != nil {
		return nil, err
	}
	analytics, err := s.shareRepo.Analytics(ctx, share.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute share analytics: %w", err)
	}
	return analytics, nil
}

// SocialMetadata derives the Open Graph / Twitter card key-value pairs for
// the share page. Pure function of the share's own fields.
func (s *ShareService) SocialMetadata(share *domain.Share) map[string]string {
	title := "Shared brand"
	if share.Title != nil && *share.Title != "" {
		title = *share.Title
	}
	description := ""
	if share.Description != nil {
		description = *share.Description
	}

	return map[string]string{
		"og:title":       title,
		"og:description": description,
		"og:url":         s.baseURL + "/share/" + share.UUID,
		"og:type":        "website",
		"twitter:card":   "summary",
		"twitter:title":  title,
	}
}

func (s *ShareService) GetUserShares(ctx context.Context, ownerID string, filter domain.ShareFilter) (*domain.ShareList, error) {
	list, err := s.shareRepo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return list, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
