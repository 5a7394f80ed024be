package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService coordinates login and logout.
type AuthService struct {
	store    repository.Store
	tokenMgr *auth.TokenManager
	revoked  auth.RevocationList
	audit    *AuditService
	logger   *zap.Logger
}

// AuthDependencies encapsulates collaborators for auth service.
type AuthDependencies struct {
	Store       repository.Store
	Tokens      *auth.TokenManager
	Revocations auth.RevocationList
	Audit       *AuditService
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:    deps.Store,
		tokenMgr: deps.Tokens,
		revoked:  deps.Revocations,
		audit:    deps.Audit,
		logger:   logger,
	}
}

// Login authenticates a user and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.recordLogin(ctx, user.ID, false)
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.recordLogin(ctx, user.ID, true)
	return session, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// TokenManager exposes the JWT manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) recordLogin(ctx context.Context, userID int64, success bool) {
	outcome := "failed"
	if success {
		outcome = "successful"
	}
	s.audit.Record(ctx, AuditEntry{
		EventType:  domain.AuditEventLogin,
		UserID:     userID,
		EntityType: domain.EntityUser,
		EntityID:   &userID,
		Details:    "Login attempt " + outcome,
	})
}
