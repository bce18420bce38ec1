// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/frima-market/frima-gateway/internal/config"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/utils"
)

var (
	ErrInvalidIDToken      = errors.New("invalid identity token")
	ErrIdentityUnavailable = errors.New("identity provider not configured")
)

// TokenVerifier checks identity-provider ID tokens. *fbauth.Client
// satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type AuthService struct {
	verifier TokenVerifier
	profiles *ProfileService
	cfg      config.JWTConfig
}

type SessionRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // in seconds
	UID         string          `json:"uid"`
	Email       string          `json:"email,omitempty"`
	Registered  bool            `json:"registered"`
	Profile     *models.Profile `json:"profile,omitempty"`
}

func NewAuthService(verifier TokenVerifier, profiles *ProfileService, cfg config.JWTConfig) *AuthService {
	return &AuthService{
		verifier: verifier,
		profiles: profiles,
		cfg:      cfg,
	}
}

// CreateSession exchanges an identity-provider ID token for a gateway JWT.
// Registered is false until the user has a profile with a nickname.
func (s *AuthService) CreateSession(ctx context.Context, req *SessionRequest) (*AuthResponse, error) {
	if s.verifier == nil {
		return nil, ErrIdentityUnavailable
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	token, err := s.verifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	email, _ := token.Claims["email"].(string)

	accessToken, err := utils.GenerateJWT(token.UID, email, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	resp := &AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.AccessTokenTTL * 3600,
		UID:         token.UID,
		Email:       email,
	}
	if err := s.fillProfile(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Me describes the signed-in user without issuing a new token.
func (s *AuthService) Me(ctx context.Context, uid, email string) (*AuthResponse, error) {
	resp := &AuthResponse{UID: uid, Email: email}
	if err := s.fillProfile(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *AuthService) fillProfile(ctx context.Context, resp *AuthResponse) error {
	profile, err := s.profiles.Get(ctx, resp.UID)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to load profile: %w", err)
	}
	resp.Profile = profile
	resp.Registered = profile.IsComplete()
	return nil
}
