// Package services contains server-side business logic. This file implements
// AuthService, which handles signup, login, and refreshing access tokens.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/cryptox"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/users"
)

// LoginResult bundles the public user projection with the freshly minted
// token pair. The refresh token travels to the client only inside an
// httpOnly cookie; the handler layer owns that.
type LoginResult struct {
	User         *models.PublicUser
	AccessToken  string
	RefreshToken string
}

// AuthService provides authentication-related operations:
// - Signup: create users
// - Login: verify credentials and mint tokens
// - Refresh: mint a new access token from a valid refresh token
type AuthService struct {
	users  users.Repository
	issuer *auth.Issuer
	logger logging.Logger

	// dummyHash is verified against when a login names an unknown email, so
	// the request always pays one full argon2 verification regardless of
	// whether the account exists.
	dummyHash string
}

// NewAuthService constructs an AuthService. The dummy hash is generated once
// per process from a random throwaway password.
func NewAuthService(repo users.Repository, issuer *auth.Issuer, logger logging.Logger) (*AuthService, error) {
	pw, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy password generation error: %w", err)
	}
	dummy, err := cryptox.HashPassword(pw)
	if err != nil {
		return nil, fmt.Errorf("dummy hash error: %w", err)
	}

	return &AuthService{
		users:     repo,
		issuer:    issuer,
		logger:    logger.With("module", "auth_service"),
		dummyHash: dummy,
	}, nil
}

// Signup creates a new account and returns its public projection.
//
// The existence pre-check only avoids hashing for an obviously doomed
// request; the users table's unique index remains the final arbiter, so a
// concurrent duplicate that slips past the pre-check still surfaces as
// common.ErrorConflict from Create.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*models.PublicUser, error) {
	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "signup pre-check failed", "error", err)
		return nil, common.ErrorInternal
	}
	if existing != nil {
		if existing.Email == email {
			return nil, common.ErrorEmailTaken
		}
		return nil, common.ErrorUsernameTaken
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		s.logger.Error(ctx, "user insert failed", "error", err)
		return nil, common.ErrorInternal
	}

	return user.Public(), nil
}

// Login verifies the credentials and, on success, returns the public user
// together with a new access/refresh token pair.
//
// Whether or not the email is known, exactly one password verification of
// equivalent cost runs, and every failure path collapses into the same
// common.ErrorUnauthorized so callers cannot distinguish "unknown email"
// from "wrong password".
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, password)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "password verification failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	accessToken, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		s.logger.Error(ctx, "access token issue failed", "error", err)
		return nil, common.ErrorInternal
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		s.logger.Error(ctx, "refresh token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &LoginResult{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh verifies the presented refresh token and mints a new access token
// for the same subject. The refresh token itself is not rotated; until its
// natural expiry the client keeps presenting the one issued at login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	accessToken, err := s.issuer.IssueAccessToken(claims.Subject)
	if err != nil {
		s.logger.Error(ctx, "access token issue failed", "error", err)
		return "", common.ErrorInternal
	}

	return accessToken, nil
}
