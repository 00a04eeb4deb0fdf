// Package auth creates and verifies the signed, time-bounded access and
// refresh tokens. Verification is pure: no database lookup, no revocation
// check. Already-issued tokens therefore stay valid until natural expiry.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/authgate/internal/common"
)

// RoleUser is the only role minted today; the claim exists so authorization
// can grow without a token-format change.
const RoleUser = "user"

// Claims is the token payload: registered claims (sub, iat, exp) plus a role
// on access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Issuer signs access and refresh tokens with two distinct HS256 secrets, so
// compromise of one secret does not let an attacker forge the other kind.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccessToken mints a short-lived access token for userID.
func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
		Role: RoleUser,
	})

	return token.SignedString(i.accessSecret)
}

// IssueRefreshToken mints a long-lived refresh token for userID.
func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	})

	return token.SignedString(i.refreshSecret)
}

// VerifyAccessToken validates tokenString against the access secret.
func (i *Issuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	return verify(tokenString, i.accessSecret)
}

// VerifyRefreshToken validates tokenString against the refresh secret.
func (i *Issuer) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return verify(tokenString, i.refreshSecret)
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
