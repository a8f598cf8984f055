package middleware

import (
	"context"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// JWTAuthenticator accepts HS256 tokens signed with a shared secret. It is
// the provider for local development and service-to-service calls.
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, tokenString string) (*Principal, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, errInvalidToken
	}
	return &Principal{ID: claims.UserID, Name: claims.Name, Email: claims.Email}, nil
}

// IssueToken signs a token for user valid for ttl.
func (a *JWTAuthenticator) IssueToken(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.JwtCustomClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
