package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"go.uber.org/zap"
)

// TokenVerifier is the part of the Firebase auth client we use.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthenticator verifies Firebase ID tokens and maps the Firebase
// account onto a local user, creating it on first sight.
type FirebaseAuthenticator struct {
	verifier TokenVerifier
	users    repositories.UserRepository
	log      *zap.Logger
}

func NewFirebaseAuthenticator(verifier TokenVerifier, users repositories.UserRepository, log *zap.Logger) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{verifier: verifier, users: users, log: log.Named("auth.firebase")}
}

func (a *FirebaseAuthenticator) Authenticate(ctx context.Context, idToken string) (*Principal, error) {
	token, err := a.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		a.log.Debug("rejected firebase token", zap.Error(err))
		return nil, errInvalidToken
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if email == "" {
		return nil, apperrors.Unauthorized("Token carries no email")
	}

	user, err := a.users.UpsertFirebaseUser(ctx, token.UID, email, name)
	if err != nil {
		return nil, apperrors.ErrStorage(err)
	}
	return &Principal{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}
