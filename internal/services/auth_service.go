package services

import (
	"golang.org/x/crypto/bcrypt"

	apperrors "folio/internal/errors"
	"folio/internal/logger"
)

// authService checks the editor password.
type authService struct {
	perm         EditPermission
	passwordHash string
}

// NewAuthService creates a new AuthServicer. passwordHash is a bcrypt hash;
// when it is empty nobody can log in.
func NewAuthService(perm EditPermission, passwordHash string) AuthServicer {
	return &authService{perm: perm, passwordHash: passwordHash}
}

// Authenticate verifies the editor password.
func (s *authService) Authenticate(password string) error {
	if !s.perm.CanEdit() || s.passwordHash == "" {
		return apperrors.ErrEditForbidden
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		logger.Get().Warnw("editor login failed")
		return apperrors.ErrInvalidCredentials
	}
	return nil
}
