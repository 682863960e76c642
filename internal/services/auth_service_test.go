package services

import (
	"testing"

	"folio/internal/testutil"
)

func TestAuthenticate(t *testing.T) {
	hash := testutil.EditorPasswordHash(t)

	t.Run("correct_password", func(t *testing.T) {
		svc := NewAuthService(StaticPermission(true), hash)
		testutil.AssertNoError(t, svc.Authenticate(testutil.TestEditorPassword))
	})

	t.Run("wrong_password", func(t *testing.T) {
		svc := NewAuthService(StaticPermission(true), hash)
		testutil.AssertAppError(t, svc.Authenticate("wrong"), "INVALID_CREDENTIALS")
	})

	t.Run("editing_disabled", func(t *testing.T) {
		svc := NewAuthService(StaticPermission(false), hash)
		testutil.AssertAppError(t, svc.Authenticate(testutil.TestEditorPassword), "EDIT_FORBIDDEN")
	})

	t.Run("no_password_configured", func(t *testing.T) {
		svc := NewAuthService(StaticPermission(true), "")
		testutil.AssertAppError(t, svc.Authenticate(""), "EDIT_FORBIDDEN")
	})
}
