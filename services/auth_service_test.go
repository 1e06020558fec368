package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Amo12312/accordai/repository"
)

func newTestAuthService() (AuthService, JWTService, repository.UserRepository) {
	repo := repository.NewMemoryUserRepository()
	jwtService := NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, jwtService), jwtService, repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Run("register issues a valid token", func(t *testing.T) {
		auth, jwtService, _ := newTestAuthService()

		user, token, err := auth.Register("alice@example.com", "password123", "Alice")
		assert.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.IsPremium)

		claims, err := jwtService.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
	})

	t.Run("register normalizes the email", func(t *testing.T) {
		auth, _, repo := newTestAuthService()

		_, _, err := auth.Register("  Bob@Example.COM ", "password123", "Bob")
		assert.NoError(t, err)

		stored, err := repo.FindByEmail("bob@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "Bob", stored.DisplayName)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		auth, _, _ := newTestAuthService()

		_, _, err := auth.Register("carol@example.com", "password123", "Carol")
		assert.NoError(t, err)
		_, _, err = auth.Register("carol@example.com", "different456", "Carol Again")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("login succeeds with the right password", func(t *testing.T) {
		auth, _, _ := newTestAuthService()

		registered, _, err := auth.Register("dave@example.com", "hunter22", "Dave")
		assert.NoError(t, err)

		user, token, err := auth.Login("dave@example.com", "hunter22")
		assert.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password and unknown email both return invalid credentials", func(t *testing.T) {
		auth, _, _ := newTestAuthService()

		_, _, err := auth.Register("erin@example.com", "correct-pw", "Erin")
		assert.NoError(t, err)

		_, _, err = auth.Login("erin@example.com", "wrong-pw")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = auth.Login("nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	t.Run("first sign-in creates the account", func(t *testing.T) {
		auth, _, _ := newTestAuthService()

		user, token, err := auth.GoogleSignIn("google-123", "frank@example.com", "Frank")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "google-123", user.GoogleID)

		again, _, err := auth.GoogleSignIn("google-123", "frank@example.com", "Frank")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)
	})

	t.Run("sign-in links an existing email account", func(t *testing.T) {
		auth, _, repo := newTestAuthService()

		registered, _, err := auth.Register("grace@example.com", "password123", "Grace")
		assert.NoError(t, err)

		linked, _, err := auth.GoogleSignIn("google-456", "grace@example.com", "Grace G")
		assert.NoError(t, err)
		assert.Equal(t, registered.ID, linked.ID)

		stored, err := repo.FindByGoogleID("google-456")
		assert.NoError(t, err)
		assert.Equal(t, registered.ID, stored.ID)
	})

	t.Run("missing google ID is rejected", func(t *testing.T) {
		auth, _, _ := newTestAuthService()

		_, _, err := auth.GoogleSignIn("", "x@example.com", "X")
		assert.Error(t, err)
	})
}

func TestJWTService_ValidateToken(t *testing.T) {
	t.Run("garbage tokens are rejected", func(t *testing.T) {
		jwtService := NewJWTService("test-secret", time.Hour)
		_, err := jwtService.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("tokens signed with a different secret are rejected", func(t *testing.T) {
		auth, _, _ := newTestAuthService()
		_, token, err := auth.Register("ivan@example.com", "password123", "Ivan")
		assert.NoError(t, err)

		other := NewJWTService("other-secret", time.Hour)
		_, err = other.ValidateToken(token)
		assert.Error(t, err)
	})
}
