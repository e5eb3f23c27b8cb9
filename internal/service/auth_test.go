package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	"github.com/gradeboard-dev/gradeboard/internal/password"
	"github.com/gradeboard-dev/gradeboard/internal/storage"
	"github.com/gradeboard-dev/gradeboard/internal/storage/memory"
	"github.com/gradeboard-dev/gradeboard/internal/token"
)

func newAuthFixture(t *testing.T, users ...domain.User) (*Auth, *token.Codec) {
	t.Helper()

	store := memory.New()
	_, err := store.Save(context.Background(), domain.Directory{Users: users}, storage.NoVersion)
	require.NoError(t, err)

	codec := token.New("test-secret", time.Hour)
	return NewAuth(NewDirectory(store), codec), codec
}

func hashOf(t *testing.T, plaintext string) string {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)
	return hash
}

func TestLogin_Success(t *testing.T) {
	auth, codec := newAuthFixture(t, domain.User{
		Email:        "ta@example.edu",
		Name:         "Terry",
		Role:         domain.RoleMember,
		PasswordHash: hashOf(t, "s3cret"),
	})

	tokenString, user, err := auth.Login(context.Background(), "TA@Example.EDU", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ta@example.edu", user.Email)
	assert.Equal(t, domain.RoleMember, user.Role)

	p, err := codec.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "ta@example.edu", p.Email)
	assert.Equal(t, domain.RoleMember, p.Role)
}

// Unknown identity and wrong password must be indistinguishable to the
// caller, so login responses never reveal which identities exist.
func TestLogin_InvalidCredentials(t *testing.T) {
	auth, _ := newAuthFixture(t, domain.User{
		Email:        "ta@example.edu",
		Name:         "Terry",
		Role:         domain.RoleMember,
		PasswordHash: hashOf(t, "s3cret"),
	})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown identity", "nobody@example.edu", "s3cret"},
		{"wrong password", "ta@example.edu", "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := auth.Login(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLogin_MalformedStoredHash(t *testing.T) {
	auth, _ := newAuthFixture(t, domain.User{
		Email:        "broken@example.edu",
		Name:         "Broken",
		Role:         domain.RoleMember,
		PasswordHash: "not-a-bcrypt-hash",
	})

	_, _, err := auth.Login(context.Background(), "broken@example.edu", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
