package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gradeboard-dev/gradeboard/internal/domain"
	internal_errors "github.com/gradeboard-dev/gradeboard/internal/errors"
	"github.com/gradeboard-dev/gradeboard/internal/logger"
	"github.com/gradeboard-dev/gradeboard/internal/password"
	"github.com/gradeboard-dev/gradeboard/internal/token"
)

// ErrInvalidCredentials is returned for an unknown identity and for a wrong
// password alike, so login responses never reveal which identities exist.
var ErrInvalidCredentials = &internal_errors.ErrorWithStatusCode{
	Message:    "Invalid email or password",
	StatusCode: http.StatusUnauthorized,
}

type Auth struct {
	directory *Directory
	codec     *token.Codec
}

func NewAuth(directory *Directory, codec *token.Codec) *Auth {
	return &Auth{directory: directory, codec: codec}
}

// Login turns a credential pair into a session token plus the safe public
// view of the record. The token carries the record's role as of now;
// promotions and demotions take effect at the next login, not before.
func (a *Auth) Login(ctx context.Context, email, plaintext string) (string, domain.PublicUser, error) {
	email = domain.NormalizeEmail(email)

	user, ok, err := a.directory.Find(ctx, email)
	if err != nil {
		logger.Log.Error("directory load failed during login", "error", err)
		return "", domain.PublicUser{}, err
	}
	if !ok {
		return "", domain.PublicUser{}, ErrInvalidCredentials
	}

	if err := password.Verify(plaintext, user.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMalformedHash) {
			// Data problem, not a wrong password. Logged distinctly but the
			// caller sees the same generic failure.
			logger.Log.Error("stored password hash unusable", "email", email, "error", err)
		}
		return "", domain.PublicUser{}, ErrInvalidCredentials
	}

	tokenString, err := a.codec.Issue(user.Public())
	if err != nil {
		logger.Log.Error("failed to issue session token", "email", email, "error", err)
		return "", domain.PublicUser{}, err
	}

	logger.Log.Info("user logged in", "event_id", uuid.NewString(), "email", email, "role", user.Role)
	return tokenString, user.Public(), nil
}

// Logout is stateless: tokens are self-contained, so there is nothing to
// invalidate server-side. The call exists for the audit trail; the client
// discards its token.
func (a *Auth) Logout(ctx context.Context, p domain.Principal) {
	logger.Log.Info("user logged out", "event_id", uuid.NewString(), "email", p.Email)
}
