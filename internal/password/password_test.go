package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "correct horse")

	assert.NoError(t, Verify("correct horse battery staple", hash))
}

func TestVerify_WrongPassword(t *testing.T) {
	hash, err := Hash("right-password")
	require.NoError(t, err)

	err = Verify("wrong-password", hash)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestVerify_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "hunter2"},
		{"truncated bcrypt", "$2a$12$tooshort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify("anything", tt.hash)
			assert.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := Hash("same-password")
	require.NoError(t, err)
	second, err := Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
