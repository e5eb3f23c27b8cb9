package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"member", RoleMember, false},
		{"administrator", RoleAdministrator, false},
		{"ta", RoleMember, false},
		{"admin", RoleAdministrator, false},
		{"Administrator", RoleAdministrator, false},
		{"  member  ", RoleMember, false},
		{"root", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_UnmarshalJSON_RejectsUnknown(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"email":"a@b.c","role":"superuser"}`), &u)
	assert.Error(t, err)
}

func TestUser_Public_OmitsHash(t *testing.T) {
	u := User{
		Email:        "ta@example.edu",
		Name:         "Terry",
		Role:         RoleMember,
		PasswordHash: "$2a$12$whatever",
	}

	body, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "$2a$12")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ta@example.edu", NormalizeEmail("  TA@Example.EDU "))
}
