package auth

import (
	"testing"
	"time"

	"github.com/netlens/netlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLifecycle(t *testing.T) {
	tm := NewTokenManager(time.Hour)

	session, err := tm.Issue("alice")
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)

	username, err := tm.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	tm.Revoke(session.Token)
	_, err = tm.Validate(session.Token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager(time.Millisecond)
	session, err := tm.Issue("alice")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = tm.Validate(session.Token)
	assert.Error(t, err)

	tm.CleanupExpired()
	_, err = tm.Validate(session.Token)
	assert.Error(t, err)
}

func TestRevokeUser(t *testing.T) {
	tm := NewTokenManager(time.Hour)
	s1, err := tm.Issue("alice")
	require.NoError(t, err)
	s2, err := tm.Issue("alice")
	require.NoError(t, err)
	s3, err := tm.Issue("bob")
	require.NoError(t, err)

	tm.RevokeUser("alice")
	_, err = tm.Validate(s1.Token)
	assert.Error(t, err)
	_, err = tm.Validate(s2.Token)
	assert.Error(t, err)
	_, err = tm.Validate(s3.Token)
	assert.NoError(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role   types.Role
		read   bool
		upload bool
		manage bool
	}{
		{types.RoleAdmin, true, true, true},
		{types.RoleManager, true, true, true},
		{types.RoleEngineer, true, true, false},
		{types.RoleViewer, true, false, false},
		{types.Role("stranger"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.read, CanRead(tt.role))
			assert.Equal(t, tt.upload, CanUpload(tt.role))
			assert.Equal(t, tt.manage, CanManage(tt.role))
		})
	}

	assert.True(t, ValidRole(types.RoleViewer))
	assert.False(t, ValidRole("stranger"))
}
