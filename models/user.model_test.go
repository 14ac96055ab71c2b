package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"player", "coach", "admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, role.String())
	}

	for _, invalid := range []string{"", "Player", "superadmin", "PLAYER "} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q should be rejected", invalid)
	}
}

func TestAutoApproved(t *testing.T) {
	assert.True(t, RolePlayer.AutoApproved())
	assert.False(t, RoleCoach.AutoApproved())
	assert.False(t, RoleAdmin.AutoApproved())
}
