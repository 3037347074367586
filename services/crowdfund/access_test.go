package crowdfund

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessController(t *testing.T) {
	a := NewAccessController(adminAddr)

	assert.True(t, a.IsAdmin(adminAddr))
	assert.False(t, a.IsAdmin(creatorAddr))
	assert.False(t, a.IsAdmin(""))
}

func TestAccessControllerEmptyAdminMatchesNobody(t *testing.T) {
	a := NewAccessController("")
	assert.False(t, a.IsAdmin(""))
}

func TestRecipientRegistry(t *testing.T) {
	r := NewRecipientRegistry(NewAccessController(adminAddr))

	assert.False(t, r.IsVerified(recipientAddr))

	require.NoError(t, r.Set(recipientAddr, true, adminAddr))
	assert.True(t, r.IsVerified(recipientAddr))

	// Idempotent overwrite.
	require.NoError(t, r.Set(recipientAddr, true, adminAddr))
	assert.True(t, r.IsVerified(recipientAddr))

	require.NoError(t, r.Set(recipientAddr, false, adminAddr))
	assert.False(t, r.IsVerified(recipientAddr))
}

func TestRecipientRegistryRejections(t *testing.T) {
	r := NewRecipientRegistry(NewAccessController(adminAddr))

	assert.ErrorIs(t, r.Set(recipientAddr, true, creatorAddr), ErrNotAuthorized)
	assert.ErrorIs(t, r.Set("", true, adminAddr), ErrInvalidRecipient)
}
