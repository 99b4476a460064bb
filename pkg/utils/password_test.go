package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	h, err := HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", h)
	assert.True(t, CheckPassword("pw123456", h))
	assert.False(t, CheckPassword("pw1234567", h))
	assert.False(t, CheckPassword("pw123456", "not-a-hash"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "meera@example.com", NormalizeEmail("  Meera@Example.COM "))
}
