package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecircle/internal/domain"
)

func TestIssueParse(t *testing.T) {
	j := New("s3cret", "servicecircle", time.Hour)
	tok, err := j.Issue(domain.Principal{ID: 42, Role: domain.RoleProvider})
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{ID: 42, Role: domain.RoleProvider}, c.Principal())
	assert.Equal(t, "42", c.Subject)
	assert.Equal(t, "servicecircle", c.Issuer)
}

func TestIssue_AdminAllowed(t *testing.T) {
	j := New("s3cret", "servicecircle", time.Hour)
	tok, err := j.Issue(domain.Principal{Role: domain.RoleAdmin})
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, c.Role)
	assert.Zero(t, c.UID)
}

func TestIssue_UnknownRole(t *testing.T) {
	_, err := New("s3cret", "servicecircle", time.Hour).Issue(domain.Principal{ID: 1, Role: "root"})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestParse_Rejects(t *testing.T) {
	j := New("s3cret", "servicecircle", time.Hour)
	recv := domain.Principal{ID: 1, Role: domain.RoleReceiver}

	other, err := New("different", "servicecircle", time.Hour).Issue(recv)
	require.NoError(t, err)
	_, err = j.Parse(other)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	foreign, err := New("s3cret", "someone-else", time.Hour).Issue(recv)
	require.NoError(t, err)
	_, err = j.Parse(foreign)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	// 超出 1 分钟 leeway
	expired, err := j.IssueWithTTL(recv, -2*time.Minute)
	require.NoError(t, err)
	_, err = j.Parse(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = j.Parse("not-a-token")
	assert.Error(t, err)
}

func hs(t *testing.T, m jwt.SigningMethod, role domain.Role, secret []byte) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(m, Claims{UID: 1, Role: role, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "servicecircle",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func TestParse_RejectsOtherAlg(t *testing.T) {
	j := New("s3cret", "servicecircle", time.Hour)
	_, err := j.Parse(hs(t, jwt.SigningMethodHS512, domain.RoleAdmin, j.Secret))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParse_RejectsForgedRole(t *testing.T) {
	j := New("s3cret", "servicecircle", time.Hour)
	_, err := j.Parse(hs(t, jwt.SigningMethodHS256, "superuser", j.Secret))
	assert.ErrorIs(t, err, ErrUnknownRole)
}
