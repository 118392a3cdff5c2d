package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newCodec() *Codec {
	return &Codec{
		Secret:     []byte("test-secret"),
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := newCodec()

	for _, ttl := range []time.Duration{time.Second, time.Minute, 24 * time.Hour} {
		token, exp, err := c.Issue("alice", ttl)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.WithinDuration(t, time.Now().Add(ttl), exp, 2*time.Second)

		subject, err := c.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "alice", subject)
	}
}

func TestAccessAndRefreshPresets(t *testing.T) {
	c := newCodec()

	access, accessExp, err := c.IssueAccess("bob")
	require.NoError(t, err)
	refresh, refreshExp, err := c.IssueRefresh("bob")
	require.NoError(t, err)

	require.True(t, refreshExp.After(accessExp))

	for _, token := range []string{access, refresh} {
		subject, err := c.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "bob", subject)
	}
}

func TestVerifyExpired(t *testing.T) {
	c := newCodec()

	token, _, err := c.Issue("alice", -time.Minute)
	require.NoError(t, err)

	_, err = c.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	c := newCodec()
	other := &Codec{Secret: []byte("other-secret")}

	token, _, err := c.Issue("alice", time.Minute)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	c := newCodec()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := c.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	c := newCodec()

	token, _, err := c.Issue("", time.Minute)
	require.NoError(t, err)

	_, err = c.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	c := newCodec()

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
