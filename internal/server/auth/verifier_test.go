package auth

import (
	"testing"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signMap(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func validMap() jwt.MapClaims {
	return jwt.MapClaims{
		"type":    "ACCESS",
		"ver":     ClaimsVersion,
		"user_id": "u1",
		"sub":     "u1",
		"exp":     t0.Add(time.Hour).Unix(),
	}
}

func TestParse_AcceptsHandCraftedValidToken(t *testing.T) {
	tok := signMap(t, jwt.SigningMethodHS256, testSecret, validMap())

	parsed, err := newTestVerifier(t, t0).Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, parsed.Type())
}

func TestParse_Rejects(t *testing.T) {
	without := func(key string) jwt.MapClaims {
		m := validMap()
		delete(m, key)
		return m
	}
	with := func(key string, v any) jwt.MapClaims {
		m := validMap()
		m[key] = v
		return m
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "wrong secret", token: signMap(t, jwt.SigningMethodHS256, []byte("other"), validMap())},
		{name: "other hmac algorithm", token: signMap(t, jwt.SigningMethodHS512, testSecret, validMap())},
		{name: "alg none", token: signMap(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validMap())},
		{name: "missing type", token: signMap(t, jwt.SigningMethodHS256, testSecret, without("type"))},
		{name: "unknown type", token: signMap(t, jwt.SigningMethodHS256, testSecret, with("type", "JwtTokenType.ACCESS"))},
		{name: "missing user_id", token: signMap(t, jwt.SigningMethodHS256, testSecret, without("user_id"))},
		{name: "sub mismatch", token: signMap(t, jwt.SigningMethodHS256, testSecret, with("sub", "u2"))},
		{name: "old claims version", token: signMap(t, jwt.SigningMethodHS256, testSecret, without("ver"))},
		{name: "access without exp", token: signMap(t, jwt.SigningMethodHS256, testSecret, without("exp"))},
		{name: "agent without host", token: signMap(t, jwt.SigningMethodHS256, testSecret, with("type", "AGENT"))},
	}

	v := newTestVerifier(t, t0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Parse(tt.token)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestParse_TamperRejection(t *testing.T) {
	i := newTestIssuer(t, t0)
	v := newTestVerifier(t, t0)

	for _, kind := range []TokenType{TokenTypeAccess, TokenTypeRefresh, TokenTypeAgent} {
		tok, err := i.Issue(kind, "u1", WithHostID(7))
		require.NoError(t, err)

		_, err = v.Parse(tok[:len(tok)-1])
		require.ErrorIs(t, err, common.ErrInvalidToken, "truncated tail of %s", kind)

		_, err = v.Parse(tok[1:])
		require.ErrorIs(t, err, common.ErrInvalidToken, "truncated head of %s", kind)
	}
}

func TestParse_ExpiredAgainstClock(t *testing.T) {
	tok, err := newTestIssuer(t, t0).Issue(TokenTypeAccess, "u1")
	require.NoError(t, err)

	_, err = newTestVerifier(t, t0.Add(19*time.Minute)).Parse(tok)
	require.NoError(t, err)

	_, err = newTestVerifier(t, t0.Add(21*time.Minute)).Parse(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParse_IssuedAt(t *testing.T) {
	tok, err := newTestIssuer(t, t0.Add(1500*time.Millisecond)).Issue(TokenTypeAccess, "u1")
	require.NoError(t, err)

	parsed, err := newTestVerifier(t, t0.Add(2*time.Second)).Parse(tok)
	require.NoError(t, err)
	iat, ok := parsed.IssuedAt()
	require.True(t, ok)
	assert.True(t, iat.Equal(t0.Add(time.Second)), "iat has second precision, got %s", iat)
}

func TestRequireType_Mismatch(t *testing.T) {
	i := newTestIssuer(t, t0)
	v := newTestVerifier(t, t0)

	tok, err := i.Issue(TokenTypeRefresh, "u1")
	require.NoError(t, err)
	parsed, err := v.Parse(tok)
	require.NoError(t, err)

	require.ErrorIs(t, parsed.RequireType(TokenTypeAccess), common.ErrWrongTokenType)
	require.ErrorIs(t, parsed.RequireType(TokenTypeAgent), common.ErrWrongTokenType)
	require.NoError(t, parsed.RequireType(TokenTypeRefresh))
}

func TestNewVerifier_RejectsNone(t *testing.T) {
	_, err := NewVerifier(VerifierConfig{Secret: testSecret, Algorithm: "none"})
	require.Error(t, err)
}
