package main

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_Accepts_User_And_Admin(t *testing.T) {
	v := newJWTVerifier(testSecret)
	for _, role := range []string{roleUser, roleAdmin} {
		id, err := v.verify(issueToken(t, testSecret, "42", role, time.Minute))
		require.NoError(t, err)
		require.Equal(t, identity{Subject: "42", Role: role}, id)
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := newJWTVerifier(testSecret)
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &claims{Role: roleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"missing":      "",
		"garbage":      "not-a-token",
		"wrong secret": issueToken(t, "other-secret", "42", roleUser, time.Minute),
		"expired":      issueToken(t, testSecret, "42", roleUser, -time.Minute),
		"wrong role":   issueToken(t, testSecret, "42", "GUEST", time.Minute),
		"no role":      issueToken(t, testSecret, "42", "", time.Minute),
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.verify(token)
			require.ErrorIs(t, err, ErrAuthRejected)
		})
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	require.Equal(t, "", bearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	require.Equal(t, "", bearerToken(r))

	r.Header.Set("Authorization", "Bearer abc")
	require.Equal(t, "abc", bearerToken(r))
}
