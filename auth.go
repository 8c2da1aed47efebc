package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	roleUser  = "USER"
	roleAdmin = "ADMIN"
)

type identity struct {
	Subject string
	Role    string
}

// verifier turns a bearer token into an identity or an error wrapping
// ErrAuthRejected.
type verifier interface {
	verify(token string) (identity, error)
}

// claims matches the access tokens issued by the auth service.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type jwtVerifier struct {
	secret []byte
}

func newJWTVerifier(secret string) jwtVerifier {
	return jwtVerifier{secret: []byte(secret)}
}

func (v jwtVerifier) verify(token string) (identity, error) {
	if token == "" {
		return identity{}, fmt.Errorf("%w: missing token", ErrAuthRejected)
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return identity{}, fmt.Errorf("%w: %v", ErrAuthRejected, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return identity{}, fmt.Errorf("%w: invalid claims", ErrAuthRejected)
	}
	if c.Role != roleUser && c.Role != roleAdmin {
		return identity{}, fmt.Errorf("%w: role %q not allowed", ErrAuthRejected, c.Role)
	}
	return identity{Subject: c.Subject, Role: c.Role}, nil
}

// bearerToken reads "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
