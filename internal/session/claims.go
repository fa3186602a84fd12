package session

import (
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mr-tron/base58"
)

// DecodeClaims extracts the payload of a compact JWT without verifying the
// signature. Verification is the server's job; the client only reads the
// exp and role claims. Returns nil for any malformed token.
func DecodeClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// AccessExpiry returns the expiry time derived from the token's exp claim
// (seconds since epoch). ok is false when the token or the claim is
// unusable.
func AccessExpiry(token string) (time.Time, bool) {
	claims := DecodeClaims(token)
	if claims == nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// RoleClaim returns the raw role claim embedded in the token, or "" when
// absent.
func RoleClaim(token string) string {
	claims := DecodeClaims(token)
	if claims == nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// Fingerprint returns a short non-reversible identifier for a token
// (Base58-encoded SHA256 prefix), safe to include in log output.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return base58.Encode(sum[:])[:12]
}
