package auth

import "marketplace/internal/domain/models"

// TokenVerifier validates bearer tokens. The auth middleware only depends on
// this interface, so tests can swap in a fake.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or badly signed.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier
	Close() error
}
