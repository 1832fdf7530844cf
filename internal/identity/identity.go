// Package identity handles verification of bearer credentials against
// the external identity provider and extraction of the asserted claims.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidToken means the provider rejected the credential
	// (bad signature, expired, wrong audience). Callers must surface
	// a fixed message and never echo provider detail.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnavailable means the provider could not be consulted at all
	// (network failure, outage). Distinct from a rejected credential:
	// callers must answer 503, not 401.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Claims are the subject id and optional profile claims asserted by a
// verified token. Everything except UID may be empty.
type Claims struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Verifier validates a raw bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// ExtractBearer pulls the token out of an Authorization header value.
// A missing header, a non-bearer scheme, or a missing token segment all
// return ok=false ("no credential supplied"), never an error; the
// scheme match is case-insensitive.
func ExtractBearer(header string) (token string, ok bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
