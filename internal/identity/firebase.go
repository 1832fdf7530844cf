package identity

import (
	"context"
	"errors"
	"fmt"
	"net"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseConfig configures the Firebase Admin SDK client.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirebaseVerifier verifies ID tokens using the Firebase Admin SDK,
// which caches the provider's signing keys and refreshes them as needed.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the Admin SDK app and its auth client.
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

// Verify checks the token signature and validity against the provider's
// current signing keys and maps the result onto the package's error
// taxonomy: transport problems become ErrUnavailable, everything else
// the provider rejects becomes ErrInvalidToken.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		if isTransportError(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, ErrInvalidToken
	}

	return &Claims{
		UID:         decoded.UID,
		Email:       stringClaim(decoded, "email"),
		DisplayName: stringClaim(decoded, "name"),
		PhotoURL:    stringClaim(decoded, "picture"),
	}, nil
}

func stringClaim(tok *fbauth.Token, key string) string {
	if v, ok := tok.Claims[key].(string); ok {
		return v
	}
	return ""
}

// isTransportError distinguishes "could not reach the provider" from
// "provider rejected the credential". Signing-key fetches surface as
// net or context errors when the provider is down.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
