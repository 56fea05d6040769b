// Package auth authenticates callers of the employee API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AuthMethod represents the authentication method used.
type AuthMethod string

const (
	// AuthMethodNone disables authentication.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodBasic indicates HTTP Basic authentication.
	AuthMethodBasic AuthMethod = "basic"
	// AuthMethodAPIKey indicates API key authentication.
	AuthMethodAPIKey AuthMethod = "apikey"
	// AuthMethodMulti accepts either Basic or API key credentials.
	AuthMethodMulti AuthMethod = "multi"
)

// AuthInfo holds the authenticated identity.
type AuthInfo struct {
	Method  AuthMethod
	Subject string
}

// Authenticator validates a request and returns auth info.
type Authenticator interface {
	Authenticate(r *http.Request) (*AuthInfo, error)
	Method() AuthMethod
}

// Sentinel errors for authentication failures.
var (
	ErrUnauthenticated    = errors.New("unauthenticated: no credentials provided")
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownMethod      = errors.New("unknown authentication method")
)

// Settings carries the credential lists used to build an Authenticator.
type Settings struct {
	Method     AuthMethod
	BasicUsers string
	APIKeys    string
}

// New builds the Authenticator selected by s.Method. It returns nil for
// AuthMethodNone.
func New(s Settings) (Authenticator, error) {
	var (
		authenticator Authenticator
		err           error
	)

	switch s.Method {
	case AuthMethodNone, "":
		return nil, nil
	case AuthMethodBasic:
		authenticator, err = NewBasicAuthenticator(s.BasicUsers)
	case AuthMethodAPIKey:
		authenticator, err = NewAPIKeyAuthenticator(s.APIKeys)
	case AuthMethodMulti:
		authenticator, err = newMulti(s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, s.Method)
	}
	if err != nil {
		return nil, err
	}

	return authenticator, nil
}

// newMulti combines every method that has credentials configured.
func newMulti(s Settings) (*MultiAuthenticator, error) {
	var authenticators []Authenticator

	if s.BasicUsers != "" {
		basic, err := NewBasicAuthenticator(s.BasicUsers)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, basic)
	}

	if s.APIKeys != "" {
		apiKey, err := NewAPIKeyAuthenticator(s.APIKeys)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, apiKey)
	}

	if len(authenticators) == 0 {
		return nil, errors.New("multi auth: no credentials configured")
	}

	return NewMultiAuthenticator(authenticators...), nil
}

type contextKey string

const authInfoKey contextKey = "auth_info"

// FromContext retrieves AuthInfo from the context.
func FromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authInfoKey).(*AuthInfo)
	return info, ok
}

// WithAuthInfo stores AuthInfo in the context.
func WithAuthInfo(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoKey, info)
}
