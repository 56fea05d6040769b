package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vyrodovalexey/employee-api/internal/auth"
)

// mockAuthenticator is a test double for auth.Authenticator.
type mockAuthenticator struct {
	info   *auth.AuthInfo
	err    error
	called bool
}

func (m *mockAuthenticator) Authenticate(_ *http.Request) (*auth.AuthInfo, error) {
	m.called = true
	return m.info, m.err
}

func (m *mockAuthenticator) Method() auth.AuthMethod {
	return auth.AuthMethodBasic
}

func TestMultiAuthenticator_Authenticate(t *testing.T) {
	t.Parallel()

	basicInfo := &auth.AuthInfo{Method: auth.AuthMethodBasic, Subject: "hr-admin"}
	keyInfo := &auth.AuthInfo{Method: auth.AuthMethodAPIKey, Subject: "ci"}

	tests := []struct {
		name           string
		first          *mockAuthenticator
		second         *mockAuthenticator
		wantInfo       *auth.AuthInfo
		wantErrIs      error
		wantSecondCall bool
	}{
		{
			name:     "first succeeds",
			first:    &mockAuthenticator{info: basicInfo},
			second:   &mockAuthenticator{info: keyInfo},
			wantInfo: basicInfo,
		},
		{
			name:           "falls through on missing credentials",
			first:          &mockAuthenticator{err: auth.ErrUnauthenticated},
			second:         &mockAuthenticator{info: keyInfo},
			wantInfo:       keyInfo,
			wantSecondCall: true,
		},
		{
			name:      "stops on rejected credentials",
			first:     &mockAuthenticator{err: auth.ErrInvalidCredentials},
			second:    &mockAuthenticator{info: keyInfo},
			wantErrIs: auth.ErrInvalidCredentials,
		},
		{
			name:           "nobody presented credentials",
			first:          &mockAuthenticator{err: auth.ErrUnauthenticated},
			second:         &mockAuthenticator{err: auth.ErrUnauthenticated},
			wantErrIs:      auth.ErrUnauthenticated,
			wantSecondCall: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			multi := auth.NewMultiAuthenticator(tt.first, tt.second)

			// Act
			info, err := multi.Authenticate(httptest.NewRequest(http.MethodGet, "/employees", nil))

			// Assert
			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("Authenticate() error = %v, want errors.Is %v", err, tt.wantErrIs)
				}
			} else if info != tt.wantInfo {
				t.Errorf("Authenticate() info = %+v, want %+v", info, tt.wantInfo)
			}
			if tt.second.called != tt.wantSecondCall {
				t.Errorf("second authenticator called = %v, want %v", tt.second.called, tt.wantSecondCall)
			}
		})
	}
}

func TestMultiAuthenticator_Empty(t *testing.T) {
	t.Parallel()

	_, err := auth.NewMultiAuthenticator().Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))

	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Authenticate() error = %v, want ErrUnauthenticated", err)
	}
	if auth.NewMultiAuthenticator().Method() != auth.AuthMethodMulti {
		t.Error("Method() should be multi")
	}
}
