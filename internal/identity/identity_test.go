package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "user-123",
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestFixed(t *testing.T) {
	t.Parallel()

	t.Run("always resolves", func(t *testing.T) {
		t.Parallel()

		f, err := NewFixed("demo-user")
		require.NoError(t, err)

		got, err := f.Resolve(httptest.NewRequest(http.MethodGet, "/todos", nil))
		require.NoError(t, err)
		assert.Equal(t, "demo-user", got)
		assert.Equal(t, ModeFixed, f.Mode())
	})

	t.Run("rejects empty identity", func(t *testing.T) {
		t.Parallel()

		_, err := NewFixed("")
		assert.Error(t, err)
	})
}

func TestSessionResolve(t *testing.T) {
	t.Parallel()

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noSubject := validClaims()
	noSubject.Subject = ""

	for name, tc := range map[string]struct {
		setup   func(t *testing.T, r *http.Request)
		want    string
		wantErr bool
	}{
		"cookie token": {
			setup: func(t *testing.T, r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: signToken(t, jwt.SigningMethodHS256, testSecret, validClaims())})
			},
			want: "user-123",
		},
		"bearer header": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, validClaims()))
			},
			want: "user-123",
		},
		"no token": {
			setup:   func(t *testing.T, r *http.Request) {},
			wantErr: true,
		},
		"non bearer scheme": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			},
			wantErr: true,
		},
		"bad signature": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()))
			},
			wantErr: true,
		},
		"wrong algorithm": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS512, testSecret, validClaims()))
			},
			wantErr: true,
		},
		"expired": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, expired))
			},
			wantErr: true,
		},
		"missing expiry": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, noExpiry))
			},
			wantErr: true,
		},
		"wrong audience": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, wrongAudience))
			},
			wantErr: true,
		},
		"missing subject": {
			setup: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, noSubject))
			},
			wantErr: true,
		},
		"garbage": {
			setup: func(t *testing.T, r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "not-a-jwt"})
			},
			wantErr: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, err := NewSession(SessionConfig{
				Secret:     testSecret,
				Audience:   "authenticated",
				CookieName: "sb-access-token",
			})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/todos", nil)
			tc.setup(t, req)

			got, err := s.Resolve(req)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnauthenticated)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSessionWithoutAudienceCheck(t *testing.T) {
	t.Parallel()

	s, err := NewSession(SessionConfig{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, ModeSession, s.Mode())

	claims := validClaims()
	claims.Audience = nil

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, claims))

	got, err := s.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestNewSessionRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSession(SessionConfig{})
	assert.Error(t, err)
}
