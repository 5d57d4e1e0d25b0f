package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IssueAndValidate(t *testing.T) {
	svc := NewService("s3cret", "ledgercert")

	token, err := svc.Issue("asha", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "asha", claims.Subject)
	assert.Equal(t, "ledgercert", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestService_Validate(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	issuer := NewService("s3cret", "ledgercert")
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue("asha", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *Service
		now     time.Time
		token   string
		wantErr error
	}{
		{
			name:  "Valid",
			svc:   NewService("s3cret", "ledgercert"),
			now:   issued.Add(time.Minute),
			token: token,
		},
		{
			name:    "Expired",
			svc:     NewService("s3cret", "ledgercert"),
			now:     issued.Add(2 * time.Hour),
			token:   token,
			wantErr: ErrTokenExpired,
		},
		{
			name:    "WrongSecret",
			svc:     NewService("other", "ledgercert"),
			now:     issued,
			token:   token,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "WrongIssuer",
			svc:     NewService("s3cret", "someone-else"),
			now:     issued,
			token:   token,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Garbage",
			svc:     NewService("s3cret", "ledgercert"),
			now:     issued,
			token:   "not.a.token",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Disabled",
			svc:     NewService("", "ledgercert"),
			now:     issued,
			token:   token,
			wantErr: ErrNoSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.svc.now = func() time.Time { return tt.now }

			_, err := tt.svc.Validate(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewService("s3cret", "ledgercert")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ledgercert",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
