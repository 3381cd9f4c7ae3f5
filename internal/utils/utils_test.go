package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, model.RoleHospital, 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	cl, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cl.UserID)
	assert.Equal(t, model.RoleHospital, cl.Role)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, model.RoleDonor, 15)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("s3cret", 42, model.RoleDonor, -5)
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unknownRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7", "role": "OWNER", "exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := unknownRole.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("s3cret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_NumericSubject(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 9, "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	cl, err := ParseAccessToken("k", raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cl.UserID)
	assert.Equal(t, model.RoleAdmin, cl.Role)
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Donor123!", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "Donor123!"))
	assert.False(t, VerifyPassword(hash, "donor123!"))
}

func TestPasswordProblem(t *testing.T) {
	assert.Empty(t, PasswordProblem("Hospital123!"))
	assert.NotEmpty(t, PasswordProblem("short1"))
	assert.NotEmpty(t, PasswordProblem("lettersonly"))
	assert.NotEmpty(t, PasswordProblem("1234567890"))
}
