package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAccess  = []byte("test-jwt-secret")
	testRefresh = []byte("test-refresh-secret")
)

func TestIssue_RoundTrip(t *testing.T) {
	t.Parallel()

	user := UserClaim{ID: 42, Username: "alice"}
	refreshSecret := DeriveRefreshSecret("$2a$10$hash", testRefresh)
	now := time.Now()

	pair, err := Issue(user, testAccess, refreshSecret, now)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Token)
	require.NotEmpty(t, pair.RefreshToken)

	access, err := Parse(pair.Token, testAccess)
	require.NoError(t, err)
	assert.Equal(t, user, access.User)
	assert.WithinDuration(t, now.Add(AccessTTL), access.ExpiresAt.Time, time.Second)

	refresh, err := Parse(pair.RefreshToken, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, user, refresh.User)
	assert.WithinDuration(t, now.Add(RefreshTTL), refresh.ExpiresAt.Time, time.Second)

	_, err = Parse(pair.RefreshToken, testAccess)
	assert.Error(t, err, "refresh token must not verify with the access secret")
}

func TestDeriveRefreshSecret(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte("hashserver"), DeriveRefreshSecret("hash", []byte("server")))
	assert.NotEqual(t,
		DeriveRefreshSecret("old-hash", testRefresh),
		DeriveRefreshSecret("new-hash", testRefresh),
	)
}

func TestParse_PasswordChangeInvalidatesRefresh(t *testing.T) {
	t.Parallel()

	user := UserClaim{ID: 7, Username: "bob"}
	pair, err := Issue(user, testAccess, DeriveRefreshSecret("old-hash", testRefresh), time.Now())
	require.NoError(t, err)

	_, err = Parse(pair.RefreshToken, DeriveRefreshSecret("new-hash", testRefresh))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	pair, err := Issue(UserClaim{ID: 1, Username: "old"}, testAccess, testRefresh, time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)

	_, err = Parse(pair.Token, testAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = Parse(pair.RefreshToken, testRefresh)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		User: UserClaim{ID: 1, Username: "mallory"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testAccess)
	require.NoError(t, err)
	_, err = Parse(hs512, testAccess)
	assert.ErrorIs(t, err, ErrUnexpectedSigningMethod)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = Parse(none, testAccess)
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	pair, err := Issue(UserClaim{ID: 9, Username: "carol"}, testAccess, testRefresh, time.Now())
	require.NoError(t, err)

	claims, err := Decode(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.User.ID)
	assert.Equal(t, "carol", claims.User.Username)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "not-a-jwt"},
		{name: "empty", raw: ""},
		{name: "two segments", raw: "abc.def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			assert.Error(t, err)
		})
	}
}
