package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = time.Hour
	RefreshTTL = 7 * 24 * time.Hour
)

var ErrUnexpectedSigningMethod = errors.New("unexpected sign method")

// UserClaim is the only identity carried by both tokens.
type UserClaim struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

type Pair struct {
	Token        string
	RefreshToken string
}

// DeriveRefreshSecret returns the per-user refresh signing secret. It
// depends on the stored password hash, so changing a password invalidates
// every refresh token issued before the change.
func DeriveRefreshSecret(passwordHash string, serverSecret []byte) []byte {
	return []byte(passwordHash + string(serverSecret))
}

func sign(user UserClaim, secret []byte, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Issue signs an access token with accessSecret and a refresh token with
// refreshSecret, which callers derive with DeriveRefreshSecret.
func Issue(user UserClaim, accessSecret, refreshSecret []byte, now time.Time) (Pair, error) {
	access, err := sign(user, accessSecret, now, AccessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := sign(user, refreshSecret, now, RefreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{Token: access, RefreshToken: refresh}, nil
}

// Parse verifies signature, algorithm and expiry.
func Parse(raw string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnexpectedSigningMethod
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return &claims, nil
}

// Decode reads the claims without checking the signature. Only use the
// result to pick the key that Parse then verifies with.
func Decode(raw string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, err
	}
	if claims.User.ID == 0 {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}
