package approval

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
)

// ErrBadGrant is returned for grant tokens that fail verification for any
// reason: bad signature, expiry, malformed claims.
var ErrBadGrant = errors.New("grant token rejected")

// Grant is a verified access window: one user, one item, one request,
// bounded in time.
type Grant struct {
	RequestID string
	UserID    string
	ItemID    string
	ExpiresAt time.Time
}

type grantClaims struct {
	ItemID string `json:"item_id"`
	jwt.RegisteredClaims
}

// signGrant issues the RS256 token representing a granted access window.
func signGrant(signingKey *keycrypt.Key, requestID, userID, itemID string, expiresAt time.Time) (string, error) {
	claims := grantClaims{
		ItemID: itemID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        requestID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(signingKey.RSAPrivateKey())
}

// VerifyGrant checks a grant token's signature and expiry against the vault
// signing key.
func VerifyGrant(signingKey *keycrypt.Key, tokenString string) (*Grant, error) {
	var claims grantClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrBadGrant
		}
		return &signingKey.RSAPrivateKey().PublicKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadGrant
	}
	if claims.ID == "" || claims.Subject == "" || claims.ItemID == "" || claims.ExpiresAt == nil {
		return nil, ErrBadGrant
	}

	return &Grant{
		RequestID: claims.ID,
		UserID:    claims.Subject,
		ItemID:    claims.ItemID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
