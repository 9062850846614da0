package authz

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

const tokenTTL = 24 * time.Hour

// TokenCodec signs and verifies the bearer credentials. HS256 only; any
// other algorithm in the header is rejected before the signature check.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

func (t *TokenCodec) Issue(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Subject validates the token and extracts the user ID. Every failure mode
// (malformed, bad signature, expired, bad payload) collapses into the same
// unauthenticated verdict; none of them touches the database.
func (t *TokenCodec) Subject(tokenString string) (uint, Verdict) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, unauthenticated()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, unauthenticated()
	}

	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, unauthenticated()
	}

	return uint(sub), allow()
}
