package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sv1nxmmvt/fincontrol/internal/entity/user"
)

// The session credential is an HS256 JWT carried in a cookie. The token is
// only an encoding of the Identity value the account directory produced.
const sessionCookie = "session"

type sessionClaims struct {
	UserID string `json:"uid"`
	Login  string `json:"login"`
	jwt.RegisteredClaims
}

func issueToken(ident user.Identity, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		UserID: ident.UserID.String(),
		Login:  ident.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, errors.Wrap(err, "sign session token")
}

func parseToken(secret, tokenStr string) (user.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{},
		func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return user.Identity{}, errors.Wrap(err, "parse session token")
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return user.Identity{}, errors.New("invalid session token")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return user.Identity{}, errors.Wrap(err, "parse session token")
	}
	return user.Identity{UserID: userID, Login: claims.Login}, nil
}
