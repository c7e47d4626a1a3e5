package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadToken = errors.New("invalid token")

// TokenTTL is the fixed lifetime of an identity token.
const TokenTTL = 7 * 24 * time.Hour

type Role int

const (
	Admin Role = iota + 1
	Doctor
	Patient
)

func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	case Doctor:
		return "doctor"
	case Patient:
		return "patient"
	}
	return "unknown"
}

// ParseRole is the only place a role name is read from text.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(s) {
	case "admin":
		return Admin, true
	case "doctor":
		return Doctor, true
	case "patient":
		return Patient, true
	}
	return 0, false
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Claims keeps the subject (email or username) in the registered "sub" claim.
type Claims struct {
	jwt.RegisteredClaims
}

func MakeToken(subject, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	if c.Subject == "" {
		return nil, ErrBadToken
	}
	return c, nil
}
