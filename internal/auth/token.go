package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pascaldekloe/jwt"
)

const (
	DefaultTokenExpiry = 24 * time.Hour

	roleClaim = "role"
)

var ErrInvalidToken = errors.New("invalid authentication token")

// TokenIssuer signs and checks HS256 tokens. Issuer and audience are both
// the service base URL.
type TokenIssuer struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, expiry time.Duration) *TokenIssuer {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}

	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

type Token struct {
	Value   string
	Expires time.Time
}

// TokenClaims is what a verified token says about its bearer.
type TokenClaims struct {
	Subject int64
	Role    Role
}

func (t *TokenIssuer) Issue(subject int64, role Role) (*Token, error) {
	now := t.now()
	expiry := now.Add(t.expiry)

	var claims jwt.Claims
	claims.Subject = strconv.FormatInt(subject, 10)
	claims.Issued = jwt.NewNumericTime(now)
	claims.NotBefore = jwt.NewNumericTime(now)
	claims.Expires = jwt.NewNumericTime(expiry)
	claims.Issuer = t.issuer
	claims.Audiences = []string{t.issuer}
	claims.Set = map[string]any{roleClaim: string(role)}

	jwtBytes, err := claims.HMACSign(jwt.HS256, t.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{Value: string(jwtBytes), Expires: expiry}, nil
}

func (t *TokenIssuer) Verify(token string) (*TokenClaims, error) {
	claims, err := jwt.HMACCheck([]byte(token), t.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !claims.Valid(t.now()) {
		return nil, ErrInvalidToken
	}

	if claims.Issuer != t.issuer || !claims.AcceptAudience(t.issuer) {
		return nil, ErrInvalidToken
	}

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role, _ := claims.Set[roleClaim].(string)
	if !Role(role).Valid() {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{Subject: subject, Role: Role(role)}, nil
}
