package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"servicecircle/internal/domain"
)

// ErrUnknownRole token 签名有效但角色不在白名单内
var ErrUnknownRole = errors.New("token carries unknown role")

type Claims struct {
	UID  uint64      `json:"uid"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() domain.Principal {
	return domain.Principal{ID: c.UID, Role: c.Role}
}

// JWTer HS256 签发与校验；admin token 的 UID 固定为 0
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration

	parser *jwt.Parser
}

func New(secret, issuer string, ttl time.Duration) *JWTer {
	return &JWTer{
		Secret: []byte(secret),
		Issuer: issuer,
		TTL:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithLeeway(time.Minute),
			jwt.WithExpirationRequired(),
		),
	}
}

func (j *JWTer) Issue(p domain.Principal) (string, error) {
	return j.IssueWithTTL(p, j.TTL)
}

func (j *JWTer) IssueWithTTL(p domain.Principal, ttl time.Duration) (string, error) {
	if !knownRole(p.Role) {
		return "", ErrUnknownRole
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID:  p.ID,
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   strconv.FormatUint(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	var c Claims
	if _, err := j.parser.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return j.Secret, nil
	}); err != nil {
		return nil, err
	}
	if !knownRole(c.Role) {
		return nil, ErrUnknownRole
	}
	return &c, nil
}

func knownRole(r domain.Role) bool {
	_, ok := domain.ParseRole(string(r))
	return ok || r == domain.RoleAdmin
}
