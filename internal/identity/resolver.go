package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoIdentity means the request carries no usable identity.
	ErrNoIdentity = errors.New("no identity")
	// ErrInvalidToken means a bearer token was present but rejected.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is what a resolver extracts from a request.
type Identity struct {
	Username string
	Admin    bool
}

// Resolver maps an incoming request to the identity asserted by the host.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// HeaderResolver trusts headers set by an authenticating reverse proxy.
type HeaderResolver struct {
	UserHeader  string // ex: X-Remote-User
	AdminHeader string // ex: X-Remote-Admin, parsed as a bool
}

func (h HeaderResolver) Resolve(r *http.Request) (Identity, error) {
	username := strings.TrimSpace(r.Header.Get(h.UserHeader))
	if username == "" {
		return Identity{}, ErrNoIdentity
	}
	admin, _ := strconv.ParseBool(strings.TrimSpace(r.Header.Get(h.AdminHeader)))
	return Identity{Username: username, Admin: admin}, nil
}

// Claims carried by tokens minted by the host shell.
type Claims struct {
	PreferredUsername string `json:"preferred_username,omitempty"`
	Admin             bool   `json:"admin"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 bearer tokens.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver creates a resolver for tokens signed with secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (j *JWTResolver) Resolve(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return Identity{}, ErrNoIdentity
	}
	claims, err := j.Validate(strings.TrimSpace(raw))
	if err != nil {
		return Identity{}, err
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Subject
	}
	if username == "" {
		return Identity{}, ErrNoIdentity
	}
	return Identity{Username: username, Admin: claims.Admin}, nil
}

// Validate parses and verifies a token.
func (j *JWTResolver) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Issue mints a token, used by the CLI and tests.
func (j *JWTResolver) Issue(username string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "linkdash",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}
