package utils // package utils provides the token service and password hashing

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5" // HS256 signing and strict segment decoding
)

// DefaultTokenTTL is how far VerifyAndRefreshToken pushes exp when the
// service was built without a TTL.
const DefaultTokenTTL = time.Hour

// Claims is a decoded token payload. Numbers arrive as float64 after JSON
// decoding, so the accessors below accept any numeric representation.
type Claims map[string]any

// RoleID returns the role_id claim. The bool is false when it is missing
// or not a number.
func (c Claims) RoleID() (int64, bool) { return c.number("role_id") }

// UserID returns the id claim.
func (c Claims) UserID() (int64, bool) { return c.number("id") }

// Username returns the username claim or "".
func (c Claims) Username() string {
	s, _ := c["username"].(string)
	return s
}

func (c Claims) number(key string) (int64, bool) {
	switch v := c[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}

// TokenService creates and checks compact HS256 tokens. The secret never
// leaves the service; the payload is signed but not encrypted.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds a service signing with secret. A zero ttl means
// DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for exp checks and refreshes.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// TTL is the lifetime given to issued and refreshed tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Expiry returns the exp value a token issued now should carry.
func (s *TokenService) Expiry() int64 { return s.now().Add(s.ttl).Unix() }

// CreateToken signs claims into header.payload.signature, each segment
// base64url without padding.
func (s *TokenService) CreateToken(claims Claims) (string, error) {
	if claims == nil {
		claims = Claims{}
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	return t.SignedString(s.secret)
}

func (s *TokenService) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
}

// VerifyToken reports whether token has three well-formed segments and a
// matching signature. An exp claim, when present, must lie in the future.
func (s *TokenService) VerifyToken(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	t, err := s.parser().Parse(token, func(*jwt.Token) (any, error) { return s.secret, nil })
	return err == nil && t.Valid
}

// GetPayload decodes the claims segment without checking the signature.
func (s *TokenService) GetPayload(token string) (Claims, bool) {
	m, ok := s.segmentJSON(token, 1)
	return Claims(m), ok
}

// GetHeader decodes the header segment.
func (s *TokenService) GetHeader(token string) (map[string]any, bool) {
	return s.segmentJSON(token, 0)
}

// GetSignature returns the raw bytes of the signature segment.
func (s *TokenService) GetSignature(token string) ([]byte, bool) {
	parts, ok := split(token)
	if !ok {
		return nil, false
	}
	b, err := s.parser().DecodeSegment(parts[2])
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

// VerifyAndRefreshToken re-signs a valid token with exp moved to now+ttl,
// and always at least one second past the old exp so the result differs.
func (s *TokenService) VerifyAndRefreshToken(token string) (string, bool) {
	if !s.VerifyToken(token) {
		return "", false
	}
	claims, ok := s.GetPayload(token)
	if !ok {
		return "", false
	}
	exp := s.Expiry()
	if old, ok := claims.number("exp"); ok && exp <= old {
		exp = old + 1
	}
	claims["exp"] = exp
	fresh, err := s.CreateToken(claims)
	if err != nil {
		return "", false
	}
	return fresh, true
}

func split(token string) ([]string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}
	return parts, true
}

func (s *TokenService) segmentJSON(token string, i int) (map[string]any, bool) {
	parts, ok := split(token)
	if !ok {
		return nil, false
	}
	b, err := s.parser().DecodeSegment(parts[i])
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
