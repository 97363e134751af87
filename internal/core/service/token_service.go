package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// JWTTokenService signs and verifies HS256 access tokens and validates demo
// redemption tokens signed with a separate key.
type JWTTokenService struct {
	secret     []byte
	demoSecret []byte
	accessTTL  time.Duration
}

func NewTokenService(secret, demoSecret string, accessTTL time.Duration) *JWTTokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &JWTTokenService{
		secret:     []byte(secret),
		demoSecret: []byte(demoSecret),
		accessTTL:  accessTTL,
	}
}

// Generate signs an access token embedding the subject, role names and any
// extra claims. Issued-at and expiry come from the configured access TTL.
func (s *JWTTokenService) Generate(subject string, roles []string, claims map[string]any) (string, error) {
	now := time.Now().UTC()
	mc := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	}
	for k, v := range claims {
		mc[k] = v
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return t.SignedString(s.secret)
}

// Verify checks signature, structure and expiry. Any failure is reported as
// domain.ErrInvalidToken; callers decide whether that is fatal.
func (s *JWTTokenService) Verify(token string) (*domain.DecodedToken, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	sub, _ := claims["sub"].(string)
	decoded := &domain.DecodedToken{
		Subject: sub,
		Roles:   roleClaims(claims),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		decoded.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		decoded.IssuedAt = iat.Time
	}
	return decoded, nil
}

// ExtractExpiry reads the expiry claim after a structural decode only; the
// signature is not re-verified.
func (s *JWTTokenService) ExtractExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", domain.ErrInvalidToken)
	}
	return exp.Time, nil
}

// GenerateDemoToken signs a redemption token for a demo key. Used by the
// demo-login route after resolving its slug to key metadata.
func (s *JWTTokenService) GenerateDemoToken(org, keyID, scope string) (string, error) {
	now := time.Now().UTC()
	mc := jwt.MapClaims{
		"org":    org,
		"key_id": keyID,
		"scope":  scope,
		"iat":    now.Unix(),
		"exp":    now.Add(s.accessTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return t.SignedString(s.demoSecret)
}

// ParseAndValidateDemoToken verifies a demo redemption token against the demo
// signing key and maps its payload to DemoClaims. Scope checking is left to
// the redemption engine.
func (s *JWTTokenService) ParseAndValidateDemoToken(token string) (*domain.DemoClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.demoSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	org, _ := claims["org"].(string)
	keyID, _ := claims["key_id"].(string)
	scope, _ := claims["scope"].(string)

	dc := &domain.DemoClaims{Org: org, KeyID: keyID, Scope: scope}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		dc.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		dc.ExpiresAt = &t
	}
	return dc, nil
}

func roleClaims(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
