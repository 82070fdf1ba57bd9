package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

type VerifierConfig struct {
	Secret    []byte
	Algorithm string
	Now       func() time.Time
}

// Verifier turns token strings into ParsedTokens.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	method, err := signingMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		key: cfg.Secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Parse checks the signature, algorithm, expiry and claim layout of token.
// Every failure wraps common.ErrInvalidToken; an expired token additionally
// matches common.ErrTokenExpired.
func (v *Verifier) Parse(token string) (*ParsedToken, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w: %w", common.ErrInvalidToken, common.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	return &ParsedToken{raw: token, claims: *claims}, nil
}

// ParsedToken is a verified token.
type ParsedToken struct {
	raw    string
	claims Claims
}

func (p *ParsedToken) Raw() string     { return p.raw }
func (p *ParsedToken) Type() TokenType { return p.claims.Type }
func (p *ParsedToken) UserID() string  { return p.claims.UserID }

// HostID returns the host the token is scoped to, if any.
func (p *ParsedToken) HostID() (int64, bool) {
	if p.claims.HostID == nil {
		return 0, false
	}
	return *p.claims.HostID, true
}

// ExpiresAt returns the exp claim; ok is false for agent tokens.
func (p *ParsedToken) ExpiresAt() (time.Time, bool) {
	if p.claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return p.claims.ExpiresAt.Time, true
}

// IssuedAt returns the iat claim.
func (p *ParsedToken) IssuedAt() (time.Time, bool) {
	if p.claims.IssuedAt == nil {
		return time.Time{}, false
	}
	return p.claims.IssuedAt.Time, true
}

// IsExpired reports whether the token's exp lies strictly before at.
// Agent tokens are never expired.
func (p *ParsedToken) IsExpired(at time.Time) bool {
	if !p.claims.Type.Expires() {
		return false
	}
	exp, ok := p.ExpiresAt()
	if !ok {
		return true
	}
	return exp.Before(at)
}

// RequireType fails with common.ErrWrongTokenType unless the token is of
// kind want.
func (p *ParsedToken) RequireType(want TokenType) error {
	if p.claims.Type != want {
		return fmt.Errorf("%w: got %s, want %s", common.ErrWrongTokenType, p.claims.Type, want)
	}
	return nil
}
