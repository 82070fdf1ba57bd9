package auth

import (
	"fmt"
	"time"

	"github.com/commoni/commoni/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Defaults used when IssuerConfig leaves a field empty.
const (
	DefaultAlgorithm  = "HS256"
	DefaultAccessTTL  = 20 * time.Minute
	DefaultRefreshTTL = 15 * 24 * time.Hour
)

type IssuerConfig struct {
	Secret     []byte
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// Issuer mints signed tokens.
type Issuer struct {
	method     jwt.SigningMethod
	key        any
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// IssueOption adds optional claims.
type IssueOption func(*Claims)

// WithHostID scopes the token to a registered host.
func WithHostID(id int64) IssueOption {
	return func(c *Claims) {
		c.HostID = &id
	}
}

func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	method, err := signingMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	i := &Issuer{
		method:     method,
		key:        cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}
	if i.accessTTL <= 0 {
		i.accessTTL = DefaultAccessTTL
	}
	if i.refreshTTL <= 0 {
		i.refreshTTL = DefaultRefreshTTL
	}
	if i.now == nil {
		i.now = time.Now
	}
	return i, nil
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	if alg == "" {
		alg = DefaultAlgorithm
	}
	m := jwt.GetSigningMethod(alg)
	if m == nil || m == jwt.SigningMethodNone {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	return m, nil
}

// AccessTTL is the validity window of access tokens.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// Issue signs a token of the given kind for userID. Access and refresh
// tokens expire after their configured TTL; agent tokens never expire.
func (i *Issuer) Issue(kind TokenType, userID string, opts ...IssueOption) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: cannot issue %s", common.ErrTokenEncoding, kind)
	}
	if userID == "" {
		return "", fmt.Errorf("%w: empty subject", common.ErrTokenEncoding)
	}

	now := i.now()
	claims := &Claims{
		Type:    kind,
		Version: ClaimsVersion,
		UserID:  userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	switch kind {
	case TokenTypeAccess:
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.accessTTL))
	case TokenTypeRefresh:
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.refreshTTL))
	}
	for _, opt := range opts {
		opt(claims)
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrTokenEncoding, err)
	}
	return signed, nil
}
