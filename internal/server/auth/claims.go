package auth

import (
	"errors"
	"fmt"

	"github.com/commoni/commoni/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload.
//
// The field order is the JSON order and therefore part of the byte-level
// determinism of issued tokens.
type Claims struct {
	Type    TokenType `json:"type"`
	Version int       `json:"ver"`
	UserID  string    `json:"user_id"`
	HostID  *int64    `json:"host_id,omitempty"`
	jwt.RegisteredClaims
}

var _ jwt.ClaimsValidator = (*Claims)(nil)

// Validate is called by the jwt parser after the registered claims have
// been checked.
func (c *Claims) Validate() error {
	var errs []error
	if c.Version != ClaimsVersion {
		errs = append(errs, fmt.Errorf("unsupported claims version %d", c.Version))
	}
	if !c.Type.Valid() {
		errs = append(errs, errors.New("missing token type"))
	}
	if c.UserID == "" {
		errs = append(errs, errors.New("missing user_id"))
	}
	if c.Subject != c.UserID {
		errs = append(errs, errors.New("sub does not match user_id"))
	}
	if c.Type == TokenTypeAgent && c.HostID == nil {
		errs = append(errs, errors.New("agent token without host_id"))
	}
	if c.Type.Expires() && c.ExpiresAt == nil {
		errs = append(errs, fmt.Errorf("%s token without exp", c.Type))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, errors.Join(errs...))
	}
	return nil
}
