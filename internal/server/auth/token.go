// Package auth issues and verifies the three commoni token kinds.
//
// Tokens are HMAC-signed JWTs whose payload is the typed Claims struct.
// Issuance is a pure function of (kind, subject, options, issue instant),
// so two equal calls at the same instant yield byte-identical tokens.
package auth

import (
	"fmt"

	"github.com/commoni/commoni/internal/common"
)

// TokenType is the closed set of token kinds. The in-memory value is not
// the wire encoding; see MarshalText.
type TokenType uint8

const (
	TokenTypeUnknown TokenType = iota
	TokenTypeAccess
	TokenTypeRefresh
	TokenTypeAgent
)

// ClaimsVersion is the payload layout written by this package. Tokens
// carrying any other version are rejected.
const ClaimsVersion = 1

var tokenTypeNames = map[TokenType]string{
	TokenTypeAccess:  "ACCESS",
	TokenTypeRefresh: "REFRESH",
	TokenTypeAgent:   "AGENT",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", uint8(t))
}

// Valid reports whether t is one of the issuable kinds.
func (t TokenType) Valid() bool {
	_, ok := tokenTypeNames[t]
	return ok
}

// Expires reports whether tokens of this kind carry an exp claim.
func (t TokenType) Expires() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// ParseTokenType maps the wire name back to a TokenType.
func ParseTokenType(s string) (TokenType, error) {
	for t, name := range tokenTypeNames {
		if name == s {
			return t, nil
		}
	}
	return TokenTypeUnknown, fmt.Errorf("%w: unknown token type %q", common.ErrInvalidToken, s)
}

func (t TokenType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: cannot encode %s", common.ErrTokenEncoding, t)
	}
	return []byte(tokenTypeNames[t]), nil
}

func (t *TokenType) UnmarshalText(b []byte) error {
	parsed, err := ParseTokenType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
