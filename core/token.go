package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenKind how an asset is addressed
type TokenKind int

const (
	// TokenKindNative chain native denomination
	TokenKindNative TokenKind = iota
	// TokenKindContract token contract address
	TokenKindContract
)

var tokenKindNames = map[TokenKind]string{
	TokenKindNative:   "native",
	TokenKindContract: "contract",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Token asset identifier, either a native denom or a token contract address
type Token struct {
	Kind  TokenKind `json:"kind"`
	Denom string    `json:"denom"`
}

// NativeToken new native token
func NativeToken(denom string) Token {
	return Token{Kind: TokenKindNative, Denom: denom}
}

// ContractToken new contract token
func ContractToken(address string) Token {
	return Token{Kind: TokenKindContract, Denom: address}
}

// ParseToken parse token from `native:<denom>` or `contract:<address>`
func ParseToken(s string) (Token, error) {
	kind, denom, ok := strings.Cut(s, ":")
	if !ok || denom == "" {
		return Token{}, fmt.Errorf("invalid token %q", s)
	}

	for k, name := range tokenKindNames {
		if name == kind {
			return Token{Kind: k, Denom: denom}, nil
		}
	}

	return Token{}, fmt.Errorf("invalid token kind %q", kind)
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Denom
}

// MarshalText token as `kind:denom`, empty when not set
func (t Token) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return []byte{}, nil
	}

	return []byte(t.String()), nil
}

// UnmarshalText parse `kind:denom`
func (t *Token) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = Token{}
		return nil
	}

	token, err := ParseToken(string(text))
	if err != nil {
		return err
	}

	*t = token
	return nil
}

// IsZero token not set
func (t Token) IsZero() bool {
	return t.Denom == ""
}

// Less total order on tokens, native before contract, then by denom
func (t Token) Less(o Token) bool {
	if t.Kind != o.Kind {
		return t.Kind < o.Kind
	}

	return t.Denom < o.Denom
}

// Coin amount of a token
type Coin struct {
	Token  Token           `json:"token"`
	Amount decimal.Decimal `json:"amount"`
}

// NewCoin new coin
func NewCoin(token Token, amount decimal.Decimal) Coin {
	return Coin{Token: token, Amount: amount}
}

func (c Coin) String() string {
	return c.Amount.String() + " " + c.Token.String()
}

// IsZero zero amount
func (c Coin) IsZero() bool {
	return c.Amount.IsZero()
}
