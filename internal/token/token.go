// Package token holds the parameter model for generated Sui coin packages.
//
// A Params value is built per request, rendered into Move source by the
// movegen package, and discarded. Only decimals, symbol, name, description
// and the freeze flag survive a round trip through generated source; the
// target environment lives exclusively in the package manifest.
package token

import (
	"strings"
)

// Environment is the Sui network a package is built against.
type Environment string

const (
	Mainnet Environment = "mainnet"
	Devnet  Environment = "devnet"
	Testnet Environment = "testnet"
)

// Environments lists the canonical environment names.
var Environments = []Environment{Mainnet, Devnet, Testnet}

// ParseEnvironment maps s onto a canonical environment. Unknown values
// (including the empty string) fall back to Devnet.
func ParseEnvironment(s string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case Mainnet:
		return Mainnet
	case Testnet:
		return Testnet
	default:
		return Devnet
	}
}

// FrameworkRev returns the sui-framework git revision for the environment.
func (e Environment) FrameworkRev() string {
	return "framework/" + string(ParseEnvironment(string(e)))
}

// Params is the declared attribute set of a coin.
type Params struct {
	Decimals    uint8       `json:"decimals" yaml:"decimals"`
	Symbol      string      `json:"symbol" yaml:"symbol"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	IsFrozen    bool        `json:"is_frozen" yaml:"frozen"`
	Environment Environment `json:"environment" yaml:"environment"`
}

// Slug returns the name reduced to ASCII letters and digits.
func (p Params) Slug() string {
	return Slugify(p.Name)
}

// ModuleName is the Move module (and package address) name.
func (p Params) ModuleName() string {
	return p.Slug()
}

// TokenType is the one-time witness struct name.
func (p Params) TokenType() string {
	return strings.ToUpper(p.Slug())
}

// Canonicalize returns a copy of p with whitespace runs in the name and
// description collapsed, the symbol trimmed and the environment coerced.
func (p Params) Canonicalize() Params {
	p.Name = collapseSpaces(p.Name)
	p.Description = collapseSpaces(p.Description)
	p.Symbol = strings.TrimSpace(p.Symbol)
	p.Environment = ParseEnvironment(string(p.Environment))
	return p
}

// Slugify keeps only the ASCII letters and digits of s.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isAlnum(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
