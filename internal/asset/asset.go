// Package asset handles asset-symbol normalisation and the cheap format
// checks that run before any request reaches the analysis backend.
package asset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Symbol kinds recognised from the ticker shape.
const (
	KindEquity = "EQUITY"
	KindCrypto = "CRYPTO" // BTC-USD
	KindIndex  = "INDEX"  // ^GSPC
	KindFX     = "FX"     // EURUSD=X
	KindFuture = "FUTURE" // ES=F
)

// MaxLen is the longest symbol the backend accepts.
const MaxLen = 15

// symbolRegex matches: optional ^, then letters/digits with . - = separators.
// Examples: AAPL, BRK.B, BTC-USD, ^GSPC, EURUSD=X
var symbolRegex = regexp.MustCompile(`^\^?[A-Z0-9]+(?:[.\-=][A-Z0-9]+)*$`)

var (
	ErrEmpty   = errors.New("asset: symbol is required")
	ErrTooLong = errors.New("asset: symbol is too long")
	ErrInvalid = errors.New("asset: invalid symbol format")
)

// Symbol is a normalised asset symbol.
type Symbol struct {
	Raw    string `json:"raw"`
	Ticker string `json:"ticker"`
	Kind   string `json:"kind"`
}

func (s *Symbol) String() string { return s.Ticker }

// ParseSymbol trims, upper-cases and validates a user-entered symbol.
func ParseSymbol(raw string) (*Symbol, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		return nil, ErrEmpty
	}
	if len(ticker) > MaxLen {
		return nil, fmt.Errorf("%w: %s (max %d characters)", ErrTooLong, ticker, MaxLen)
	}
	if !symbolRegex.MatchString(ticker) {
		return nil, fmt.Errorf("%w: %s (e.g. AAPL, SPY, BTC-USD)", ErrInvalid, ticker)
	}

	return &Symbol{
		Raw:    raw,
		Ticker: ticker,
		Kind:   kindOf(ticker),
	}, nil
}

func kindOf(ticker string) string {
	switch {
	case strings.HasPrefix(ticker, "^"):
		return KindIndex
	case strings.HasSuffix(ticker, "=X"):
		return KindFX
	case strings.HasSuffix(ticker, "=F"):
		return KindFuture
	case strings.HasSuffix(ticker, "-USD"), strings.HasSuffix(ticker, "-USDT"):
		return KindCrypto
	}
	return KindEquity
}
