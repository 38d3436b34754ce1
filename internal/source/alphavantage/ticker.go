package alphavantage

import (
	"fmt"
	"regexp"
)

// Ticker kinds accepted by this source.
const (
	kindPrice = "price" // latest quote or daily series for an instrument
	kindFX    = "fx"    // exchange rate between two currencies
)

// tickerRe matches "kind:symbol:base" where kind is one of the two literals,
// symbol is any run of non-colon characters and base is a word token.
var tickerRe = regexp.MustCompile(`^(price|fx):([^:]+):(\w+)$`)

// parseTicker splits a ticker into its kind, symbol and base currency.
// A non-matching string fails with ErrInvalidTicker.
func parseTicker(ticker string) (kind, symbol, base string, err error) {
	m := tickerRe.FindStringSubmatch(ticker)
	if m == nil {
		return "", "", "", fmt.Errorf(`%w: %q (use "price:SYMBOL:BASE" or "fx:CCY:BASE")`, ErrInvalidTicker, ticker)
	}
	return m[1], m[2], m[3], nil
}
