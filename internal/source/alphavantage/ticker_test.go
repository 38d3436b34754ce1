package alphavantage

import (
	"errors"
	"testing"
)

func TestParseTicker_Valid(t *testing.T) {
	cases := []struct {
		in                  string
		kind, symbol, base string
	}{
		{"price:IBM:USD", "price", "IBM", "USD"},
		{"fx:USD:CHF", "fx", "USD", "CHF"},
		{"price:BRK.B:USD", "price", "BRK.B", "USD"},
		{"price:VWRL.AS:EUR", "price", "VWRL.AS", "EUR"},
		{"fx:BTC:USD_1", "fx", "BTC", "USD_1"},
	}
	for _, c := range cases {
		kind, symbol, base, err := parseTicker(c.in)
		if err != nil {
			t.Fatalf("parseTicker(%q): %v", c.in, err)
		}
		if kind != c.kind || symbol != c.symbol || base != c.base {
			t.Fatalf("parseTicker(%q) = (%q, %q, %q), want (%q, %q, %q)",
				c.in, kind, symbol, base, c.kind, c.symbol, c.base)
		}
	}
}

func TestParseTicker_Invalid(t *testing.T) {
	cases := []string{
		"",
		"INVALID",
		"price:IBM",
		"price::USD",
		"quote:IBM:USD",
		"price:IBM:USD:extra",
		"fx:USD:",
		"fx:USD:C-HF",
		"PRICE:IBM:USD",
	}
	for _, c := range cases {
		_, _, _, err := parseTicker(c)
		if !errors.Is(err, ErrInvalidTicker) {
			t.Fatalf("parseTicker(%q): want ErrInvalidTicker, got %v", c, err)
		}
	}
}
