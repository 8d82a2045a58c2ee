// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Constants for the default supported currencies.
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
)

// minorUnitExponent is the number of fraction digits of the minor unit.
const minorUnitExponent = 2

// Set is an immutable collection of supported currency codes.
//
// A Set is built once at startup and is safe for concurrent use.
type Set struct {
	codes   map[string]struct{}
	ordered []string
}

// NewSet builds a Set from ISO 4217 style codes (three upper-case letters).
func NewSet(codes ...string) (Set, error) {
	s := Set{codes: make(map[string]struct{}, len(codes))}

	for _, c := range codes {
		if !isCode(c) {
			return Set{}, fmt.Errorf("invalid currency code %q", c)
		}

		if _, ok := s.codes[c]; ok {
			continue
		}

		s.codes[c] = struct{}{}
		s.ordered = append(s.ordered, c)
	}

	if len(s.ordered) == 0 {
		return Set{}, fmt.Errorf("empty currency set")
	}

	return s, nil
}

// ParseSet builds a Set from a comma separated list, e.g. "USD,EUR,GBP".
func ParseSet(list string) (Set, error) {
	var codes []string

	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}

	return NewSet(codes...)
}

// MustNewSet is like NewSet but panics on invalid input.
func MustNewSet(codes ...string) Set {
	s, err := NewSet(codes...)
	if err != nil {
		panic(err)
	}

	return s
}

// Default holds the currencies supported when nothing else is configured.
var Default = MustNewSet(USD, EUR, GBP)

// IsSupported returns true if the currency belongs to the set.
func (s Set) IsSupported(currency string) bool {
	_, ok := s.codes[currency]
	return ok
}

// Codes returns the currency codes in configuration order.
func (s Set) Codes() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)

	return out
}

// String implements fmt.Stringer.
func (s Set) String() string {
	return strings.Join(s.ordered, ",")
}

// IsSupportedCurrency returns true if the currency is in the Default set.
func IsSupportedCurrency(currency string) bool {
	return Default.IsSupported(currency)
}

// Validator returns a validator.Func accepting only currencies of the set.
func (s Set) Validator() validator.Func {
	return func(fl validator.FieldLevel) bool {
		if c, ok := fl.Field().Interface().(string); ok {
			return s.IsSupported(c)
		}
		return false
	}
}

// ValidCurrency validates whether the currency is in the Default set.
var ValidCurrency = Default.Validator()

// Format renders an amount of minor units as a major unit decimal string, e.g. 12345 -> "123.45".
func Format(amount int64) string {
	return decimal.New(amount, -minorUnitExponent).StringFixed(minorUnitExponent)
}

func isCode(c string) bool {
	if len(c) != 3 {
		return false
	}

	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}

	return true
}
