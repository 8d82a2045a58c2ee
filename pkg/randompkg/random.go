// Package randompkg provides functionality for generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/go-petr/pet-wallet/pkg/currencypkg"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Int64Between generates a random integer in [min, max].
func Int64Between(min, max int64) int64 {
	return min + Intn(int(max-min+1))
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// UserID generates a random wallet user identifier.
func UserID() string {
	return String(8)
}

// Amount generates a random amount of minor units between min and max.
func Amount(min, max int64) int64 {
	return Int64Between(min, max)
}

// Currency generates a random currency code from the default set.
func Currency() string {
	currencies := currencypkg.Default.Codes()
	return currencies[Intn(len(currencies))]
}
