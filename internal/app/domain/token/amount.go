// Package token models fungible-token quantities. On the wire all amounts
// are integers in the token's smallest unit; conversion to and from human
// decimal form happens only at the boundary.
package token

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimals is the number of fractional digits the token carries.
const Decimals = 18

var unitsPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// Amount is a non-negative token quantity in smallest units.
type Amount struct {
	units *big.Int
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{units: new(big.Int)}
}

// FromUnits wraps a smallest-unit integer. Negative or nil values are
// rejected, matching the ledger's accounting domain.
func FromUnits(units *big.Int) (Amount, error) {
	if units == nil {
		return Amount{}, fmt.Errorf("nil amount")
	}
	if units.Sign() < 0 {
		return Amount{}, fmt.Errorf("amount must be non-negative")
	}
	return Amount{units: new(big.Int).Set(units)}, nil
}

// Parse converts a human decimal string ("12.5") into an Amount. The value
// must be exact: more than Decimals fractional digits is an error, not a
// rounding.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return Amount{}, fmt.Errorf("amount must be non-negative")
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > Decimals {
		return Amount{}, fmt.Errorf("amount %q has more than %d fractional digits", s, Decimals)
	}

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	whole.Mul(whole, unitsPerToken)

	if fracPart != "" {
		frac, ok := new(big.Int).SetString(fracPart, 10)
		if !ok {
			return Amount{}, fmt.Errorf("invalid amount %q", s)
		}
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(Decimals-len(fracPart))), nil)
		whole.Add(whole, frac.Mul(frac, scale))
	}

	return Amount{units: whole}, nil
}

// MustParse is Parse for trusted literals; it panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Units returns a copy of the smallest-unit integer.
func (a Amount) Units() *big.Int {
	if a.units == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.units)
}

// UnitsString returns the smallest-unit integer as a decimal string, the form
// contract call parameters use.
func (a Amount) UnitsString() string {
	if a.units == nil {
		return "0"
	}
	return a.units.String()
}

// String renders the amount as a human decimal with trailing zeros trimmed.
func (a Amount) String() string {
	units := a.Units()
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(units, unitsPerToken, frac)

	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := frac.String()
	fracStr = strings.Repeat("0", Decimals-len(fracStr)) + fracStr
	return whole.String() + "." + strings.TrimRight(fracStr, "0")
}

// Cmp compares two amounts: -1 if a < b, 0 if equal, 1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.Units().Cmp(b.Units())
}

// Sign returns 0 for zero amounts and 1 otherwise.
func (a Amount) Sign() int {
	if a.units == nil {
		return 0
	}
	return a.units.Sign()
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{units: new(big.Int).Add(a.Units(), b.Units())}
}

// MarshalJSON renders the amount as a human decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a human decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
