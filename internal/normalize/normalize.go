// Package normalize coerces loosely typed values emitted by the statement
// parsing agent into finite numbers.
//
// Both functions are total: every input maps to a finite result and no error
// is ever returned. Malformed or sentinel input ("NA", "", nil) becomes 0.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// maxMagnitude bounds the decimal exponent of values that are converted.
// Anything larger or smaller is far outside float64 and int64 range, and
// expanding it would allocate an integer with that many digits.
const maxMagnitude = 400

const (
	inRange = iota
	tooLarge
	tooSmall
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// ToDecimal converts v into a finite float64.
//
// Numbers are returned as-is (NaN and ±Inf become 0). Anything else is
// rendered as text, stripped of commas and surrounding whitespace, and parsed
// as a decimal number; unparseable text yields 0.
func ToDecimal(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case *float64:
		if n == nil {
			return 0
		}
		return finite(*n)
	case *string:
		if n == nil {
			return 0
		}
		return parseDecimal(*n)
	case decimal.Decimal:
		return toFloat(n)
	case json.Number:
		return parseDecimal(n.String())
	case string:
		return parseDecimal(n)
	}
	return parseDecimal(fmt.Sprint(v))
}

// ToInteger converts v into an int64 under the same rules as ToDecimal.
//
// Numeric input is floored; textual input is parsed and truncated toward
// zero. Values outside the int64 range saturate.
func ToInteger(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return saturate(fromUint64(uint64(n)))
	case uint32:
		return int64(n)
	case uint64:
		return saturate(fromUint64(n))
	case float64:
		return floorFloat(n)
	case float32:
		return floorFloat(float64(n))
	case *float64:
		if n == nil {
			return 0
		}
		return floorFloat(*n)
	case *string:
		if n == nil {
			return 0
		}
		return parseInteger(*n)
	case decimal.Decimal:
		switch scale(n) {
		case tooLarge:
			return saturateSign(n)
		case tooSmall:
			if n.Sign() < 0 {
				return -1
			}
			return 0
		}
		return saturate(n.Floor())
	case json.Number:
		return parseInteger(n.String())
	case string:
		return parseInteger(n)
	}
	return parseInteger(fmt.Sprint(v))
}

// clean strips thousands separators and surrounding whitespace.
func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}

func parseDecimal(s string) float64 {
	d, ok := parse(s)
	if !ok {
		return 0
	}
	return toFloat(d)
}

func parseInteger(s string) int64 {
	d, ok := parse(s)
	if !ok {
		return 0
	}
	switch scale(d) {
	case tooLarge:
		return saturateSign(d)
	case tooSmall:
		return 0
	}
	return saturate(d.Truncate(0))
}

func toFloat(d decimal.Decimal) float64 {
	if scale(d) != inRange {
		return 0
	}
	return finite(d.InexactFloat64())
}

// scale classifies |d| against 10^±maxMagnitude using only the exponent and
// the coefficient length.
func scale(d decimal.Decimal) int {
	if d.Sign() == 0 {
		return inRange
	}
	m := int64(d.Exponent()) + int64(d.NumDigits())
	switch {
	case m > maxMagnitude:
		return tooLarge
	case m < -maxMagnitude:
		return tooSmall
	}
	return inRange
}

func saturateSign(d decimal.Decimal) int64 {
	if d.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

func parse(s string) (decimal.Decimal, bool) {
	s = clean(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func floorFloat(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return saturate(decimal.NewFromFloat(math.Floor(f)))
}

func fromUint64(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func saturate(d decimal.Decimal) int64 {
	switch {
	case d.GreaterThan(maxInt64):
		return math.MaxInt64
	case d.LessThan(minInt64):
		return math.MinInt64
	}
	return d.IntPart()
}
