package chains

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ToBaseUnits converts a display amount to raw base units. The amount is
// scaled from its shortest decimal representation, so 0.1 becomes exactly
// 10^(decimals-1); digits past the asset's precision are rounded half up.
func ToBaseUnits(amount float64, decimals uint8) (*big.Int, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: %v is negative", ErrInvalidAmount, amount)
	}

	formatted := strconv.FormatFloat(amount, 'f', -1, 64)
	whole, frac, _ := strings.Cut(formatted, ".")

	roundUp := false
	if len(frac) > int(decimals) {
		roundUp = frac[decimals] >= '5'
		frac = frac[:decimals]
	} else {
		frac += strings.Repeat("0", int(decimals)-len(frac))
	}

	raw, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("%w: cannot scale %s", ErrInvalidAmount, formatted)
	}
	if roundUp {
		raw.Add(raw, big.NewInt(1))
	}
	return raw, nil
}

// ToBaseUnitsUint64 is ToBaseUnits for chains whose amounts are uint64
func ToBaseUnitsUint64(amount float64, decimals uint8) (uint64, error) {
	raw, err := ToBaseUnits(amount, decimals)
	if err != nil {
		return 0, err
	}
	if !raw.IsUint64() {
		return 0, fmt.Errorf("%w: %v overflows uint64 at %d decimals", ErrInvalidAmount, amount, decimals)
	}
	return raw.Uint64(), nil
}

// FromBaseUnits converts raw base units to a display amount
func FromBaseUnits(raw *big.Int, decimals uint8) float64 {
	if raw == nil {
		return 0
	}
	value := new(big.Float).SetInt(raw)
	value.Quo(value, new(big.Float).SetInt(pow10(decimals)))
	f, _ := value.Float64()
	return f
}

// FromBaseUnitsUint64 is FromBaseUnits for uint64 amounts
func FromBaseUnitsUint64(raw uint64, decimals uint8) float64 {
	return FromBaseUnits(new(big.Int).SetUint64(raw), decimals)
}

// FormatBaseUnits renders raw base units as an exact decimal string
func FormatBaseUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	negative := raw.Sign() < 0
	digits := new(big.Int).Abs(raw).String()
	if decimals > 0 {
		if len(digits) <= int(decimals) {
			digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
		}
		point := len(digits) - int(decimals)
		digits = strings.TrimRight(digits[:point]+"."+digits[point:], "0")
		digits = strings.TrimSuffix(digits, ".")
	}
	if negative {
		return "-" + digits
	}
	return digits
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
