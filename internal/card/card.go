// Package card generates and validates Luhn-checksummed card numbers.
// Generation takes an acceptability predicate so the caller decides what
// "available" means; this package never touches the account directory.
package card

import (
	"crypto/rand"
	"math/big"
	"strings"

	"card-ledger/internal/errors"
)

// maxAttempts bounds the sampling loop so a saturated identifier space
// surfaces as an error instead of spinning forever.
const maxAttempts = 1000

// CheckDigit computes the Luhn check digit for the given digit string.
// Appending the returned digit makes the full number pass Validate.
func CheckDigit(number string) (int, error) {
	sum := 0
	for i, r := range number {
		d := int(r - '0')
		if d < 0 || d > 9 {
			return 0, errors.NewAppErrorf(errors.InvalidInput, "card number must contain only digits, got %q", r)
		}
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				// Sum of the two decimal digits of the doubled value.
				d = d/10 + d%10
			}
		}
		sum += d
	}
	return (sum * 9) % 10, nil
}

// Validate reports whether the number's last digit is the Luhn check digit
// of the digits before it.
func Validate(number string) bool {
	if len(number) < 2 {
		return false
	}
	check, err := CheckDigit(number[:len(number)-1])
	if err != nil {
		return false
	}
	last := number[len(number)-1]
	return last >= '0' && last <= '9' && int(last-'0') == check
}

// Generate produces a card number of totalLength digits starting with
// prefix and ending in a valid Luhn check digit. Candidates are sampled
// until acceptable returns true; a nil predicate accepts everything.
// Fails with generation_exhausted after a bounded number of attempts.
func Generate(prefix string, totalLength int, acceptable func(string) bool) (string, error) {
	if totalLength < len(prefix)+1 {
		return "", errors.NewAppErrorf(errors.InvalidInput,
			"total length %d leaves no room for prefix %q and check digit", totalLength, prefix)
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return "", errors.NewAppErrorf(errors.InvalidInput, "prefix must contain only digits, got %q", r)
		}
	}
	if acceptable == nil {
		acceptable = func(string) bool { return true }
	}

	fill := totalLength - len(prefix) - 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var sb strings.Builder
		sb.WriteString(prefix)
		for i := 0; i < fill; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(10))
			if err != nil {
				return "", errors.NewAppError(errors.InternalError, "failed to read random digits").WithDetails(err.Error())
			}
			sb.WriteByte(byte('0' + n.Int64()))
		}
		partial := sb.String()

		check, err := CheckDigit(partial)
		if err != nil {
			return "", err
		}
		candidate := partial + string(byte('0'+check))
		if acceptable(candidate) {
			return candidate, nil
		}
	}
	return "", errors.ErrGenerationExhausted
}
