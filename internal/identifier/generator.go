// Package identifier generates and validates the human-readable codes the
// POS admin hands out: business codes, business IDs, staff IDs, property
// codes and connection codes. Generation is pure string work over
// crypto/rand randomness and does no I/O; uniqueness is the registry's job.
package identifier

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const base36 = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var positionCodes = map[string]string{
	"owner":     "OW",
	"manager":   "MG",
	"employee":  "ST",
	"server":    "SV",
	"cashier":   "CA",
	"kitchen":   "KT",
	"host":      "HO",
	"bartender": "BT",
	"chef":      "CH",
	"admin":     "AD",
}

var businessTypeCodes = map[string]string{
	"restaurant": "RES",
	"cafe":       "CAF",
	"bar":        "BAR",
	"hotel":      "HTL",
	"retail":     "RTL",
	"food-truck": "FTR",
	"catering":   "CAT",
}

// BusinessCode derives a code of the form [A-Z]{3}[0-9]{4} from a company
// name: a 3-letter prefix (padded with X) plus the last four digits of a
// millisecond timestamp. Collisions are possible.
func BusinessCode(name string) string {
	return letterPrefix(name, 3) + lastDigits(time.Now().UnixMilli(), 4)
}

// BusinessID builds the globally-scoped public identifier for a business
// from its business code.
func BusinessID(code string) string {
	return "BIZ" + code + randomBase36(4) + lastDigits(time.Now().UnixMilli(), 3)
}

// StaffID derives a staff identifier from a display name and position:
// two initials, a two-letter position code (ST for unknown positions) and a
// zero-padded 4-digit random number.
func StaffID(fullName, position string) string {
	pos, ok := positionCodes[strings.ToLower(strings.TrimSpace(position))]
	if !ok {
		pos = "ST"
	}
	return initials(fullName) + pos + fmt.Sprintf("%04d", randomInt(10000))
}

// PropertyCode derives a property identifier from the property name and the
// owning business's type: 3-letter name prefix, 3-letter type code (GEN for
// unknown types) and the last three digits of a millisecond timestamp.
func PropertyCode(name, businessType string) string {
	typeCode, ok := businessTypeCodes[strings.ToLower(strings.TrimSpace(businessType))]
	if !ok {
		typeCode = "GEN"
	}
	return letterPrefix(name, 3) + typeCode + lastDigits(time.Now().UnixMilli(), 3)
}

// ConnectionCode generates the code staff enter to self-associate with a
// property during registration.
func ConnectionCode() string {
	return randomBase36(6)
}

// letterPrefix takes the first n A-Z characters of name (uppercased,
// everything else stripped), right-padded with X when the name is too short.
func letterPrefix(name string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == n {
				break
			}
		}
	}
	for b.Len() < n {
		b.WriteByte('X')
	}
	return b.String()
}

// initials returns the first letter of the first and last word of a name,
// padded with X when the name has fewer than two usable letters.
func initials(fullName string) string {
	words := strings.Fields(strings.ToUpper(fullName))
	letters := make([]string, 0, 2)
	for _, w := range words {
		for _, r := range w {
			if r >= 'A' && r <= 'Z' {
				letters = append(letters, string(r))
				break
			}
		}
	}
	switch len(letters) {
	case 0:
		return "XX"
	case 1:
		// Single word: use its first two letters when available.
		word := words[0]
		if len(word) >= 2 && word[1] >= 'A' && word[1] <= 'Z' {
			return letters[0] + string(word[1])
		}
		return letters[0] + "X"
	default:
		return letters[0] + letters[len(letters)-1]
	}
}

func lastDigits(v int64, n int) string {
	s := fmt.Sprintf("%d", v)
	if len(s) < n {
		return fmt.Sprintf("%0*d", n, v)
	}
	return s[len(s)-n:]
}

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[randomInt(len(base36))]
	}
	return string(b)
}

// RandomDigits returns n random decimal digits, used by the registry to
// rewrite code suffixes on collision.
func RandomDigits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + randomInt(10)))
	}
	return b.String()
}

func randomInt(max int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to a timestamp-derived value rather than panicking.
		return int(time.Now().UnixNano() % int64(max))
	}
	return int(v.Int64())
}
