package phone

import "strings"

// countryPrefix is the international prefix for the supported market,
// stored without the leading plus sign.
const countryPrefix = "62"

// Normalize canonicalizes a raw phone number to international format without
// the plus sign. All non-digit characters are stripped first.
//
//	08123456789  -> 628123456789
//	8123456789   -> 628123456789
//	628123456789 -> 628123456789
//
// Normalize never fails; malformed input produces a best-effort digit string.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "0"):
		return countryPrefix + digits[1:]
	case !strings.HasPrefix(digits, countryPrefix):
		return countryPrefix + digits
	default:
		return digits
	}
}

// FormatForDisplay converts a canonical number back to the local display
// format, grouping the first eight digits in fours (628123456789 ->
// 0812-3456-789). Numbers shorter than ten digits come back unformatted.
func FormatForDisplay(canonical string) string {
	local := canonical
	if strings.HasPrefix(local, countryPrefix) {
		local = "0" + local[len(countryPrefix):]
	}

	if len(local) >= 10 {
		return local[0:4] + "-" + local[4:8] + "-" + local[8:]
	}

	return local
}
