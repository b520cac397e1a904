package services

import "strings"

// rutFactors is the cyclic multiplier sequence of the Chilean modulo-11
// check-digit scheme, applied to body digits taken in reverse order.
var rutFactors = [6]int{2, 3, 4, 5, 6, 7}

// NormalizeRUT strips dots, hyphens and surrounding whitespace and
// upper-cases the identifier. Idempotent.
func NormalizeRUT(raw string) string {
	s := strings.ToUpper(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.TrimSpace(s)
}

// ValidateRUT reports whether raw is a well-formed RUT/RUN whose trailing
// check character matches the modulo-11 checksum of its body.
func ValidateRUT(raw string) bool {
	s := NormalizeRUT(raw)
	if len(s) < 2 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != 'K' {
			return false
		}
	}
	body, dv := s[:len(s)-1], s[len(s)-1]
	acc := 0
	for i := 0; i < len(body); i++ {
		d := body[len(body)-1-i]
		if d < '0' || d > '9' {
			// 'K' is only legal as the check character
			return false
		}
		acc += int(d-'0') * rutFactors[i%len(rutFactors)]
	}
	var want byte
	switch remainder := 11 - acc%11; remainder {
	case 11:
		want = '0'
	case 10:
		want = 'K'
	default:
		want = byte('0' + remainder)
	}
	return dv == want
}
