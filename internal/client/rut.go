package client

import (
	"regexp"
	"strings"

	"github.com/gastoscl/rendiciones/internal"
)

var rutShapeRe = regexp.MustCompile(`^\d+[0-9kK]$`)

// CleanRUT strips dots, dashes and spaces and upcases the check digit:
// "12.345.678-9" -> "123456789".
func CleanRUT(rut string) string {
	var b strings.Builder
	for _, r := range rut {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteRune('K')
		}
	}
	return b.String()
}

// FormatRUT renders the canonical Chilean format: XX.XXX.XXX-X.
func FormatRUT(rut string) string {
	clean := CleanRUT(rut)
	if clean == "" {
		return ""
	}

	num := clean[:len(clean)-1]
	dv := strings.ToUpper(clean[len(clean)-1:])

	var b strings.Builder
	for i, digit := range num {
		if i > 0 && (len(num)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	return b.String() + "-" + dv
}

// computeDV applies the modulo-11 check-digit algorithm.
func computeDV(number string) string {
	factors := []int{2, 3, 4, 5, 6, 7}
	sum := 0
	for i := 0; i < len(number); i++ {
		digit := int(number[len(number)-1-i] - '0')
		sum += digit * factors[i%6]
	}

	switch remainder := 11 - (sum % 11); remainder {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return string(rune('0' + remainder))
	}
}

// ValidateRUT checks shape, length and the check digit of a Chilean RUT.
func ValidateRUT(rut string) error {
	if strings.TrimSpace(rut) == "" {
		return internal.NewValidationError("rut is required", internal.ErrCodeInvalidRUT)
	}

	clean := CleanRUT(rut)
	if len(clean) < 2 || !rutShapeRe.MatchString(clean) {
		return internal.NewValidationError("rut has invalid format", internal.ErrCodeInvalidRUT)
	}

	number := clean[:len(clean)-1]
	dv := strings.ToUpper(clean[len(clean)-1:])

	if len(number) < 7 || len(number) > 8 {
		return internal.NewValidationError("rut must have 7 or 8 digits", internal.ErrCodeInvalidRUT)
	}

	if computeDV(number) != dv {
		return internal.NewValidationError("rut check digit is invalid", internal.ErrCodeInvalidRUT)
	}

	return nil
}
