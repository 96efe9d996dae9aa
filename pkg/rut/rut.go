// Package rut validates Chilean national identifiers (RUT).
//
// A RUT is a 7–8 digit body plus a modulo-11 check digit, conventionally
// written with thousands separators and a dash: "12.345.678-9". The check
// digit may be 0–9 or K.
package rut

import (
	"regexp"
	"strings"
)

var pattern = regexp.MustCompile(`^\d{1,2}\.?\d{3}\.?\d{3}-?[\dkK]$`)

// ValidFormat reports whether s matches the accepted RUT shape,
// without verifying the check digit.
func ValidFormat(s string) bool {
	return pattern.MatchString(s)
}

// Valid reports whether s is a well-formed RUT with a correct
// modulo-11 check digit.
func Valid(s string) bool {
	if !pattern.MatchString(s) {
		return false
	}
	body, dv := split(s)
	return checkDigit(body) == dv
}

// Normalize strips separators and upper-cases the check digit, for use
// as a canonical comparison key. The input is not validated.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(s)
}

func split(s string) (body string, dv byte) {
	n := Normalize(s)
	return n[:len(n)-1], n[len(n)-1]
}

// checkDigit computes the modulo-11 check digit for a digit-only body,
// walking right to left with the cyclic 2..7 factor sequence.
func checkDigit(body string) byte {
	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}
