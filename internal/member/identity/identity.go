// Package identity derives human-readable member identifiers.
//
// The derivation is deliberately lossy: two members with similar names and
// numbers will collide. Uniqueness is enforced at save time by the duplicate
// check, never here.
package identity

import (
	"strings"
	"unicode"

	id "kindred/pkg/domain"
)

const (
	nameFragmentLen    = 2
	addressFragmentLen = 2
	mobileFragmentLen  = 5

	// filler pads fragments that fall short; addresses pad with '0' so the
	// numeric slot stays numeric.
	filler        = '_'
	addressFiller = '0'
)

// Generate derives a fixed-length member id from name, address, and mobile
// fragments. Pure and deterministic; it never fails.
func Generate(name, address, mobile string) id.MemberID {
	var b strings.Builder
	b.Grow(nameFragmentLen + addressFragmentLen + mobileFragmentLen)

	b.WriteString(pad(firstLetters(name, nameFragmentLen), nameFragmentLen, filler))
	b.WriteString(pad(firstDigits(address, addressFragmentLen), addressFragmentLen, addressFiller))
	b.WriteString(pad(lastDigits(mobile, mobileFragmentLen), mobileFragmentLen, filler))

	return id.MemberID(b.String())
}

func firstLetters(s string, n int) string {
	var out []rune
	for _, r := range s {
		if unicode.IsLetter(r) {
			out = append(out, unicode.ToUpper(r))
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

func firstDigits(s string, n int) string {
	var out []rune
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, r)
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

func lastDigits(s string, n int) string {
	var digits []rune
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return string(digits)
}

func pad(s string, n int, fill rune) string {
	for len([]rune(s)) < n {
		s += string(fill)
	}
	return s
}
