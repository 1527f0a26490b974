// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

var romanValues = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50,
	'C': 100, 'D': 500, 'M': 1000,
}

// RomanToArabic converts a Roman numeral to an integer using subtractive
// notation: scanning left to right, a symbol smaller than its successor is
// subtracted, otherwise added. Case is ignored. It returns false for empty
// input or any non-numeral character.
func RomanToArabic(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	result := 0
	for i := 0; i < len(s); i++ {
		val, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && romanValues[s[i+1]] > val {
			result -= val
		} else {
			result += val
		}
	}
	return result, true
}

// ArabicToRoman converts a positive integer to its canonical Roman numeral.
// Non-positive input yields the empty string.
func ArabicToRoman(num int) string {
	values := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}

	var result strings.Builder
	for i := 0; i < len(values); i++ {
		for num >= values[i] {
			num -= values[i]
			result.WriteString(symbols[i])
		}
	}
	return result.String()
}

// canonicalRoman reports whether s is a well-formed numeral, so that words
// made of numeral letters ("mix", "did") are not converted.
func canonicalRoman(s string) (int, bool) {
	n, ok := RomanToArabic(s)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, ArabicToRoman(n) == strings.ToUpper(s)
}

// romanSuffixRe finds the trailing identifier of a normalized ID.
var romanSuffixRe = regexp.MustCompile(`^([a-z]+)-([ivxlcdm]+)$`)

// ContainsRoman reports whether a normalized ID ends in a Roman numeral
// identifier, as in "table-iv".
func ContainsRoman(normalizedID string) bool {
	_, ok := ArabicAlias(normalizedID)
	return ok
}

// ArabicAlias converts the Roman identifier of a normalized ID to Arabic
// ("table-iv" becomes "table-4"). It returns false when the ID has no Roman
// identifier.
func ArabicAlias(normalizedID string) (string, bool) {
	m := romanSuffixRe.FindStringSubmatch(normalizedID)
	if m == nil {
		return "", false
	}
	n, ok := canonicalRoman(m[2])
	if !ok {
		return "", false
	}
	return m[1] + "-" + strconv.Itoa(n), true
}
