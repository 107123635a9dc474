package checkin

import (
	"strings"
	"unicode/utf8"
)

// MinNameLength is the minimum rune count of a sanitized name.
const MinNameLength = 3

var nameStripper = strings.NewReplacer(
	"<", "", ">", "", `"`, "", "'", "", ";", "",
	"{", "", "}", "", "(", "", ")", "", "[", "", "]", "",
)

// SanitizeName strips markup-ish characters, collapses whitespace runs to a single space and trims.
func SanitizeName(raw string) string {
	return strings.Join(strings.Fields(nameStripper.Replace(raw)), " ")
}

// SanitizeNationalID keeps only the ASCII digits of a CPF.
func SanitizeNationalID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func validName(name string) bool {
	return utf8.RuneCountInString(name) >= MinNameLength
}
