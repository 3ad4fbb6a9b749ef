package encoder

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Code page 852 has no comma-below letters; print the cedilla forms instead.
var commaBelow = strings.NewReplacer(
	"ș", "ş", "Ș", "Ş",
	"ț", "ţ", "Ț", "Ţ",
)

// toCodePage transcodes UTF-8 text to code page 852. Runes the code page
// cannot represent print as '?'.
func toCodePage(s string) []byte {
	s = commaBelow.Replace(s)
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.CodePage852.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// fromCodePage decodes code page 852 bytes to UTF-8
func fromCodePage(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteRune(charmap.CodePage852.DecodeByte(c))
	}
	return sb.String()
}
