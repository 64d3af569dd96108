package datatypes

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const hexDigits = "0123456789ABCDEF"

// Format renders one received chunk according to the view mode.
func Format(chunk []byte, mode ViewMode) string {
	switch mode {
	case RAW_HEX:
		return FormatHex(chunk)
	default:
		return DecodeText(chunk)
	}
}

// FormatHex renders every byte as two uppercase hex digits followed by a space.
// No grouping or wrapping is applied.
func FormatHex(chunk []byte) string {
	var b strings.Builder
	b.Grow(3 * len(chunk))
	for _, c := range chunk {
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
		b.WriteByte(' ')
	}
	return b.String()
}

// DecodeText decodes the chunk as UTF-8. Each invalid byte becomes U+FFFD;
// control characters pass through unchanged.
func DecodeText(chunk []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(chunk)
	if err != nil {
		// the UTF-8 decoder replaces instead of failing; keep a defined result anyway
		return strings.ToValidUTF8(string(chunk), "\uFFFD")
	}
	return string(out)
}
