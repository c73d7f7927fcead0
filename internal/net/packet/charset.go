package packet

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var charset atomic.Pointer[encoding.Encoding]

func init() {
	var enc encoding.Encoding = unicode.UTF8
	charset.Store(&enc)
}

// SetCharset selects the wire encoding of packet strings by its WHATWG
// label ("utf-8", "big5", "shift_jis", ...). Call once at startup.
func SetCharset(label string) error {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return fmt.Errorf("packet charset %q: %w", label, err)
	}
	charset.Store(&enc)
	return nil
}

// Charset returns the canonical name of the current wire encoding.
func Charset() string {
	name, err := htmlindex.Name(*charset.Load())
	if err != nil {
		return "unknown"
	}
	return name
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// decodeString converts wire bytes to UTF-8. ASCII passes through.
func decodeString(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if isASCII(raw) {
		return string(raw)
	}
	decoded, err := (*charset.Load()).NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// encodeString converts UTF-8 to wire bytes. Unencodable text falls back to
// the raw UTF-8 bytes.
func encodeString(s string) []byte {
	if isASCII([]byte(s)) {
		return []byte(s)
	}
	encoded, err := (*charset.Load()).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return encoded
}
