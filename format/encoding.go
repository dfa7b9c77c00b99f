package format

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/numtide/isorted/config"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when nothing else declares an encoding.
const DefaultEncoding = "utf-8"

// ErrInvalidData is returned by Decode when the bytes are not valid in the given encoding.
var ErrInvalidData = errors.New("invalid data for encoding")

// codingRegex matches a magic comment such as `# -*- coding: latin-1 -*-` or `# vim: set fileencoding=utf-8 :`.
var codingRegex = regexp.MustCompile(`^[ \t\v]*#.*?coding[:=][ \t]*([-_.a-zA-Z0-9]+)`)

// pythonCodecs maps Python codec names which are neither IANA names nor WHATWG labels.
// Names are normalised with normaliseEncoding before lookup.
var pythonCodecs = map[string]encoding.Encoding{
	"utf-8":      unicode.UTF8,
	"utf8":       unicode.UTF8,
	"u8":         unicode.UTF8,
	"utf":        unicode.UTF8,
	"utf-8-sig":  unicode.UTF8BOM,
	"utf-16":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16-le":  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16-be":  unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"latin-1":    charmap.ISO8859_1,
	"latin1":     charmap.ISO8859_1,
	"l1":         charmap.ISO8859_1,
	"iso8859-1":  charmap.ISO8859_1,
	"8859":       charmap.ISO8859_1,
	"cp819":      charmap.ISO8859_1,
	"iso8859-15": charmap.ISO8859_15,
	"latin-9":    charmap.ISO8859_15,
}

// DetectEncoding decides which encoding to use for a buffer, in order of preference:
// the host reported encoding, a coding declaration in a magic comment on the first or second line,
// the configured fallback, then utf-8. The result is lower-cased.
func DetectEncoding(host string, text string, fallback string) string {
	enc := host

	if enc == "" {
		enc = declaredEncoding(text)
	}

	if enc == "" {
		enc = fallback
	}

	if enc == "" {
		enc = DefaultEncoding
	}

	return strings.ToLower(enc)
}

// declaredEncoding returns the encoding declared by a magic comment on one of the first two lines.
func declaredEncoding(text string) string {
	for _, line := range firstLines(text, 2) {
		if m := codingRegex.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}

	return ""
}

func firstLines(text string, n int) []string {
	lines := make([]string, 0, n)

	for len(lines) < n && text != "" {
		line, rest, _ := strings.Cut(text, "\n")
		lines = append(lines, strings.TrimSuffix(line, "\r"))
		text = rest
	}

	return lines
}

// Codec returns the encoding for a name, accepting Python codec names as well as IANA names and WHATWG labels.
func Codec(name string) (encoding.Encoding, error) {
	normalised := normaliseEncoding(name)

	if enc, ok := pythonCodecs[normalised]; ok {
		return enc, nil
	}

	candidates := []string{normalised}

	// python's cpNNN code pages
	if digits, ok := strings.CutPrefix(normalised, "cp"); ok {
		candidates = append(candidates, "windows-"+digits, "ibm"+digits)
	}

	for _, candidate := range candidates {
		if enc, err := ianaindex.IANA.Encoding(candidate); err == nil && enc != nil {
			return enc, nil
		}

		if enc, err := htmlindex.Get(candidate); err == nil {
			return enc, nil
		}
	}

	return nil, &config.ConfigurationError{
		Name:   "encoding",
		Reason: fmt.Sprintf("unknown encoding '%s'", name),
	}
}

func normaliseEncoding(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	return strings.NewReplacer("_", "-", " ", "-").Replace(name)
}

// Encode converts text to bytes in the given encoding.
func Encode(enc encoding.Encoding, text string) ([]byte, error) {
	b, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}

	return b, nil
}

// Decode converts bytes in the given encoding to text.
// x/text decoders replace invalid input with U+FFFD; Decode rejects such input with ErrInvalidData instead.
func Decode(enc encoding.Encoding, b []byte) (string, error) {
	if (enc == unicode.UTF8 || enc == unicode.UTF8BOM) && !utf8.Valid(b) {
		return "", fmt.Errorf("failed to decode text: %w", ErrInvalidData)
	}

	text, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}

	// a replacement character is only legitimate when it round trips
	if bytes.ContainsRune(text, utf8.RuneError) {
		if again, err := enc.NewEncoder().Bytes(text); err != nil || !bytes.Equal(again, b) {
			return "", fmt.Errorf("failed to decode text: %w", ErrInvalidData)
		}
	}

	return string(text), nil
}
