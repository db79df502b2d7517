package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Calculator computes checksums of schema sources.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content.
	// Normalization makes checksums resilient to formatting changes.
	CalculateNormalized(content []byte) string
}

// SHA256 implements checksum calculation using SHA-256.
// Normalization:
//  1. Remove XML comments (<!-- ... -->)
//  2. Collapse whitespace to single spaces, dropping it between tags
//  3. Leave quoted attribute values and CDATA sections untouched
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	normalized := c.Normalize(string(content))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

type scanState int

const (
	ssNormal scanState = iota
	ssComment
	ssQuote
	ssCDATA
)

const (
	commentOpen  = "<!--"
	commentClose = "-->"
	cdataOpen    = "<![CDATA["
	cdataClose   = "]]>"
)

// Normalize applies the normalization rules to content.
func (c SHA256) Normalize(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	state := ssNormal
	var quote byte
	var last byte
	pendingSpace := false
	i := 0

	for i < len(content) {
		switch state {
		case ssNormal:
			if strings.HasPrefix(content[i:], commentOpen) {
				state = ssComment
				i += len(commentOpen)
				continue
			}

			r, size := utf8.DecodeRuneInString(content[i:])
			if unicode.IsSpace(r) {
				pendingSpace = true
				i += size
				continue
			}

			ch := content[i]
			if pendingSpace && last != 0 && !(last == '>' && ch == '<') {
				b.WriteByte(' ')
			}
			pendingSpace = false

			if strings.HasPrefix(content[i:], cdataOpen) {
				state = ssCDATA
				b.WriteString(cdataOpen)
				i += len(cdataOpen)
				last = '['
				continue
			}
			if (ch == '"' || ch == '\'') && insideTag(content[:i]) {
				state = ssQuote
				quote = ch
			}
			b.WriteString(content[i : i+size])
			last = ch
			i += size

		case ssComment:
			if strings.HasPrefix(content[i:], commentClose) {
				state = ssNormal
				i += len(commentClose)
				continue
			}
			i++

		case ssQuote:
			ch := content[i]
			b.WriteByte(ch)
			last = ch
			i++
			if ch == quote {
				state = ssNormal
			}

		case ssCDATA:
			if strings.HasPrefix(content[i:], cdataClose) {
				b.WriteString(cdataClose)
				i += len(cdataClose)
				last = '>'
				state = ssNormal
				continue
			}
			b.WriteByte(content[i])
			i++
		}
	}

	return b.String()
}

// insideTag reports whether the text before a quote leaves us inside a tag,
// so that apostrophes in character data are not treated as quotes.
func insideTag(before string) bool {
	return strings.LastIndexByte(before, '<') > strings.LastIndexByte(before, '>')
}
