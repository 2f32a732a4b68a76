package jwe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const compactSegments = 5

// Compact is a token in compact serialization.
//
// ProtectedHeader holds the header segment exactly as transmitted (base64url
// text). The other fields hold decoded bytes.
type Compact struct {
	ProtectedHeader []byte
	EncryptedKey    []byte
	IV              []byte
	Ciphertext      []byte
	Tag             []byte
}

// Serialize joins the five segments with dots. Empty segments are kept, so
// the result always has four separators.
func (c Compact) Serialize() string {
	enc := base64.RawURLEncoding

	var sb strings.Builder
	sb.Grow(len(c.ProtectedHeader) + 4 +
		enc.EncodedLen(len(c.EncryptedKey)) +
		enc.EncodedLen(len(c.IV)) +
		enc.EncodedLen(len(c.Ciphertext)) +
		enc.EncodedLen(len(c.Tag)))

	sb.Write(c.ProtectedHeader)
	for _, seg := range [][]byte{c.EncryptedKey, c.IV, c.Ciphertext, c.Tag} {
		sb.WriteByte('.')
		sb.WriteString(enc.EncodeToString(seg))
	}
	return sb.String()
}

// ParseCompact splits a compact token into its segments and decodes them.
// Every segment must be strict, unpadded base64url.
func ParseCompact(token string) (*Compact, error) {
	// Count before splitting so a token made of dots does not allocate.
	if n := strings.Count(token, ".") + 1; n != compactSegments {
		return nil, malformed(fmt.Sprintf("expected %d segments, got %d", compactSegments, n), nil)
	}
	parts := strings.SplitN(token, ".", compactSegments)

	if parts[0] == "" {
		return nil, malformed("empty protected header", nil)
	}
	if _, err := decodeSegment(parts[0]); err != nil {
		return nil, malformed("protected header", err)
	}

	c := &Compact{ProtectedHeader: []byte(parts[0])}
	targets := []*[]byte{&c.EncryptedKey, &c.IV, &c.Ciphertext, &c.Tag}
	names := []string{"encrypted key", "initialization vector", "ciphertext", "authentication tag"}
	for i, part := range parts[1:] {
		b, err := decodeSegment(part)
		if err != nil {
			return nil, malformed(names[i], err)
		}
		*targets[i] = b
	}
	return c, nil
}

// decodeSegment decodes strict unpadded base64url. The standard decoder
// skips CR and LF, so those are rejected up front.
func decodeSegment(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, errors.New("illegal line break in base64url data")
	}
	return base64.RawURLEncoding.Strict().DecodeString(s)
}
