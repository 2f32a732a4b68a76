package jwe

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/secureclaims/go-jwe-middleware/jwa"
)

// Registered header parameter names.
const (
	HeaderAlgorithm   = "alg"
	HeaderEncryption  = "enc"
	HeaderType        = "typ"
	HeaderContentType = "cty"
	HeaderKeyID       = "kid"
	HeaderCompression = "zip"
	HeaderCritical    = "crit"
)

// Parameter is a header member that is not one of the registered names the
// engine interprets. Value holds the member's JSON encoding.
type Parameter struct {
	Name  string
	Value json.RawMessage
}

// Header is the protected header of a token.
//
// A Header is a plain value: build it completely, then pass it to
// Engine.Encrypt. Extension parameters keep their order.
type Header struct {
	Algorithm           jwa.KeyAlgorithm
	EncryptionAlgorithm jwa.ContentEncryption
	Type                string
	ContentType         string
	KeyID               string
	Extensions          []Parameter
}

// Extension returns the raw JSON value of the named extension parameter.
func (h Header) Extension(name string) (json.RawMessage, bool) {
	for _, p := range h.Extensions {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// WithExtension returns a copy of h with the extension parameter name set to
// the JSON encoding of value.
func (h Header) WithExtension(name string, value any) (Header, error) {
	raw, err := marshalNoEscape(value)
	if err != nil {
		return Header{}, invalidHeader(fmt.Sprintf("extension %q", name), err)
	}

	exts := make([]Parameter, 0, len(h.Extensions)+1)
	replaced := false
	for _, p := range h.Extensions {
		if p.Name == name {
			p = Parameter{Name: name, Value: raw}
			replaced = true
		}
		exts = append(exts, p)
	}
	if !replaced {
		exts = append(exts, Parameter{Name: name, Value: raw})
	}

	h.Extensions = exts
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Encode returns the base64url (unpadded) encoding of the header JSON.
// These bytes are the protected header segment and the additional
// authenticated data of the token.
func (h Header) Encode() ([]byte, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(name string, value []byte) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		// Names are validated strings; marshalling cannot fail.
		quoted, _ := marshalNoEscape(name)
		buf.Write(quoted)
		buf.WriteByte(':')
		buf.Write(value)
	}
	writeString := func(name, value string) {
		if value == "" {
			return
		}
		quoted, _ := marshalNoEscape(value)
		write(name, quoted)
	}

	writeString(HeaderAlgorithm, h.Algorithm.String())
	writeString(HeaderEncryption, h.EncryptionAlgorithm.String())
	writeString(HeaderType, h.Type)
	writeString(HeaderContentType, h.ContentType)
	writeString(HeaderKeyID, h.KeyID)
	for _, p := range h.Extensions {
		var compact bytes.Buffer
		if err := json.Compact(&compact, p.Value); err != nil {
			return nil, invalidHeader(fmt.Sprintf("extension %q", p.Name), err)
		}
		write(p.Name, compact.Bytes())
	}
	buf.WriteByte('}')

	out := make([]byte, base64.RawURLEncoding.EncodedLen(buf.Len()))
	base64.RawURLEncoding.Encode(out, buf.Bytes())
	return out, nil
}

func (h Header) validate() error {
	if h.Algorithm == "" {
		return invalidHeader(`missing "alg"`, nil)
	}
	if h.EncryptionAlgorithm == "" {
		return invalidHeader(`missing "enc"`, nil)
	}

	seen := make(map[string]bool, len(h.Extensions))
	for _, p := range h.Extensions {
		switch {
		case p.Name == "":
			return invalidHeader("extension with empty name", nil)
		case isRegistered(p.Name):
			return invalidHeader(fmt.Sprintf("extension %q collides with a registered parameter", p.Name), nil)
		case p.Name == HeaderCompression || p.Name == HeaderCritical:
			return invalidHeader(fmt.Sprintf("%q is not supported", p.Name), nil)
		case seen[p.Name]:
			return invalidHeader(fmt.Sprintf("duplicate extension %q", p.Name), nil)
		case !json.Valid(p.Value):
			return invalidHeader(fmt.Sprintf("extension %q is not valid JSON", p.Name), nil)
		}
		seen[p.Name] = true
	}
	return nil
}

// DecodeHeader parses a protected header segment. It returns the parsed
// header together with a copy of encoded, which is what must be used as
// additional authenticated data.
func DecodeHeader(encoded []byte) (Header, []byte, error) {
	raw, err := decodeSegment(string(encoded))
	if err != nil {
		return Header{}, nil, invalidHeader("bad base64url", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return Header{}, nil, invalidHeader("not JSON", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Header{}, nil, invalidHeader("not a JSON object", nil)
	}

	var h Header
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Header{}, nil, invalidHeader("not JSON", err)
		}
		name, _ := tok.(string)
		if seen[name] {
			return Header{}, nil, invalidHeader(fmt.Sprintf("duplicate member %q", name), nil)
		}
		seen[name] = true

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return Header{}, nil, invalidHeader("not JSON", err)
		}

		if err := h.set(name, value); err != nil {
			return Header{}, nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return Header{}, nil, invalidHeader("not JSON", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Header{}, nil, invalidHeader("unexpected data after header object", nil)
	}

	if h.Algorithm == "" {
		return Header{}, nil, invalidHeader(`missing "alg"`, nil)
	}
	if h.EncryptionAlgorithm == "" {
		return Header{}, nil, invalidHeader(`missing "enc"`, nil)
	}

	return h, append([]byte(nil), encoded...), nil
}

func (h *Header) set(name string, value json.RawMessage) error {
	if !isRegistered(name) {
		switch name {
		case HeaderCompression:
			return invalidHeader(`compression ("zip") is not supported`, nil)
		case HeaderCritical:
			return invalidHeader(`critical extensions ("crit") are not supported`, nil)
		}
		h.Extensions = append(h.Extensions, Parameter{Name: name, Value: value})
		return nil
	}

	s, err := stringMember(value)
	if err != nil {
		return invalidHeader(fmt.Sprintf("member %q", name), err)
	}
	switch name {
	case HeaderAlgorithm:
		h.Algorithm = jwa.KeyAlgorithm(s)
	case HeaderEncryption:
		h.EncryptionAlgorithm = jwa.ContentEncryption(s)
	case HeaderType:
		h.Type = s
	case HeaderContentType:
		h.ContentType = s
	case HeaderKeyID:
		h.KeyID = s
	}
	return nil
}

func isRegistered(name string) bool {
	switch name {
	case HeaderAlgorithm, HeaderEncryption, HeaderType, HeaderContentType, HeaderKeyID:
		return true
	}
	return false
}

func stringMember(value json.RawMessage) (string, error) {
	if len(value) == 0 || value[0] != '"' {
		return "", errors.New("must be a string")
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", err
	}
	return s, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
