package claims

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrParse is wrapped by every codec parse failure.
var ErrParse = errors.New("claims: invalid payload")

// Codec converts claims to and from the payload bytes of a token.
type Codec interface {
	Serialize(Claims) ([]byte, error)
	Parse([]byte) (Claims, error)
}

// JSONCodec carries the claims as a plain JSON object.
type JSONCodec struct{}

// Serialize implements Codec.
func (JSONCodec) Serialize(c Claims) ([]byte, error) {
	return c.MarshalJSON()
}

// Parse implements Codec.
func (JSONCodec) Parse(payload []byte) (Claims, error) {
	var c Claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	return c, nil
}

// Base64URLCodec carries the claims JSON as unpadded base64url text. Tokens
// issued by Gluu oxAuth servers frame their payload this way.
type Base64URLCodec struct{}

// Serialize implements Codec.
func (Base64URLCodec) Serialize(c Claims) ([]byte, error) {
	raw, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.RawURLEncoding.EncodedLen(len(raw)))
	base64.RawURLEncoding.Encode(out, raw)
	return out, nil
}

// Parse implements Codec.
func (Base64URLCodec) Parse(payload []byte) (Claims, error) {
	raw := make([]byte, base64.RawURLEncoding.DecodedLen(len(payload)))
	n, err := base64.RawURLEncoding.Strict().Decode(raw, payload)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	return JSONCodec{}.Parse(raw[:n])
}
