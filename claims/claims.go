// Package claims provides the claims value carried inside an encrypted token
// and the codecs that turn it into the opaque payload bytes the JWE engine
// protects.
//
// A Claims value is immutable and keeps its members in insertion order, so the
// serialized form is stable for a given value and member order survives a
// parse/serialize round trip.
package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrDuplicateClaim is returned when the same claim name appears twice.
	ErrDuplicateClaim = errors.New("duplicate claim name")

	// ErrEmptyName is returned for a claim with an empty name.
	ErrEmptyName = errors.New("claim name cannot be empty")
)

// Claim is a single named claim.
type Claim struct {
	Name  string
	Value any
}

// Claims is an ordered, immutable mapping of claim names to values.
// The zero value is an empty set of claims.
type Claims struct {
	entries []Claim
	index   map[string]int
}

// New assembles a Claims value from entries, in order.
func New(entries ...Claim) (Claims, error) {
	c := Claims{
		entries: make([]Claim, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return Claims{}, ErrEmptyName
		}
		if _, ok := c.index[e.Name]; ok {
			return Claims{}, fmt.Errorf("%w: %q", ErrDuplicateClaim, e.Name)
		}
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Len returns the number of claims.
func (c Claims) Len() int { return len(c.entries) }

// Names returns the claim names in order.
func (c Claims) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the claims in order.
func (c Claims) Entries() []Claim {
	return append([]Claim(nil), c.entries...)
}

// Get returns the value of the named claim.
func (c Claims) Get(name string) (any, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Value, true
}

// With returns a copy of c with name set to value. An existing claim keeps
// its position; a new claim is appended.
func (c Claims) With(name string, value any) (Claims, error) {
	if name == "" {
		return Claims{}, ErrEmptyName
	}
	entries := c.Entries()
	if i, ok := c.index[name]; ok {
		entries[i].Value = value
	} else {
		entries = append(entries, Claim{Name: name, Value: value})
	}
	return New(entries...)
}

// MarshalJSON encodes the claims as a JSON object in member order.
// HTML characters are not escaped.
func (c Claims) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(&buf, e.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeValue(&buf, e.Value); err != nil {
			return nil, fmt.Errorf("claim %q: %w", e.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping member order. Numbers are
// decoded as json.Number. Duplicate member names are rejected.
func (c *Claims) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("claims must be a JSON object")
	}

	var entries []Claim
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("claim %q: %w", name, err)
		}
		entries = append(entries, Claim{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after claims object")
	}

	parsed, err := New(entries...)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
