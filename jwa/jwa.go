// Package jwa defines the JSON Web Algorithms identifiers understood by the
// JWE engine: key management algorithms carried in the "alg" header parameter
// and content encryption algorithms carried in the "enc" header parameter.
package jwa

import "fmt"

// KeyAlgorithm identifies how the content encryption key is protected.
type KeyAlgorithm string

// ContentEncryption identifies the authenticated cipher protecting the payload.
type ContentEncryption string

// Key management algorithms.
const (
	RSA_OAEP     = KeyAlgorithm("RSA-OAEP")     // RSAES OAEP using SHA-1 and MGF1 with SHA-1
	RSA_OAEP_256 = KeyAlgorithm("RSA-OAEP-256") // RSAES OAEP using SHA-256 and MGF1 with SHA-256
	RSA_OAEP_384 = KeyAlgorithm("RSA-OAEP-384") // RSAES OAEP using SHA-384 and MGF1 with SHA-384
	RSA_OAEP_512 = KeyAlgorithm("RSA-OAEP-512") // RSAES OAEP using SHA-512 and MGF1 with SHA-512
	DIRECT       = KeyAlgorithm("dir")          // Direct use of a shared symmetric key as the CEK
)

// Content encryption algorithms.
const (
	A128GCM       = ContentEncryption("A128GCM")       // AES GCM using 128-bit key
	A192GCM       = ContentEncryption("A192GCM")       // AES GCM using 192-bit key
	A256GCM       = ContentEncryption("A256GCM")       // AES GCM using 256-bit key
	A128CBC_HS256 = ContentEncryption("A128CBC-HS256") // AES_128_CBC_HMAC_SHA_256
	A192CBC_HS384 = ContentEncryption("A192CBC-HS384") // AES_192_CBC_HMAC_SHA_384
	A256CBC_HS512 = ContentEncryption("A256CBC-HS512") // AES_256_CBC_HMAC_SHA_512
)

var keyAlgorithms = map[KeyAlgorithm]bool{
	RSA_OAEP:     true,
	RSA_OAEP_256: true,
	RSA_OAEP_384: true,
	RSA_OAEP_512: true,
	DIRECT:       true,
}

var contentKeySizes = map[ContentEncryption]int{
	A128GCM:       16,
	A192GCM:       24,
	A256GCM:       32,
	A128CBC_HS256: 32,
	A192CBC_HS384: 48,
	A256CBC_HS512: 64,
}

// String returns the header parameter value.
func (a KeyAlgorithm) String() string { return string(a) }

// IsValid reports whether a is a key management algorithm this module implements.
func (a KeyAlgorithm) IsValid() bool { return keyAlgorithms[a] }

// String returns the header parameter value.
func (e ContentEncryption) String() string { return string(e) }

// IsValid reports whether e is a content encryption algorithm this module implements.
func (e ContentEncryption) IsValid() bool {
	_, ok := contentKeySizes[e]
	return ok
}

// KeySize returns the content encryption key length in bytes, or 0 for an
// unknown algorithm.
func (e ContentEncryption) KeySize() int {
	return contentKeySizes[e]
}

// ParseKeyAlgorithm converts a header or configuration value into a KeyAlgorithm.
func ParseKeyAlgorithm(s string) (KeyAlgorithm, error) {
	a := KeyAlgorithm(s)
	if !a.IsValid() {
		return "", fmt.Errorf("unknown key management algorithm %q", s)
	}
	return a, nil
}

// ParseContentEncryption converts a header or configuration value into a
// ContentEncryption.
func ParseContentEncryption(s string) (ContentEncryption, error) {
	e := ContentEncryption(s)
	if !e.IsValid() {
		return "", fmt.Errorf("unknown content encryption algorithm %q", s)
	}
	return e, nil
}

// KeyAlgorithms lists every implemented key management algorithm.
func KeyAlgorithms() []KeyAlgorithm {
	return []KeyAlgorithm{RSA_OAEP, RSA_OAEP_256, RSA_OAEP_384, RSA_OAEP_512, DIRECT}
}

// ContentEncryptions lists every implemented content encryption algorithm.
func ContentEncryptions() []ContentEncryption {
	return []ContentEncryption{A128GCM, A192GCM, A256GCM, A128CBC_HS256, A192CBC_HS384, A256CBC_HS512}
}
