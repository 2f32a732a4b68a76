/*
Package jwe implements JSON Web Encryption (RFC 7516) in compact
serialization for a single recipient.

An Engine is built with an explicit allow-list of key management and content
encryption algorithms:

	engine, err := jwe.New(
	    jwe.WithKeyAlgorithms(jwa.RSA_OAEP_256),
	    jwe.WithContentEncryptions(jwa.A256GCM),
	)

	token, err := engine.Encrypt(jwe.Header{
	    Algorithm:           jwa.RSA_OAEP_256,
	    EncryptionAlgorithm: jwa.A256GCM,
	    KeyID:               "2",
	}, payload, &privateKey.PublicKey)

	payload, err := engine.Decrypt(token, privateKey)

Decrypt checks the header against the allow-list before any key is used.
After that point every failure that depends on the token contents (a wrapped
key that does not unwrap, a bad tag, bad padding) is reported as
ErrAuthenticationFailed with the same message.

The protected header segment is used as additional authenticated data
exactly as it appears in the token. A parsed Header is never re-encoded for
that purpose.

# Errors

Every error returned by an Engine matches one of ErrMalformedToken,
ErrUnsupportedAlgorithm, ErrKeyEncryption, ErrAuthenticationFailed or
ErrClaimsParse with errors.Is, and is an *Error carrying a machine-readable
Code.
*/
package jwe
