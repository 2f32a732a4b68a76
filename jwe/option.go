package jwe

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/secureclaims/go-jwe-middleware/claims"
	"github.com/secureclaims/go-jwe-middleware/jwa"
)

// DefaultMaxTokenSize is the largest token Decrypt accepts unless
// WithMaxTokenSize says otherwise.
const DefaultMaxTokenSize = 1 << 20

// Option is a function that configures the Engine.
// Options return errors to enable validation during construction.
type Option func(*Engine) error

// New creates an Engine. The allow-lists are required: there is no default
// set of algorithms.
//
// Example:
//
//	engine, err := jwe.New(
//	    jwe.WithKeyAlgorithms(jwa.RSA_OAEP_256),
//	    jwe.WithContentEncryptions(jwa.A128GCM, jwa.A256GCM),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		random:       rand.Reader,
		codec:        claims.JSONCodec{},
		maxTokenSize: DefaultMaxTokenSize,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if err := e.validate(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Engine) validate() error {
	if len(e.keyAlgorithms) == 0 {
		return newError(ErrInvalidConfig, ErrorCodeConfigInvalid,
			"key management algorithms are required (use WithKeyAlgorithms option)", nil)
	}
	if len(e.contentEncryptions) == 0 {
		return newError(ErrInvalidConfig, ErrorCodeConfigInvalid,
			"content encryption algorithms are required (use WithContentEncryptions option)", nil)
	}
	return nil
}

// WithKeyAlgorithms sets the key management algorithms the engine accepts.
// RSA-OAEP (SHA-1) is only accepted when listed here.
func WithKeyAlgorithms(algs ...jwa.KeyAlgorithm) Option {
	return func(e *Engine) error {
		if len(algs) == 0 {
			return errors.New("at least one key management algorithm is required")
		}
		allowed := make(map[jwa.KeyAlgorithm]bool, len(algs))
		for _, alg := range algs {
			if !alg.IsValid() {
				return fmt.Errorf("unsupported key management algorithm %q", alg)
			}
			allowed[alg] = true
		}
		e.keyAlgorithms = allowed
		return nil
	}
}

// WithContentEncryptions sets the content encryption algorithms the engine
// accepts.
func WithContentEncryptions(encs ...jwa.ContentEncryption) Option {
	return func(e *Engine) error {
		if len(encs) == 0 {
			return errors.New("at least one content encryption algorithm is required")
		}
		allowed := make(map[jwa.ContentEncryption]bool, len(encs))
		for _, enc := range encs {
			if !enc.IsValid() {
				return fmt.Errorf("unsupported content encryption algorithm %q", enc)
			}
			allowed[enc] = true
		}
		e.contentEncryptions = allowed
		return nil
	}
}

// WithRandom sets the source of CEKs, IVs and OAEP seeds.
// It must be safe for concurrent use. Default: crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) error {
		if r == nil {
			return errors.New("random source cannot be nil")
		}
		e.random = r
		return nil
	}
}

// WithClaimsCodec sets the codec used by EncryptClaims and DecryptClaims.
// Default: claims.JSONCodec.
func WithClaimsCodec(codec claims.Codec) Option {
	return func(e *Engine) error {
		if codec == nil {
			return errors.New("claims codec cannot be nil")
		}
		e.codec = codec
		return nil
	}
}

// WithLogger sets an optional logger. Decryption failures are logged at
// debug level with the stage that failed; callers only ever see
// ErrAuthenticationFailed.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

// WithMaxTokenSize bounds the length of tokens accepted for decryption.
//
// Default: 1 MiB
func WithMaxTokenSize(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return errors.New("max token size must be positive")
		}
		e.maxTokenSize = n
		return nil
	}
}
