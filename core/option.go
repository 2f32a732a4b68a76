package core

import (
	"errors"
)

// Option is a function that configures the Core.
// Options return errors to enable validation during construction.
type Option func(*Core) error

// New creates a new Core instance with the provided options.
//
// The Core must be configured with a Decrypter using WithDecrypter.
//
// Example:
//
//	c, err := core.New(
//	    core.WithDecrypter(d),
//	    core.WithCredentialsOptional(true),
//	    core.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Core, error) {
	c := &Core{
		credentialsOptional: false,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate ensures all required fields are set.
func (c *Core) validate() error {
	if c.decrypter == nil {
		return NewTokenError(
			ErrorCodeDecrypterNotSet,
			"decrypter is required but not set (use WithDecrypter option)",
			nil,
		)
	}
	return nil
}

// WithDecrypter sets the decrypter for the Core. This is a required option.
func WithDecrypter(d Decrypter) Option {
	return func(c *Core) error {
		if d == nil {
			return errors.New("decrypter cannot be nil")
		}
		c.decrypter = d
		return nil
	}
}

// WithCredentialsOptional configures whether credentials are optional.
//
// When set to true, requests without tokens proceed without decryption and
// the claims will be nil in the context. When set to false (default),
// requests without tokens return ErrTokenMissing.
func WithCredentialsOptional(optional bool) Option {
	return func(c *Core) error {
		c.credentialsOptional = optional
		return nil
	}
}

// WithLogger sets an optional logger for the Core.
//
// When configured, the Core logs decryption success or failure along with
// timing information. *slog.Logger satisfies Logger.
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
