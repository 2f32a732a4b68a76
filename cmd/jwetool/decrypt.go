package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/secureclaims/go-jwe-middleware/decrypter"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

type decryptOptions struct {
	*rootOptions
	engineFlags
	checkClaims        bool
	issuer             string
	audiences          []string
	clockSkew          time.Duration
	expirationRequired bool
}

func newDecryptCommand(root *rootOptions) *cobra.Command {
	opts := &decryptOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "decrypt [token]",
		Short: "Decrypt a token and print its payload",
		Long: `Decrypt a compact token given as an argument (or on stdin) with the key
its header selects. With --claims the payload is parsed as claims and the
registered claims are checked before it is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: opts.run,
	}

	opts.engineFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.checkClaims, "claims", false, "Parse and check the payload as claims.")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "", "Expected iss claim (with --claims).")
	cmd.Flags().StringSliceVar(&opts.audiences, "audience", nil, "Accepted aud values (with --claims).")
	cmd.Flags().DurationVar(&opts.clockSkew, "clock-skew", 0, "Allowed clock skew (with --claims).")
	cmd.Flags().BoolVar(&opts.expirationRequired, "expiration-required", false, "Reject tokens without exp (with --claims).")
	return cmd
}

func (o *decryptOptions) run(cmd *cobra.Command, args []string) error {
	token, err := tokenArg(cmd, args)
	if err != nil {
		return err
	}

	c, err := o.load()
	if err != nil {
		return err
	}
	if o.configFile == "" {
		c.Validation.Issuer = o.issuer
		c.Validation.Audiences = o.audiences
		c.Validation.AllowedClockSkew = o.clockSkew
		c.Validation.ExpirationRequired = o.expirationRequired
	}

	engine, err := o.engine(c)
	if err != nil {
		return err
	}
	resolver, err := c.NewResolver(nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !o.checkClaims {
		payload, err := engine.DecryptWithKeyFunc(token, func(h jwe.Header) (any, error) {
			return resolver.Resolve(ctx, h)
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(payload))
		return err
	}

	d, err := c.NewDecrypter(engine, resolver)
	if err != nil {
		return err
	}
	result, err := d.DecryptToken(ctx, token)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result.(*decrypter.DecryptedClaims).Claims)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
