package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/secureclaims/go-jwe-middleware/config"
	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

type encryptOptions struct {
	*rootOptions
	engineFlags
	in          string
	alg         string
	enc         string
	kid         string
	typ         string
	contentType string
}

func newEncryptCommand(root *rootOptions) *cobra.Command {
	opts := &encryptOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a payload for a recipient key",
		Long: `Encrypt the payload read from --in (or stdin) and print the compact
token. The recipient key is taken from the key file; with several keys,
--kid selects one.`,
		Args: cobra.NoArgs,
		RunE: opts.run,
	}

	opts.engineFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.in, "in", "i", "-", "Payload file, - for stdin.")
	cmd.Flags().StringVar(&opts.alg, "alg", "", "Key management algorithm (default: first allowed).")
	cmd.Flags().StringVar(&opts.enc, "enc", "", "Content encryption algorithm (default: first allowed).")
	cmd.Flags().StringVar(&opts.kid, "kid", "", "Recipient key ID.")
	cmd.Flags().StringVar(&opts.typ, "typ", "JWT", "typ header value; empty to omit.")
	cmd.Flags().StringVar(&opts.contentType, "cty", "", "cty header value.")
	return cmd
}

func (o *encryptOptions) run(cmd *cobra.Command, _ []string) error {
	c, err := o.load()
	if err != nil {
		return err
	}
	if c.Keys.File == "" {
		return fmt.Errorf("encrypt needs a local key file")
	}

	engine, err := o.engine(c)
	if err != nil {
		return err
	}

	h, err := o.header(c)
	if err != nil {
		return err
	}

	set, err := config.LoadKeyFile(c.Keys.File)
	if err != nil {
		return err
	}
	recipient, err := set.Lookup(h)
	if err != nil {
		return err
	}
	h.KeyID = recipient.KeyID

	payload, err := readInput(cmd, o.in)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	token, err := engine.Encrypt(h, payload, recipient.Public)
	if err != nil {
		return err
	}

	o.logger.WithFields(logrus.Fields{
		"alg": h.Algorithm,
		"enc": h.EncryptionAlgorithm,
		"kid": h.KeyID,
	}).Info("encrypted payload")

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}

func (o *encryptOptions) header(c *config.Config) (jwe.Header, error) {
	algName, encName := o.alg, o.enc
	if algName == "" {
		algName = c.Engine.KeyAlgorithms[0]
	}
	if encName == "" {
		encName = c.Engine.ContentEncryptions[0]
	}

	alg, err := jwa.ParseKeyAlgorithm(algName)
	if err != nil {
		return jwe.Header{}, err
	}
	enc, err := jwa.ParseContentEncryption(encName)
	if err != nil {
		return jwe.Header{}, err
	}

	return jwe.Header{
		Algorithm:           alg,
		EncryptionAlgorithm: enc,
		Type:                o.typ,
		ContentType:         o.contentType,
		KeyID:               o.kid,
	}, nil
}
