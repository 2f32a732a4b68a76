package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	jwxjwa "github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/secureclaims/go-jwe-middleware/jwa"
	"github.com/secureclaims/go-jwe-middleware/keysource"
)

type keygenOptions struct {
	*rootOptions
	keyType   string
	bits      int
	size      int
	kid       string
	alg       string
	publicOut string
}

func newKeygenCommand(root *rootOptions) *cobra.Command {
	opts := &keygenOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an encryption key as a JWK",
		Long: `Generate an RSA key pair or a symmetric key for dir and print the
private JWK to stdout. The key ID defaults to a random UUID.`,
		Args: cobra.NoArgs,
		RunE: opts.run,
	}

	cmd.Flags().StringVar(&opts.keyType, "type", "RSA", "Key type: RSA or oct.")
	cmd.Flags().IntVar(&opts.bits, "bits", 2048, "RSA modulus size in bits.")
	cmd.Flags().IntVar(&opts.size, "size", 32, "Symmetric key size in bytes.")
	cmd.Flags().StringVar(&opts.kid, "kid", "", "Key ID (default: random UUID).")
	cmd.Flags().StringVar(&opts.alg, "alg", "", "Key management algorithm to pin the key to.")
	cmd.Flags().StringVar(&opts.publicOut, "public-out", "", "Also write the public JWK to this file (RSA only).")
	return cmd
}

func (o *keygenOptions) run(cmd *cobra.Command, _ []string) error {
	if o.kid == "" {
		o.kid = uuid.NewString()
	}
	if o.alg != "" {
		if _, err := jwa.ParseKeyAlgorithm(o.alg); err != nil {
			return err
		}
	}

	var raw any
	switch o.keyType {
	case "RSA":
		if o.bits < 2048 {
			return fmt.Errorf("RSA keys must be at least 2048 bits, got %d", o.bits)
		}
		priv, err := rsa.GenerateKey(rand.Reader, o.bits)
		if err != nil {
			return fmt.Errorf("failed to generate RSA key: %w", err)
		}
		raw = priv
	case "oct":
		if o.size <= 0 {
			return fmt.Errorf("symmetric key size must be positive, got %d", o.size)
		}
		if o.publicOut != "" {
			return fmt.Errorf("--public-out is only valid for RSA keys")
		}
		secret := make([]byte, o.size)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate symmetric key: %w", err)
		}
		raw = secret
	default:
		return fmt.Errorf("unknown key type %q (RSA or oct)", o.keyType)
	}

	key, err := jwk.FromRaw(raw)
	if err != nil {
		return fmt.Errorf("failed to build JWK: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, o.kid); err != nil {
		return err
	}
	if err := key.Set(jwk.KeyUsageKey, keysource.UseEncryption); err != nil {
		return err
	}
	if o.alg != "" {
		if err := key.Set(jwk.AlgorithmKey, jwxjwa.KeyEncryptionAlgorithm(o.alg)); err != nil {
			return err
		}
	}

	if o.publicOut != "" {
		pub, err := key.PublicKey()
		if err != nil {
			return fmt.Errorf("failed to derive public JWK: %w", err)
		}
		data, err := json.MarshalIndent(pub, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.publicOut, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write public key: %w", err)
		}
	}

	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return err
	}

	o.logger.WithFields(logrus.Fields{"kid": o.kid, "kty": o.keyType}).Info("generated key")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
