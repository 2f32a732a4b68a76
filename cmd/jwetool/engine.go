package main

import (
	"github.com/spf13/cobra"

	jwemiddleware "github.com/secureclaims/go-jwe-middleware"
	"github.com/secureclaims/go-jwe-middleware/config"
	"github.com/secureclaims/go-jwe-middleware/jwe"
)

// engineFlags describe the engine either through a config file or through
// an allow-list and a key file given on the command line.
type engineFlags struct {
	configFile         string
	keyFile            string
	keyAlgorithms      []string
	contentEncryptions []string
	claimsCodec        string
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "YAML config file. Overrides the other engine flags.")
	cmd.Flags().StringVarP(&f.keyFile, "key", "k", "", "JWK or JWK Set file.")
	cmd.Flags().StringSliceVar(&f.keyAlgorithms, "key-algorithms", []string{"RSA-OAEP-256"}, "Allowed key management algorithms.")
	cmd.Flags().StringSliceVar(&f.contentEncryptions, "content-encryptions", []string{"A256GCM"}, "Allowed content encryption algorithms.")
	cmd.Flags().StringVar(&f.claimsCodec, "claims-codec", config.CodecJSON, "Claims payload framing: json or base64url.")
}

func (f *engineFlags) load() (*config.Config, error) {
	if f.configFile != "" {
		return config.Load(f.configFile)
	}

	c := &config.Config{
		Engine: config.Engine{
			KeyAlgorithms:      f.keyAlgorithms,
			ContentEncryptions: f.contentEncryptions,
			ClaimsCodec:        f.claimsCodec,
		},
		Keys: config.Keys{File: f.keyFile},
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (o *rootOptions) engine(c *config.Config) (*jwe.Engine, error) {
	return c.NewEngine(jwe.WithLogger(jwemiddleware.NewLogrusLogger(o.logger)))
}
