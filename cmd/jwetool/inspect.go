package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secureclaims/go-jwe-middleware/jwe"
)

type inspection struct {
	Header          json.RawMessage `json:"header"`
	EncryptedKeyLen int             `json:"encrypted_key_bytes"`
	IVLen           int             `json:"iv_bytes"`
	CiphertextLen   int             `json:"ciphertext_bytes"`
	TagLen          int             `json:"tag_bytes"`
}

func newInspectCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [token]",
		Short: "Print a token's header and segment sizes without decrypting it",
		Long: `Print the protected header of a compact token and the decoded size of
each remaining segment. Nothing printed is authenticated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArg(cmd, args)
			if err != nil {
				return err
			}

			compact, err := jwe.ParseCompact(token)
			if err != nil {
				return err
			}
			h, _, err := jwe.DecodeHeader(compact.ProtectedHeader)
			if err != nil {
				return err
			}
			header, err := h.Encode()
			if err != nil {
				return err
			}
			root.logger.WithField("kid", h.KeyID).Debug("decoded protected header")

			data, err := json.MarshalIndent(inspection{
				Header:          header,
				EncryptedKeyLen: len(compact.EncryptedKey),
				IVLen:           len(compact.IV),
				CiphertextLen:   len(compact.Ciphertext),
				TagLen:          len(compact.Tag),
			}, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
