package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const envPrefix = "JWETOOL"

type rootOptions struct {
	logLevel  string
	logFormat string
	logger    *logrus.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{logger: logrus.New()}

	cmd := &cobra.Command{
		Use:   "jwetool",
		Short: "Generate keys and encrypt, decrypt or inspect JWE tokens",
		Long: `jwetool works with JWE tokens in compact serialization.

Key management: RSA-OAEP, RSA-OAEP-256, RSA-OAEP-384, RSA-OAEP-512, dir.
Content encryption: A128GCM, A192GCM, A256GCM, A128CBC-HS256,
A192CBC-HS384, A256CBC-HS512.

Every flag can also be set through a JWETOOL_<FLAG> environment variable.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setFlagsFromEnv(envPrefix, cmd.Flags())
			return opts.configureLogger(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warning", "Log level (debug, info, warning, error).")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text or json).")

	cmd.AddCommand(
		newKeygenCommand(opts),
		newEncryptCommand(opts),
		newDecryptCommand(opts),
		newInspectCommand(opts),
	)
	return cmd
}

func (o *rootOptions) configureLogger(out io.Writer) error {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	o.logger.SetLevel(level)
	o.logger.SetOutput(out)

	switch o.logFormat {
	case "text":
		o.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		o.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", o.logFormat)
	}
	return nil
}

// setFlagsFromEnv fills flags not given on the command line from
// PREFIX_FLAG_NAME environment variables.
func setFlagsFromEnv(prefix string, fs *pflag.FlagSet) {
	set := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) {
		set[f.Name] = true
	})
	fs.VisitAll(func(f *pflag.Flag) {
		if set[f.Name] {
			return
		}
		name := fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"))
		if e, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(e)
		}
	})
}

// readInput returns the contents of path, or of stdin when path is "" or
// "-". Trailing newlines are kept.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// tokenArg takes the token from args or, when absent, from stdin.
func tokenArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("no token given")
	}
	return token, nil
}
