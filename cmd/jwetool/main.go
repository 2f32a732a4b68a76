// Command jwetool generates keys and encrypts, decrypts and inspects JWE
// tokens in compact serialization.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
