package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
)

// signingKeyCmd represents the signing-key command
var signingKeyCmd = &cobra.Command{
	Use:   "signing-key",
	Short: "Manage the grant token signing key",
	Long:  `Manage the grant token signing key`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'signing-key' requires a subcommand generate")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// signingKeyGenerateCmd represents the signing-key > generate command
var signingKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a grant token signing key",
	Long: `
Generate a grant token signing key

Use this command to generate a new Base64-encoded RSA private key. Once generated, this key should be placed into the environment of
the passvault server. It will be used to sign the grant tokens issued when a restricted-access request is approved.

Example:

$ export PASSVAULT_SIGNING_KEY="$(passvaultctl signing-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		key, err := keycrypt.GenerateKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to generate key:", err)
			os.Exit(1)
		}
		fmt.Printf("%s", base64.StdEncoding.Strict().EncodeToString(key.Serialize()))
	},
}

func init() {
	rootCmd.AddCommand(signingKeyCmd)
	signingKeyCmd.AddCommand(signingKeyGenerateCmd)
}
