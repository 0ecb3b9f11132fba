// keygen generates the Ed25519 key pair used to sign signing-link tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/signlink"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/version"
)

var (
	name      string
	outputDir string
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "keygen",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "Signing-link key generator",
		Long:              "Generate the Ed25519 key pair (JWK format) used by esign-server to sign signing-link tokens",
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair",
		Long:  "Generate a new Ed25519 key pair in JWK format; point SIGNING_KEY_PATH at the private file",
		RunE:  runGenerate,
	}

	generateCmd.Flags().StringVarP(&name, "name", "n", "signing", "Base name for the key files")
	generateCmd.Flags().StringVarP(&outputDir, "outputdir", "o", "", "Output directory for generated keys [required]")
	_ = generateCmd.MarkFlagRequired("outputdir")

	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// make the directory if it doesn't exist
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	fmt.Printf("Generating Ed25519 key pair: %s\n", name)

	privateKey, err := signlink.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}

	signer, err := signlink.NewSigner(privateKey)
	if err != nil {
		return fmt.Errorf("failed to build signer: %w", err)
	}

	privatePath, publicPath, err := signlink.WriteKeyPair(privateKey, outputDir, name)
	if err != nil {
		return fmt.Errorf("failed to write key pair: %w", err)
	}

	fmt.Printf("✓ Private JWK: %s (kid: %s)\n", privatePath, signer.KeyID())
	fmt.Printf("✓ Public JWK:  %s (kid: %s)\n", publicPath, signer.KeyID())

	return nil
}
