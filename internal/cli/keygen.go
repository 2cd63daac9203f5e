package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutu-network/proverd/internal/config"
	"github.com/tutu-network/proverd/internal/security"
)

func init() {
	rootCmd.AddCommand(keygenCmd)
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate or show this node's signing keypair",
	Long:  `Generates an Ed25519 keypair under $PROVERD_HOME/keys if one does not already exist, and prints the public key.`,
	RunE:  runKeygen,
}

func runKeygen(cmd *cobra.Command, args []string) error {
	keys, err := security.LoadOrCreateKeypair(config.ProverHome())
	if err != nil {
		return fmt.Errorf("load or create keypair: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), keys.PublicKeyHex())
	return nil
}
