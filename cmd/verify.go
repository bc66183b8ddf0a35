package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dexlane/solana-bridge/internal/merkle"
	"github.com/dexlane/solana-bridge/internal/sigverify"
)

// verifyCmd does the same preflight a relayer does before submitting a
// withdrawal: fold the leaf into the root and (optionally) check the
// authority signature over it.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fold a merkle proof and verify the authority signature over its root",
	PreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd, args)
	},
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String(
		"leaf",
		"",
		"Content leaf hash (32 bytes, hex, required)")

	verifyCmd.Flags().String(
		"path",
		"",
		"Sibling path, comma-separated 32-byte hex values (required)")

	verifyCmd.Flags().String(
		"signature",
		"",
		"Compact signature over the root (64 bytes, hex)")

	verifyCmd.Flags().Uint8(
		"recovery-id",
		0,
		"Recovery id of the signature")

	verifyCmd.Flags().String(
		"public-key",
		"",
		"Expected authority key (64 bytes, hex)")

	verifyCmd.MarkFlagRequired("leaf")
	verifyCmd.MarkFlagRequired("path")

	viper.BindPFlag("leaf", verifyCmd.Flags().Lookup("leaf"))
	viper.BindPFlag("path", verifyCmd.Flags().Lookup("path"))
	viper.BindPFlag("signature", verifyCmd.Flags().Lookup("signature"))
	viper.BindPFlag("public_key", verifyCmd.Flags().Lookup("public-key"))
}

func runVerify(cmd *cobra.Command, _ []string) error {
	leaf, err := hex32(viper.GetString("leaf"))
	if err != nil {
		return fmt.Errorf("invalid leaf: %v", err)
	}

	var path [][32]byte
	for _, part := range strings.Split(viper.GetString("path"), ",") {
		sibling, err := hex32(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid path element %q: %v", part, err)
		}
		path = append(path, sibling)
	}

	root, err := merkle.Root(leaf, path)
	if err != nil {
		return err
	}
	fmt.Printf("root: %s (hex %x)\n", base58.Encode(root[:]), root)

	sigHex := viper.GetString("signature")
	if sigHex == "" {
		return nil
	}

	sigRaw, err := hex.DecodeString(sigHex)
	if err != nil || len(sigRaw) != sigverify.SignatureLength {
		return fmt.Errorf("invalid signature: expected %d hex bytes", sigverify.SignatureLength)
	}
	keyRaw, err := hex.DecodeString(viper.GetString("public_key"))
	if err != nil || len(keyRaw) != sigverify.PublicKeyLength {
		return fmt.Errorf("invalid public key: expected %d hex bytes", sigverify.PublicKeyLength)
	}
	recoveryID, _ := cmd.Flags().GetUint8("recovery-id")

	var sig [sigverify.SignatureLength]byte
	var key [sigverify.PublicKeyLength]byte
	copy(sig[:], sigRaw)
	copy(key[:], keyRaw)

	if err := sigverify.Verify(root[:], sig, recoveryID, key); err != nil {
		return err
	}
	fmt.Println("signature: OK")
	return nil
}
