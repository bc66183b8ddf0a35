package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// signCmd produces the (signature, recovery id) pair relayers submit with a
// withdrawal, or that an operator submits with a key rotation. The message is
// either a merkle root or, with --new-key, the keccak hash of the candidate
// authority key.
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a merkle root or key-rotation message with the authority secret key",
	PreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd, args)
	},
	RunE: runSign,
}

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().String(
		"secret-key",
		"",
		"Authority secp256k1 secret key (32 bytes, hex, required)")

	signCmd.Flags().String(
		"message",
		"",
		"Message to sign (32 bytes, hex)")

	signCmd.Flags().String(
		"new-key",
		"",
		"Candidate authority key (64 bytes, hex); signs its keccak hash for rotation")

	signCmd.MarkFlagRequired("secret-key")

	viper.BindPFlag("secret_key", signCmd.Flags().Lookup("secret-key"))
	viper.BindPFlag("message", signCmd.Flags().Lookup("message"))
	viper.BindPFlag("new_key", signCmd.Flags().Lookup("new-key"))
}

func runSign(cmd *cobra.Command, _ []string) error {
	key, err := crypto.HexToECDSA(viper.GetString("secret_key"))
	if err != nil {
		return fmt.Errorf("invalid secret key: %v", err)
	}

	var message []byte
	switch {
	case viper.GetString("new_key") != "":
		newKey, err := hex.DecodeString(viper.GetString("new_key"))
		if err != nil || len(newKey) != 64 {
			return fmt.Errorf("invalid new key: expected 64 hex bytes")
		}
		message = crypto.Keccak256(newKey)
	case viper.GetString("message") != "":
		digest, err := hex32(viper.GetString("message"))
		if err != nil {
			return fmt.Errorf("invalid message: %v", err)
		}
		message = digest[:]
	default:
		return fmt.Errorf("one of --message or --new-key is required")
	}

	sig, err := crypto.Sign(message, key)
	if err != nil {
		return fmt.Errorf("sign: %v", err)
	}

	fmt.Printf("signature:   %x\n", sig[:64])
	fmt.Printf("recovery id: %d\n", sig[64])
	fmt.Printf("public key:  %x\n", crypto.FromECDSAPub(&key.PublicKey)[1:])
	return nil
}
