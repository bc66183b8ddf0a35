package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dexlane/solana-bridge/internal/commission"
	"github.com/dexlane/solana-bridge/internal/platform"
)

// deriveCmd prints the record addresses a deployment (or a relayer preparing
// a transaction) needs: the admin record, a withdraw record for an origin,
// and the commission-admin account.
var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive bridge record addresses from their seeds",
	PreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd, args)
	},
	RunE: runDerive,
}

func init() {
	rootCmd.AddCommand(deriveCmd)

	deriveCmd.Flags().String(
		"seed",
		"",
		"Bridge admin seed (32 bytes, hex)")

	deriveCmd.Flags().String(
		"origin",
		"",
		"Origin of a cross-chain event (32 bytes, hex); prints its withdraw record address")

	deriveCmd.Flags().String(
		"commission-program",
		"",
		"Commission program ID (base58); prints the commission-admin address")

	viper.BindPFlag("seed", deriveCmd.Flags().Lookup("seed"))
	viper.BindPFlag("origin", deriveCmd.Flags().Lookup("origin"))
	viper.BindPFlag("commission_program", deriveCmd.Flags().Lookup("commission-program"))
}

func runDerive(cmd *cobra.Command, _ []string) error {
	programID, err := solana.PublicKeyFromBase58(viper.GetString("program_id"))
	if err != nil {
		return fmt.Errorf("invalid program ID: %v", err)
	}

	deriver := platform.SolanaDeriver{}

	seedHex := viper.GetString("seed")
	var adminAddr solana.PublicKey
	if seedHex != "" {
		seed, err := hex32(seedHex)
		if err != nil {
			return fmt.Errorf("invalid seed: %v", err)
		}
		adminAddr, err = deriver.Derive([][]byte{seed[:]}, programID)
		if err != nil {
			return fmt.Errorf("derive admin address: %v", err)
		}
		fmt.Printf("bridge admin:     %s\n", adminAddr)
	}

	if originHex := viper.GetString("origin"); originHex != "" {
		origin, err := hex32(originHex)
		if err != nil {
			return fmt.Errorf("invalid origin: %v", err)
		}
		addr, bump, err := deriver.DeriveWithBump([][]byte{origin[:]}, programID)
		if err != nil {
			return fmt.Errorf("derive withdraw address: %v", err)
		}
		fmt.Printf("withdraw record:  %s (bump %d)\n", addr, bump)
	}

	if commissionB58 := viper.GetString("commission_program"); commissionB58 != "" {
		if seedHex == "" {
			return fmt.Errorf("--commission-program requires --seed")
		}
		commissionProgram, err := solana.PublicKeyFromBase58(commissionB58)
		if err != nil {
			return fmt.Errorf("invalid commission program: %v", err)
		}
		addr, err := deriver.Derive(
			[][]byte{[]byte(commission.AdminSeed), adminAddr[:]},
			commissionProgram,
		)
		if err != nil {
			return fmt.Errorf("derive commission admin: %v", err)
		}
		fmt.Printf("commission admin: %s\n", addr)
	}

	return nil
}

func hex32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
