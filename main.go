package main

import "github.com/dexlane/solana-bridge/cmd"

func main() {
	cmd.Execute()
}
