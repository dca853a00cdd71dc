package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calehh/contest-app/crypto"
	"github.com/spf13/cobra"
)

type keysArguments struct {
	Skey string
}

var keysArgs keysArguments

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage account keys",
}

var keysGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a new key file",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := crypto.GenKey()
		if err := key.Save(keysArgs.Skey); err != nil {
			return err
		}
		printKey(key)
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the public key and account of a key file",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.LoadKey(keysArgs.Skey)
		if err != nil {
			return err
		}
		printKey(key)
		return nil
	},
}

func init() {
	keysCmd.PersistentFlags().StringVarP(&keysArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	keysCmd.AddCommand(keysGenCmd)
	keysCmd.AddCommand(keysShowCmd)
}

func printKey(key *crypto.Key) {
	fmt.Printf("pubkey:%s\n", hex.EncodeToString(key.PublicKey()))
	fmt.Printf("account:%s\n", key.Account())
}
