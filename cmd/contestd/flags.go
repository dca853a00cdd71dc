package main

import "github.com/spf13/cobra"

const (
	flagHome      = "home"
	flagChainID   = "chain-id"
	flagOverwrite = "overwrite"
	flagAdmin     = "admin"
	flagTTL       = "request-ttl"
)

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", "http://127.0.0.1:26657", "contest node rpc url")
}

func homeFlag(cmd *cobra.Command, home *string) {
	cmd.Flags().StringVarP(home, flagHome, "d", "", "home directory")
}
