package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/calehh/contest-app/crypto"
	"github.com/calehh/contest-app/oracle"
	"github.com/calehh/contest-app/relayer"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type relayerArguments struct {
	Home string
	Url  string
}

var relayerArgs relayerArguments

var relayerCmd = &cobra.Command{
	Use:   "relayer",
	Short: "Answer verification requests as the oracle account",
	Run:   relayerRun,
}

func init() {
	homeFlag(relayerCmd, &relayerArgs.Home)
	relayerCmd.Flags().StringVarP(&relayerArgs.Url, "url", "u", "", "contest node rpc url, defaults to the configured rpc listen address")
}

func relayerRun(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(relayerArgs.Home)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	rpcUrl := relayerArgs.Url
	if rpcUrl == "" {
		u, err := url.Parse(cfg.RPC.ListenAddress)
		if err != nil {
			log.Fatalf("parse rpc address err %s", err.Error())
		}
		u.Scheme = "http"
		rpcUrl = u.String()
	}
	cli, err := http.New(rpcUrl, "/websocket")
	if err != nil {
		log.Fatalf("new client err %s", err.Error())
	}

	key, err := crypto.LoadKey(cfg.App.RelayerKeyFile())
	if err != nil {
		log.Fatalf("load oracle key err %s", err.Error())
	}
	oc := oracle.NewHTTPClient(cfg.App.OracleURL, cfg.App.OracleTimeout, logger)
	r, err := relayer.NewRelayer(logger, cfg.App.RelayerDBFile(), cli, oc, key, cfg.App.PollInterval)
	if err != nil {
		log.Fatalf("new relayer err %s", err.Error())
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	svc := relayer.NewService(cfg.App.RelayerListen, r)
	go func() {
		if err := svc.Start(); err != nil {
			log.Fatalf("relayer service err %s", err.Error())
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Println("shut down...")
}
