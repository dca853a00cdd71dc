package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/calehh/contest-app/config"
	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/crypto"
	"github.com/calehh/contest-app/types"
	cmtos "github.com/cometbft/cometbft/libs/os"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	Oracle     string          `json:"oracle" yaml:"oracle"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, oracle key, p2p, genesis, and application configuration files",
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolP(flagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(flagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().String(flagHome, "", "home directory")
	initCmd.Flags().String(flagAdmin, "", "registry admin account, defaults to the validator key account")
	initCmd.Flags().Uint64(flagTTL, contest.DefaultRequestTTL, "verification request lifetime in seconds")
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString(flagHome)
	chainID, _ := cmd.Flags().GetString(flagChainID)
	overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
	admin, _ := cmd.Flags().GetString(flagAdmin)
	ttl, _ := cmd.Flags().GetUint64(flagTTL)

	if chainID == "" {
		chainID = fmt.Sprintf("contest-chain-%v", rand.Uint64())
	}
	cfg := config.DefaultConfig(home)
	cfg.App.RequestTTL = ttl

	genFile := cfg.GenesisFile()
	if !overwrite && cmtos.FileExists(genFile) {
		return fmt.Errorf("genesis file %v already exists", genFile)
	}

	nodeID, pk, err := config.InitializeNodeValidatorFiles(cfg, nil)
	if err != nil {
		return err
	}
	if admin == "" {
		valKey, err := crypto.LoadKey(cfg.PrivValidatorKeyFile())
		if err != nil {
			return err
		}
		admin = string(valKey.Account())
	}
	oracleKey, err := loadOrGenKey(cfg.App.RelayerKeyFile())
	if err != nil {
		return err
	}

	appState, err := json.Marshal(types.AppState{
		Admin:      contest.AccountID(admin),
		Oracle:     oracleKey.Account(),
		RequestTTL: ttl,
	})
	if err != nil {
		return err
	}
	appGenesis := &types.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators:      []types.GenesisValidator{{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower}},
		AppState:        appState,
	}
	if err = types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file: %w", err)
	}
	config.WriteConfigFile(filepath.Join(cfg.RootDir, "config", "config.toml"), cfg)
	return displayInfo(printInfo{
		ChainID:    chainID,
		NodeID:     nodeID,
		Oracle:     string(oracleKey.Account()),
		AppMessage: appGenesis.AppState,
	})
}

func loadOrGenKey(path string) (*crypto.Key, error) {
	if cmtos.FileExists(path) {
		return crypto.LoadKey(path)
	}
	key := crypto.GenKey()
	if err := key.Save(path); err != nil {
		return nil, err
	}
	return key, nil
}
