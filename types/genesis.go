package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/calehh/contest-app/contest"
	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
)

const (
	ModuleName   = "contest"
	DefaultPower = 1000
)

var (
	ErrGenesisNoAdmin  = errors.New("genesis app_state must include admin")
	ErrGenesisNoOracle = errors.New("genesis app_state must include oracle")
)

// AppState is the app_state section of the genesis file.
type AppState struct {
	Admin      contest.AccountID `json:"admin"`
	Oracle     contest.AccountID `json:"oracle"`
	RequestTTL uint64            `json:"request_ttl"`
}

func (s *AppState) Validate() error {
	if s.Admin == "" {
		return ErrGenesisNoAdmin
	}
	if s.Oracle == "" {
		return ErrGenesisNoOracle
	}
	return nil
}

func ParseAppState(dat []byte) (*AppState, error) {
	st := &AppState{}
	if len(dat) != 0 {
		if err := json.Unmarshal(dat, st); err != nil {
			return nil, fmt.Errorf("decode app_state: %w", err)
		}
	}
	if st.RequestTTL == 0 {
		st.RequestTTL = contest.DefaultRequestTTL
	}
	return st, st.Validate()
}

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc mirrors CometBFT's genesis document.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func (genDoc *GenesisDoc) ValidateAndComplete() error {
	if genDoc.ChainID == "" {
		return errors.New("genesis doc must include non-empty chain_id")
	}
	if genDoc.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", genDoc.InitialHeight)
	}
	if genDoc.InitialHeight == 0 {
		genDoc.InitialHeight = 1
	}
	if genDoc.GenesisTime.IsZero() {
		genDoc.GenesisTime = time.Now().Round(0).UTC()
	}
	if _, err := ParseAppState(genDoc.AppState); err != nil {
		return err
	}
	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}
