package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calehh/contest-app/contest"
	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
)

const (
	DefaultHomeDir       = "$HOME/.contest"
	DefaultOracleURL     = "http://127.0.0.1:8090"
	DefaultOracleTimeout = 10 * time.Second
	DefaultRelayerListen = "127.0.0.1:8070"
	DefaultPollInterval  = 2 * time.Second
)

// AppConfig is the [app] section of config.toml.
type AppConfig struct {
	Home string `mapstructure:"-"`

	// RequestTTL seeds app_state.request_ttl when a genesis file is written.
	RequestTTL uint64 `mapstructure:"request_ttl"`

	OracleURL     string        `mapstructure:"oracle_url"`
	OracleTimeout time.Duration `mapstructure:"oracle_timeout"`

	RelayerKey    string        `mapstructure:"relayer_key"`
	RelayerDB     string        `mapstructure:"relayer_db"`
	RelayerListen string        `mapstructure:"relayer_listen"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
}

func NewAppConfig(home string) *AppConfig {
	return &AppConfig{
		Home:          home,
		RequestTTL:    contest.DefaultRequestTTL,
		OracleURL:     DefaultOracleURL,
		OracleTimeout: DefaultOracleTimeout,
		RelayerKey:    "config/oracle_key.json",
		RelayerDB:     "data/relayer.db",
		RelayerListen: DefaultRelayerListen,
		PollInterval:  DefaultPollInterval,
	}
}

// DataDir is where the state tree lives.
func (c *AppConfig) DataDir() string {
	return filepath.Join(c.Home, "data")
}

func (c *AppConfig) RelayerKeyFile() string {
	return rootify(c.RelayerKey, c.Home)
}

func (c *AppConfig) RelayerDBFile() string {
	return rootify(c.RelayerDB, c.Home)
}

func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *AppConfig `mapstructure:"app"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv(DefaultHomeDir)
	}
	_ = os.MkdirAll(home+"/config", 0755)
	cfg := &Config{
		DefaultCometConfig(),
		NewAppConfig(home),
	}
	cfg.SetRoot(home)
	return cfg
}

func InitializeNodeValidatorFiles(cfg *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(cfg.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := cfg.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := cfg.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func DefaultCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
