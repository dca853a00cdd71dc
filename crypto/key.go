package crypto

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/tx"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	"github.com/cometbft/cometbft/privval"
)

// Key is an account key stored in CometBFT's private validator key format,
// so a node's priv_validator_key.json can sign transactions as well.
type Key struct {
	privateKey crypto.PrivKey
	publicKey  crypto.PubKey
}

var _ tx.Signer = (*Key)(nil)

func GenKey() *Key {
	priv := ed25519.GenPrivKey()
	return &Key{privateKey: priv, publicKey: priv.PubKey()}
}

func LoadKey(keyFilePath string) (*Key, error) {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	pvKey := privval.FilePVKey{}
	err = cmtjson.Unmarshal(keyJSONBytes, &pvKey)
	if err != nil {
		return nil, fmt.Errorf("error reading key from %v: %w", keyFilePath, err)
	}
	if pvKey.PrivKey == nil || pvKey.PrivKey.Type() != ed25519.KeyType {
		return nil, fmt.Errorf("key %v is not an ed25519 key", keyFilePath)
	}
	return &Key{
		privateKey: pvKey.PrivKey,
		publicKey:  pvKey.PrivKey.PubKey(),
	}, nil
}

func (k *Key) Save(keyFilePath string) error {
	pvKey := privval.FilePVKey{
		Address: k.publicKey.Address(),
		PubKey:  k.publicKey,
		PrivKey: k.privateKey,
	}
	dat, err := cmtjson.MarshalIndent(pvKey, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(keyFilePath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(keyFilePath, dat, 0o600)
}

func (k *Key) PublicKey() []byte {
	return k.publicKey.Bytes()
}

// Account is the account id transactions signed by k are sent from.
func (k *Key) Account() contest.AccountID {
	return tx.AccountOf(k.PublicKey())
}

func (k *Key) Sign(data []byte) ([]byte, error) {
	return k.privateKey.Sign(data)
}
