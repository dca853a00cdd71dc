package state

import (
	"github.com/calehh/contest-app/contest"
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// Account tracks the replay nonce of a transaction sender.
type Account struct {
	ID     contest.AccountID `json:"id"`
	PubKey ed25519.PubKey    `json:"pubKey"`
	Nonce  uint64            `json:"nonce"`
}

func NewAccount(pkey []byte) *Account {
	a := &Account{}
	a.SetPubKey(pkey)
	return a
}

func (a *Account) Clone() *Account {
	n := *a
	n.PubKey = append(ed25519.PubKey{}, a.PubKey...)
	return &n
}

func (a *Account) SetPubKey(pkey []byte) {
	a.PubKey = make(ed25519.PubKey, len(pkey))
	copy(a.PubKey, pkey)
	a.ID = contest.AccountID(a.PubKey.Address().String())
}

func (a *Account) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 {
		return false
	}
	return a.PubKey.VerifySignature(msg, sigs[0])
}
