package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/tx"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	KeyState    = "s"
	KeyRegistry = "g"
	KeyAccount  = "a%s"
	KeySession  = "c%020d"
	KeyRequest  = "r%020d"
	KeyEntries  = "e%s"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrTxNonceInvalid      = errors.New("nonce invalid")
	ErrTxSigInvalid        = errors.New("signature invalid")
	ErrRegistryUninitiated = errors.New("registry not initiated")
)

type StateHeader struct {
	ChainId  string `json:"chainId"`
	Height   uint64 `json:"height"`
	Time     uint64 `json:"time"`
	RootHash []byte `json:"rootHash"`
	Hash     []byte `json:"hash"`
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	n.RootHash = bytes.Clone(h.RootHash)
	n.Hash = bytes.Clone(h.Hash)
	return &n
}

// State is one version of the application state: the contest registry plus
// sender accounts, backed by an iavl tree.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header *StateHeader
	reg    *contest.Registry
	acnts  map[contest.AccountID]*Account

	modifiedAcnts map[contest.AccountID]struct{}
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	return &State{
		logger:        logger,
		db:            db,
		header:        new(StateHeader),
		acnts:         make(map[contest.AccountID]*Account),
		modifiedAcnts: make(map[contest.AccountID]struct{}),
	}
}

func (s *State) nextState() *State {
	n := &State{
		logger:        s.logger,
		db:            s.db,
		dbVer:         s.dbVer,
		header:        s.header.Clone(),
		acnts:         make(map[contest.AccountID]*Account),
		modifiedAcnts: make(map[contest.AccountID]struct{}),
	}
	if s.reg != nil {
		n.reg = s.reg.Clone()
		n.reg.ResetChanges()
	}
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// Clone copies the state including its pending modifications.
func (s *State) Clone() *State {
	n := &State{
		logger:        s.logger,
		db:            s.db,
		dbVer:         s.dbVer,
		header:        s.header.Clone(),
		acnts:         make(map[contest.AccountID]*Account, len(s.acnts)),
		modifiedAcnts: make(map[contest.AccountID]struct{}, len(s.modifiedAcnts)),
	}
	if s.reg != nil {
		n.reg = s.reg.Clone()
	}
	for k, v := range s.acnts {
		n.acnts[k] = v.Clone()
	}
	for k := range s.modifiedAcnts {
		n.modifiedAcnts[k] = struct{}{}
	}
	return n
}

func (s *State) get(key string) ([]byte, error) {
	val, err := s.db.Get([]byte(key))
	if err != nil && err != leveldb.ErrNotFound {
		return nil, err
	}
	return val, nil
}

func (s *State) load() (err error) {
	val, err := s.get(KeyState)
	if err != nil {
		return err
	}
	if val == nil {
		return nil
	}
	if err = json.Unmarshal(val, s.header); err != nil {
		return
	}
	if h := s.db.Hash(); h != nil {
		s.calcHash(h, true)
	}

	val, err = s.get(KeyRegistry)
	if err != nil || val == nil {
		return
	}
	reg := contest.NewRegistry("", "")
	if err = json.Unmarshal(val, reg); err != nil {
		return
	}
	err = s.iterate("c", func(key, value []byte) error {
		id, err := strconv.ParseUint(string(key[1:]), 10, 64)
		if err != nil {
			return err
		}
		sess := &contest.Session{}
		if err := json.Unmarshal(value, sess); err != nil {
			return err
		}
		reg.Sessions[contest.SessionID(id)] = sess
		return nil
	})
	if err != nil {
		return
	}
	err = s.iterate("r", func(key, value []byte) error {
		req := &contest.Request{}
		if err := json.Unmarshal(value, req); err != nil {
			return err
		}
		reg.Requests[req.ID] = req
		return nil
	})
	if err != nil {
		return
	}
	err = s.iterate("e", func(key, value []byte) error {
		var ids []uint64
		if err := rlp.DecodeBytes(value, &ids); err != nil {
			return err
		}
		acct := contest.AccountID(key[1:])
		for _, id := range ids {
			reg.Entries[acct] = append(reg.Entries[acct], contest.SessionID(id))
		}
		return nil
	})
	if err != nil {
		return
	}
	reg.ResetChanges()
	s.reg = reg
	s.logger.Info("registry loaded", "contests", len(reg.Sessions), "requests", len(reg.Requests))
	return
}

func (s *State) iterate(prefix string, fn func(key, value []byte) error) error {
	start := []byte(prefix)
	it, err := s.db.Iterator(start, PrefixEndBytes(start), true)
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = bytes.Clone(rootHash)
		s.header.Hash = bytes.Clone(h[:])
	}
	return
}

func (s *State) set(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Set([]byte(key), val)
	return err
}

// Update writes every pending modification into the working tree and returns
// the resulting app hash.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	if err = s.set(KeyState, s.header); err != nil {
		return
	}
	if s.reg != nil {
		if err = s.writeRegistry(); err != nil {
			return
		}
	}
	for id := range s.modifiedAcnts {
		if err = s.set(fmt.Sprintf(KeyAccount, id), s.acnts[id]); err != nil {
			return
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modifiedAcnts = make(map[contest.AccountID]struct{})
	return
}

func (s *State) writeRegistry() (err error) {
	changes := s.reg.Changes()
	if changes.Meta {
		if err = s.set(KeyRegistry, s.reg); err != nil {
			return
		}
	}
	for _, id := range changes.Sessions {
		if err = s.set(fmt.Sprintf(KeySession, id), s.reg.Sessions[id]); err != nil {
			return
		}
	}
	for _, id := range changes.Requests {
		key := []byte(fmt.Sprintf(KeyRequest, id))
		if req, ok := s.reg.Requests[id]; ok {
			err = s.set(string(key), req)
		} else {
			_, _, err = s.db.Remove(key)
		}
		if err != nil {
			return
		}
	}
	for _, acct := range changes.Entries {
		ids := make([]uint64, 0, len(s.reg.Entries[acct]))
		for _, id := range s.reg.Entries[acct] {
			ids = append(ids, uint64(id))
		}
		var val []byte
		if val, err = rlp.EncodeToBytes(ids); err != nil {
			return
		}
		if _, err = s.db.Set([]byte(fmt.Sprintf(KeyEntries, acct)), val); err != nil {
			return
		}
	}
	s.reg.ResetChanges()
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}
	s.dbVer = ver
	h = s.calcHash(hash, true)
	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

func (s *State) SetTime(t uint64) {
	s.header.Time = t
}

func (s *State) Time() uint64 {
	return s.header.Time
}

// Registry returns the contest registry, or nil before genesis.
func (s *State) Registry() *contest.Registry {
	return s.reg
}

func (s *State) SetRegistry(reg *contest.Registry) {
	s.reg = reg
}

func (s *State) GetAccount(id contest.AccountID) (acnt *Account, err error) {
	if acnt = s.acnts[id]; acnt != nil {
		return
	}
	val, err := s.get(fmt.Sprintf(KeyAccount, id))
	if err != nil || val == nil {
		return nil, err
	}
	acnt = new(Account)
	if err = json.Unmarshal(val, acnt); err != nil {
		return nil, err
	}
	return
}

// Verify checks the signature and nonce of btx against the sender's account.
// Unknown senders start at nonce 0.
func (s *State) Verify(btx *tx.ContestTx, allowNonceGap bool) (sender contest.AccountID, err error) {
	sender, err = btx.Sender()
	if err != nil {
		return
	}
	a, err := s.GetAccount(sender)
	if err != nil {
		return
	}
	var nonce uint64
	if a != nil {
		nonce = a.Nonce
	}
	if !(nonce == btx.Nonce || (allowNonceGap && nonce < btx.Nonce)) {
		err = ErrTxNonceInvalid
		return
	}
	if !btx.Verify(s.header.ChainId) {
		err = ErrTxSigInvalid
	}
	return
}

// IncNonce consumes the nonce of the tx sender, creating its account on
// first use.
func (s *State) IncNonce(btx *tx.ContestTx) error {
	sender, err := btx.Sender()
	if err != nil {
		return err
	}
	a, err := s.GetAccount(sender)
	if err != nil {
		return err
	}
	if a == nil {
		a = NewAccount(btx.PubKey)
	} else {
		a = a.Clone()
	}
	a.Nonce++
	s.acnts[sender] = a
	s.modifiedAcnts[sender] = struct{}{}
	return nil
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
