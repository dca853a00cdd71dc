package state

import (
	"testing"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainID = "contest-state-test"

type keySigner struct {
	key ed25519.PrivKey
}

func (k keySigner) PublicKey() []byte { return k.key.PubKey().Bytes() }

func (k keySigner) Sign(data []byte) ([]byte, error) { return k.key.Sign(data) }

var testConfig = contest.Config{
	Title:           "Autumn",
	DaoID:           "art.dao",
	SubmissionStart: 100,
	SubmissionEnd:   200,
	VotingStart:     200,
	VotingEnd:       300,
	Prize:           10,
	Places:          1,
	MinArtVote:      1,
}

func openDB(t *testing.T, dir string) *StateDB {
	db, err := NewStateDB(dir, cmtlog.NewNopLogger())
	require.NoError(t, err)
	return db
}

func commit(t *testing.T, db *StateDB, st *State) {
	_, err := st.Update()
	require.NoError(t, err)
	_, err = db.SetState(st)
	require.NoError(t, err)
}

func TestStateReload(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)

	st := db.NewState()
	st.SetChainId(chainID)
	st.SetTime(50)
	st.SetRegistry(contest.NewRegistry("admin", "oracle"))
	commit(t, db, st)
	genesisHash := db.State().Hash()
	assert.NotEqual(t, common.Hash{}, genesisHash)

	st = db.NewState()
	st.SetTime(150)
	reg := st.Registry()
	id, err := reg.CreateContest(contest.Call{Caller: "creator", Now: 150}, testConfig)
	require.NoError(t, err)
	req, err := reg.SubmitArt(contest.Call{Caller: "artist", Now: 150}, id, "nft.market", "7")
	require.NoError(t, err)
	require.NoError(t, reg.OnSubmissionVerified(contest.Call{Caller: "oracle", Now: 151}, req.ID, contest.OwnershipProof{
		ContractID: "nft.market", TokenID: "7", Owner: "artist", Title: "Leaves",
	}))
	_, err = reg.Vote(contest.Call{Caller: "voter", Now: 250}, id, "artist")
	require.NoError(t, err)
	commit(t, db, st)
	assert.Equal(t, uint64(1), db.Header().Height)
	assert.NotEqual(t, genesisHash, db.State().Hash())
	hash := db.State().Hash()
	require.NoError(t, db.Close())

	db = openDB(t, dir)
	defer db.Close()
	assert.Equal(t, hash, db.State().Hash())
	assert.Equal(t, chainID, db.Header().ChainId)
	assert.Equal(t, uint64(150), db.Header().Time)

	err = db.View(func(reg *contest.Registry, header *StateHeader) error {
		assert.Equal(t, contest.AccountID("admin"), reg.Admin)
		assert.Equal(t, contest.AccountID("oracle"), reg.Oracle)
		assert.Equal(t, uint64(1), reg.SessionCounter)
		assert.Equal(t, uint64(2), reg.RequestCounter)
		art, err := reg.ArtistArt(id, "artist")
		require.NoError(t, err)
		assert.Equal(t, "Leaves", art.Title)
		assert.Equal(t, []contest.SessionID{id}, reg.UserEntries("artist"))
		open := reg.OpenRequests()
		require.Len(t, open, 1)
		assert.Equal(t, contest.FlowVote, open[0].Kind)
		assert.Equal(t, contest.Changes{}, reg.Changes())
		return nil
	})
	require.NoError(t, err)
}

func TestStateRemovesConsumedRequests(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)

	st := db.NewState()
	st.SetRegistry(contest.NewRegistry("admin", "oracle"))
	id, err := st.Registry().CreateContest(contest.Call{Caller: "creator", Now: 150}, testConfig)
	require.NoError(t, err)
	_, err = st.Registry().SubmitArt(contest.Call{Caller: "artist", Now: 150}, id, "nft.market", "7")
	require.NoError(t, err)
	commit(t, db, st)

	st = db.NewState()
	assert.Equal(t, 1, st.Registry().PruneExpired(contest.Call{Now: 10_000}))
	commit(t, db, st)
	require.NoError(t, db.Close())

	db = openDB(t, dir)
	defer db.Close()
	require.NoError(t, db.View(func(reg *contest.Registry, _ *StateHeader) error {
		assert.Empty(t, reg.OpenRequests())
		return nil
	}))
}

func TestVerifyAndIncNonce(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer db.Close()
	signer := keySigner{key: ed25519.GenPrivKey()}

	st := db.NewState()
	st.SetChainId(chainID)
	st.SetRegistry(contest.NewRegistry("admin", "oracle"))

	btx := &tx.ContestTx{Version: tx.TxVersion1, Type: tx.TxTypeFinalise, Nonce: 0, Tx: &tx.FinaliseTx{Session: 1}}
	require.NoError(t, btx.Sign(chainID, signer))
	sender, err := st.Verify(btx, false)
	require.NoError(t, err)
	assert.Equal(t, tx.AccountOf(signer.PublicKey()), sender)
	require.NoError(t, st.IncNonce(btx))

	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxNonceInvalid)

	next := &tx.ContestTx{Version: tx.TxVersion1, Type: tx.TxTypeFinalise, Nonce: 3, Tx: &tx.FinaliseTx{Session: 1}}
	require.NoError(t, next.Sign(chainID, signer))
	_, err = st.Verify(next, false)
	assert.ErrorIs(t, err, ErrTxNonceInvalid)
	_, err = st.Verify(next, true)
	assert.NoError(t, err)

	next.Nonce = 1
	_, err = st.Verify(next, false)
	assert.ErrorIs(t, err, ErrTxSigInvalid)

	commit(t, db, st)
	acnt, height, err := db.GetAccount(sender)
	require.NoError(t, err)
	require.NotNil(t, acnt)
	assert.Equal(t, uint64(1), acnt.Nonce)
	assert.Equal(t, sender, acnt.ID)
	assert.Equal(t, uint64(0), height)
}
