package handler

import (
	"context"
	"fmt"
	"testing"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/state"
	"github.com/calehh/contest-app/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = contest.Config{
	Title:           "Winter",
	SubmissionStart: 100,
	SubmissionEnd:   200,
	VotingStart:     200,
	VotingEnd:       300,
	Prize:           10,
	Places:          1,
}

func newTestState(t *testing.T) *state.State {
	db, err := state.NewStateDB(t.TempDir(), cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := db.NewState()
	st.SetRegistry(contest.NewRegistry("admin", "oracle"))
	return st
}

func signedTx(typ tx.ContestTxType, payload any) *tx.ContestTx {
	key := ed25519.GenPrivKey()
	return &tx.ContestTx{Version: tx.TxVersion1, Type: typ, PubKey: key.PubKey().Bytes(), Tx: payload}
}

func TestProcessCreateContest(t *testing.T) {
	st := newTestState(t)
	st.SetTime(50)
	hdlrs := NewTxHandlers(cmtlog.NewNopLogger())

	btx := signedTx(tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig})
	res, err := hdlrs[tx.TxTypeCreateContest].Process(context.Background(), st, btx)
	require.NoError(t, err)
	assert.Equal(t, CodeOK, res.Code)
	require.Len(t, res.Events, 1)
	assert.Equal(t, contest.EventContestCreatedType, res.Events[0].Type)

	sender, _ := btx.Sender()
	assert.Len(t, st.Registry().ContestsByCreator(sender), 1)
}

func TestProcessReportsCode(t *testing.T) {
	st := newTestState(t)
	hdlrs := NewTxHandlers(cmtlog.NewNopLogger())

	res, err := hdlrs[tx.TxTypePause].Process(context.Background(), st, signedTx(tx.TxTypePause, &tx.PauseTx{Paused: true}))
	assert.ErrorIs(t, err, contest.ErrUnauthorized)
	assert.Equal(t, CodeUnauthorized, res.Code)
	assert.False(t, st.Registry().Paused)

	_, err = hdlrs[tx.TxTypePause].Process(context.Background(), st, signedTx(tx.TxTypePause, &tx.VoteTx{}))
	assert.ErrorIs(t, err, tx.ErrInvalidTx)
}

func TestCheckLeavesStateUntouched(t *testing.T) {
	st := newTestState(t)
	hdlrs := NewTxHandlers(cmtlog.NewNopLogger())

	btx := signedTx(tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig})
	res, err := hdlrs[tx.TxTypeCreateContest].Check(context.Background(), st, btx)
	require.NoError(t, err)
	assert.Equal(t, CodeOK, res.Code)
	assert.Empty(t, st.Registry().Contests())

	bad := testConfig
	bad.Prize = -1
	res, err = hdlrs[tx.TxTypeCreateContest].Check(context.Background(), st, signedTx(tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: bad}))
	require.NoError(t, err)
	assert.Equal(t, CodeInvalidConfig, res.Code)
}

func TestCheckWithoutRegistry(t *testing.T) {
	db, err := state.NewStateDB(t.TempDir(), cmtlog.NewNopLogger())
	require.NoError(t, err)
	defer db.Close()

	res, err := NewTxHandlers(cmtlog.NewNopLogger())[tx.TxTypeFinalise].Check(context.Background(), db.State(), signedTx(tx.TxTypeFinalise, &tx.FinaliseTx{Session: 1}))
	require.NoError(t, err)
	assert.Equal(t, CodeRegistryUninitiated, res.Code)
}

func TestCode(t *testing.T) {
	assert.Equal(t, CodeOK, Code(nil))
	assert.Equal(t, CodeInternal, Code(fmt.Errorf("boom")))
	assert.Equal(t, CodeRequestExpired, Code(&contest.ResolvedError{RequestID: 1, Err: contest.ErrRequestExpired}))
	assert.Equal(t, CodeDoubleVote, Code(fmt.Errorf("vote: %w", &contest.DoubleVoteError{Token: "alice"})))
	assert.Equal(t, CodeDuplicateCandidate, Code(fmt.Errorf("submit: %w", contest.ErrDuplicateCandidate)))
	assert.Equal(t, CodeNonceInvalid, Code(state.ErrTxNonceInvalid))
}
