package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/calehh/contest-app/config"
	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/crypto"
	"github.com/calehh/contest-app/tx"
	"github.com/calehh/contest-app/tx/handler"
	"github.com/calehh/contest-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChainID = "contest-app-test"

var testConfig = contest.Config{
	Title:           "Harvest",
	DaoID:           "art.dao",
	SubmissionStart: 100,
	SubmissionEnd:   200,
	VotingStart:     200,
	VotingEnd:       300,
	Prize:           100,
	Places:          1,
	MinArtVote:      1,
}

type actor struct {
	key   *crypto.Key
	nonce uint64
}

func newActor() *actor {
	return &actor{key: crypto.GenKey()}
}

func (a *actor) id() contest.AccountID {
	return a.key.Account()
}

func (a *actor) tx(t *testing.T, typ tx.ContestTxType, payload any) []byte {
	btx := &tx.ContestTx{Version: tx.TxVersion1, Type: typ, Nonce: a.nonce, Tx: payload}
	require.NoError(t, btx.Sign(testChainID, a.key))
	dat, err := tx.MarshalContestTx(btx)
	require.NoError(t, err)
	a.nonce++
	return dat
}

type testChain struct {
	t      *testing.T
	app    *ContestApp
	height int64

	admin, oracle *actor
}

func newTestChain(t *testing.T) *testChain {
	app, err := NewContestApp(config.NewAppConfig(t.TempDir()), cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Stop)

	c := &testChain{t: t, app: app, admin: newActor(), oracle: newActor()}
	appState, err := json.Marshal(types.AppState{Admin: c.admin.id(), Oracle: c.oracle.id(), RequestTTL: 60})
	require.NoError(t, err)
	res, err := app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId:       testChainID,
		Time:          time.Unix(10, 0),
		AppStateBytes: appState,
	})
	require.NoError(t, err)
	assert.Len(t, res.AppHash, 32)
	return c
}

func (c *testChain) block(now int64, txs ...[]byte) *abcitypes.ResponseFinalizeBlock {
	c.height++
	res, err := c.app.FinalizeBlock(context.Background(), &abcitypes.RequestFinalizeBlock{
		Height: c.height,
		Time:   time.Unix(now, 0),
		Txs:    txs,
	})
	require.NoError(c.t, err)
	_, err = c.app.Commit(context.Background(), &abcitypes.RequestCommit{})
	require.NoError(c.t, err)
	return res
}

func (c *testChain) query(path string, p types.QueryParams, v any) *abcitypes.ResponseQuery {
	dat, err := json.Marshal(p)
	require.NoError(c.t, err)
	res, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: path, Data: dat})
	require.NoError(c.t, err)
	if res.Code == 0 && v != nil {
		require.NoError(c.t, json.Unmarshal(res.Value, v))
	}
	return res
}

func findEvent(events []abcitypes.Event, typ string) *abcitypes.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func requestOf(t *testing.T, res *abcitypes.ExecTxResult) *contest.Request {
	ev := findEvent(res.Events, contest.EventOracleRequestType)
	require.NotNil(t, ev)
	req := types.DecodeEventOracleRequest(*ev)
	require.NotNil(t, req)
	return req
}

func (c *testChain) createContest(creator *actor) contest.SessionID {
	res := c.block(50, creator.tx(c.t, tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig}))
	require.Equal(c.t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)
	ev := findEvent(res.TxResults[0].Events, contest.EventContestCreatedType)
	require.NotNil(c.t, ev)
	created := types.DecodeEventContestCreated(*ev)
	require.NotNil(c.t, created)
	return created.Session
}

func (c *testChain) submit(id contest.SessionID, artist *actor, token string) {
	res := c.block(150, artist.tx(c.t, tx.TxTypeSubmitArt, &tx.SubmitArtTx{Session: uint64(id), ContractID: "nft.market", TokenID: token}))
	require.Equal(c.t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)
	req := requestOf(c.t, res.TxResults[0])
	assert.Equal(c.t, contest.FlowSubmission, req.Kind)
	assert.Equal(c.t, artist.id(), req.Caller)

	res = c.block(151, c.oracle.tx(c.t, tx.TxTypeSubmissionProof, &tx.OwnershipProofTx{
		Request: req.ID,
		Proof:   contest.OwnershipProof{ContractID: "nft.market", TokenID: token, Owner: artist.id(), Title: "Piece " + token},
	}))
	require.Equal(c.t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)
	assert.NotNil(c.t, findEvent(res.TxResults[0].Events, contest.EventArtSubmittedType))
}

func TestContestLifecycle(t *testing.T) {
	c := newTestChain(t)
	creator, artist, voter := newActor(), newActor(), newActor()

	id := c.createContest(creator)
	c.submit(id, artist, "1")

	var status types.ContestStatus
	require.Zero(t, c.query(types.QueryContestStatus, types.QueryParams{Session: uint64(id)}, &status).Code)
	assert.True(t, status.SubmissionActive)
	assert.False(t, status.VotingActive)

	res := c.block(250, voter.tx(t, tx.TxTypeVote, &tx.VoteTx{Session: uint64(id), Artist: artist.id()}))
	require.Equal(t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)
	req := requestOf(t, res.TxResults[0])
	assert.Equal(t, contest.FlowVote, req.Kind)

	res = c.block(251, c.oracle.tx(t, tx.TxTypeVoteProof, &tx.OwnershipProofTx{
		Request: req.ID,
		Proof:   contest.OwnershipProof{ContractID: "nft.market", TokenID: "1", Owner: artist.id()},
	}))
	require.Equal(t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)
	assert.NotNil(t, findEvent(res.TxResults[0].Events, contest.EventVoteRecordedType))

	var voted bool
	c.query(types.QueryUserVoted, types.QueryParams{Session: uint64(id), Account: string(voter.id())}, &voted)
	assert.True(t, voted)

	res = c.block(260, creator.tx(t, tx.TxTypeFinalise, &tx.FinaliseTx{Session: uint64(id)}))
	assert.Equal(t, handler.CodeVotingOngoing, res.TxResults[0].Code)

	res = c.block(300, creator.tx(t, tx.TxTypeFinalise, &tx.FinaliseTx{Session: uint64(id)}))
	require.Equal(t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)
	assert.NotNil(t, findEvent(res.TxResults[0].Events, contest.EventContestFinalisedType))

	var winners []contest.WinnerEntry
	require.Zero(t, c.query(types.QueryWinners, types.QueryParams{Session: uint64(id)}, &winners).Code)
	require.Len(t, winners, 1)
	assert.Equal(t, artist.id(), winners[0].Winner)
	assert.Equal(t, float64(100), winners[0].PayoutInfo.Amount)

	res = c.block(310, artist.tx(t, tx.TxTypeSetPayout, &tx.SetPayoutTx{Session: uint64(id), Winner: artist.id(), ProposalID: 7}))
	require.Equal(t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)
	req = requestOf(t, res.TxResults[0])
	assert.Equal(t, "art.dao", req.DaoID)

	policy := contest.Policy{Roles: []contest.Role{{Name: "artists", Kind: contest.RoleGroup, Accounts: []contest.AccountID{artist.id()}, Permissions: []string{"transfer:*"}}}}
	res = c.block(311, c.oracle.tx(t, tx.TxTypePolicyProof, &tx.PolicyProofTx{
		Request: req.ID,
		Proof:   contest.PolicyProof{DaoID: "art.dao", Policy: policy},
	}))
	require.Equal(t, handler.CodeOK, res.TxResults[0].Code, res.TxResults[0].Log)

	var info contest.PayoutInfo
	require.Zero(t, c.query(types.QueryWinnerPayout, types.QueryParams{Session: uint64(id), Account: string(artist.id())}, &info).Code)
	require.NotNil(t, info.ProposalID)
	assert.Equal(t, uint64(7), *info.ProposalID)

	var entries []contest.SessionID
	c.query(types.QueryEntries, types.QueryParams{Account: string(artist.id())}, &entries)
	assert.Equal(t, []contest.SessionID{id}, entries)
}

func TestFailedTxRollsBack(t *testing.T) {
	c := newTestChain(t)
	stranger := newActor()

	res := c.block(50,
		stranger.tx(t, tx.TxTypePause, &tx.PauseTx{Paused: true}),
		stranger.tx(t, tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig}),
	)
	assert.Equal(t, handler.CodeUnauthorized, res.TxResults[0].Code)
	assert.Empty(t, res.TxResults[0].Events)
	assert.Equal(t, handler.CodeOK, res.TxResults[1].Code, res.TxResults[1].Log)

	var contests []contest.SessionDetail
	c.query(types.QueryContests, types.QueryParams{}, &contests)
	assert.Len(t, contests, 1)

	var acnt struct {
		Nonce uint64 `json:"nonce"`
	}
	ares, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: types.QueryAccounts, Data: []byte(stranger.id())})
	require.NoError(t, err)
	require.Zero(t, ares.Code)
	require.NoError(t, json.Unmarshal(ares.Value, &acnt))
	assert.Equal(t, uint64(2), acnt.Nonce)
}

func TestOwnershipLapseIsRecorded(t *testing.T) {
	c := newTestChain(t)
	creator, artist, voter := newActor(), newActor(), newActor()
	id := c.createContest(creator)
	c.submit(id, artist, "9")

	res := c.block(250, voter.tx(t, tx.TxTypeVote, &tx.VoteTx{Session: uint64(id), Artist: artist.id()}))
	req := requestOf(t, res.TxResults[0])

	res = c.block(251, c.oracle.tx(t, tx.TxTypeVoteProof, &tx.OwnershipProofTx{
		Request: req.ID,
		Proof:   contest.OwnershipProof{ContractID: "nft.market", TokenID: "9", Owner: "someone-else"},
	}))
	assert.Equal(t, handler.CodeOwnershipLapsed, res.TxResults[0].Code)
	assert.NotNil(t, findEvent(res.TxResults[0].Events, contest.EventArtDisqualifiedType))

	qres := c.query(types.QueryArt, types.QueryParams{Session: uint64(id), Account: string(artist.id())}, nil)
	assert.Equal(t, handler.CodeNotFound, qres.Code)
	qres = c.query(types.QueryRequest, types.QueryParams{Request: req.ID}, nil)
	assert.Equal(t, handler.CodeRequestNotFound, qres.Code)
}

func TestExpiredRequestsArePruned(t *testing.T) {
	c := newTestChain(t)
	creator, artist := newActor(), newActor()
	id := c.createContest(creator)

	res := c.block(150, artist.tx(t, tx.TxTypeSubmitArt, &tx.SubmitArtTx{Session: uint64(id), ContractID: "nft.market", TokenID: "3"}))
	req := requestOf(t, res.TxResults[0])

	var open []contest.Request
	c.query(types.QueryRequests, types.QueryParams{}, &open)
	assert.Len(t, open, 1)

	res = c.block(int64(req.ExpiresAt))
	ev := findEvent(res.Events, contest.EventVerificationFailedType)
	require.NotNil(t, ev)
	assert.Equal(t, req.ID, types.DecodeEventVerificationFailed(*ev))

	c.query(types.QueryRequests, types.QueryParams{}, &open)
	assert.Empty(t, open)

	res = c.block(int64(req.ExpiresAt)+1, c.oracle.tx(t, tx.TxTypeSubmissionProof, &tx.OwnershipProofTx{
		Request: req.ID,
		Proof:   contest.OwnershipProof{ContractID: "nft.market", TokenID: "3", Owner: artist.id()},
	}))
	assert.Equal(t, handler.CodeRequestNotFound, res.TxResults[0].Code)
}

func TestCheckTx(t *testing.T) {
	c := newTestChain(t)
	creator := newActor()

	dat := creator.tx(t, tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig})
	res, err := c.app.CheckTx(context.Background(), &abcitypes.RequestCheckTx{Tx: dat})
	require.NoError(t, err)
	assert.Equal(t, handler.CodeOK, res.Code, res.Log)

	c.block(50, dat)
	res, err = c.app.CheckTx(context.Background(), &abcitypes.RequestCheckTx{Tx: dat})
	require.NoError(t, err)
	assert.Equal(t, handler.CodeNonceInvalid, res.Code)

	res, err = c.app.CheckTx(context.Background(), &abcitypes.RequestCheckTx{Tx: []byte("{")})
	require.NoError(t, err)
	assert.NotEqual(t, handler.CodeOK, res.Code)

	pause := creator.tx(t, tx.TxTypePause, &tx.PauseTx{Paused: true})
	res, err = c.app.CheckTx(context.Background(), &abcitypes.RequestCheckTx{Tx: pause})
	require.NoError(t, err)
	assert.Equal(t, handler.CodeUnauthorized, res.Code)
}

func TestPrepareProposalDropsBadTxs(t *testing.T) {
	c := newTestChain(t)
	a := newActor()
	first := a.tx(t, tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig})
	second := a.tx(t, tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig})
	a.nonce = 5
	gapped := a.tx(t, tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: testConfig})

	res, err := c.app.PrepareProposal(context.Background(), &abcitypes.RequestPrepareProposal{
		Txs:        [][]byte{first, []byte("junk"), second, gapped},
		MaxTxBytes: 1 << 20,
	})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{first, second}, res.Txs)

	pres, err := c.app.ProcessProposal(context.Background(), &abcitypes.RequestProcessProposal{Txs: res.Txs})
	require.NoError(t, err)
	assert.Equal(t, abcitypes.ResponseProcessProposal_ACCEPT, pres.Status)

	pres, err = c.app.ProcessProposal(context.Background(), &abcitypes.RequestProcessProposal{Txs: [][]byte{[]byte("junk")}})
	require.NoError(t, err)
	assert.Equal(t, abcitypes.ResponseProcessProposal_REJECT, pres.Status)
}

func TestUnknownQueryPath(t *testing.T) {
	c := newTestChain(t)
	res, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: "/nothing"})
	require.NoError(t, err)
	assert.Equal(t, codeUnknownPath, res.Code)
}
