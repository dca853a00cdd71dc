package handler

import (
	"context"
	"time"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/state"
	"github.com/calehh/contest-app/tx"
	"github.com/calehh/contest-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.ContestTx) (res *abcitypes.ResponseCheckTx, err error)
	Process(ctx context.Context, st *state.State, btx *tx.ContestTx) (res *abcitypes.ExecTxResult, err error)
}

// applyFunc runs the payload of btx against reg on behalf of call.Caller.
type applyFunc func(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error

// txHandler adapts an applyFunc to TxHandler. Check runs the tx against a
// copy of the registry; Process runs it in place and reports its events.
type txHandler struct {
	logger cmtlog.Logger
	apply  applyFunc
}

func newTxHandler(logger cmtlog.Logger, name string, apply applyFunc) *txHandler {
	return &txHandler{
		logger: logger.With("module", name+"Tx"),
		apply:  apply,
	}
}

func (h *txHandler) Check(ctx context.Context, st *state.State, btx *tx.ContestTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: CodeOK}
	reg := st.Registry()
	if reg == nil {
		res.Code = Code(state.ErrRegistryUninitiated)
		res.Log = state.ErrRegistryUninitiated.Error()
		return
	}
	sender, err1 := btx.Sender()
	if err1 != nil {
		res.Code = Code(err1)
		res.Log = err1.Error()
		return
	}
	err1 = h.apply(reg.Clone(), contest.Call{Caller: sender, Now: checkTime(st)}, btx)
	if err1 != nil {
		h.logger.Info("CheckTx fail", "type", btx.Type, "sender", sender, "err", err1)
		res.Code = Code(err1)
		res.Log = err1.Error()
	}
	return
}

// Process applies btx to st. A failed tx still returns its result so the
// caller can decide, through contest.KeepsState, whether st is kept.
func (h *txHandler) Process(ctx context.Context, st *state.State, btx *tx.ContestTx) (res *abcitypes.ExecTxResult, err error) {
	reg := st.Registry()
	if reg == nil {
		return nil, state.ErrRegistryUninitiated
	}
	sender, err := btx.Sender()
	if err != nil {
		return nil, err
	}
	buf := &contest.EventBuffer{}
	err = h.apply(reg, contest.Call{Caller: sender, Now: st.Time(), Events: buf}, btx)
	res = &abcitypes.ExecTxResult{Events: types.EncodeEvents(buf.Events)}
	if err != nil {
		h.logger.Info("process tx fail", "type", btx.Type, "sender", sender, "err", err)
		res.Code = Code(err)
		res.Log = err.Error()
	}
	return
}

// checkTime is the time mempool checks run at. The last block time lags
// behind, so the wall clock is used once it is ahead.
func checkTime(st *state.State) uint64 {
	now := uint64(time.Now().Unix())
	if t := st.Time(); t > now {
		return t
	}
	return now
}

func payload[T any](btx *tx.ContestTx) (*T, error) {
	p, ok := btx.Tx.(*T)
	if !ok {
		return nil, tx.ErrInvalidTx
	}
	return p, nil
}

// NewTxHandlers returns the handler of every supported tx type.
func NewTxHandlers(logger cmtlog.Logger) map[tx.ContestTxType]TxHandler {
	return map[tx.ContestTxType]TxHandler{
		tx.TxTypeCreateContest:   newTxHandler(logger, "createContest", createContest),
		tx.TxTypePause:           newTxHandler(logger, "pause", pause),
		tx.TxTypeDisqualify:      newTxHandler(logger, "disqualify", disqualify),
		tx.TxTypeSubmitArt:       newTxHandler(logger, "submitArt", submitArt),
		tx.TxTypeVote:            newTxHandler(logger, "vote", vote),
		tx.TxTypeFinalise:        newTxHandler(logger, "finalise", finalise),
		tx.TxTypeSetPayout:       newTxHandler(logger, "setPayout", setPayout),
		tx.TxTypeSubmissionProof: newTxHandler(logger, "submissionProof", submissionProof),
		tx.TxTypeVoteProof:       newTxHandler(logger, "voteProof", voteProof),
		tx.TxTypePolicyProof:     newTxHandler(logger, "policyProof", policyProof),
		tx.TxTypeProofFailure:    newTxHandler(logger, "proofFailure", proofFailure),
	}
}
