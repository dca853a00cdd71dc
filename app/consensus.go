package app

import (
	"context"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/state"
	"github.com/calehh/contest-app/tx"
	"github.com/calehh/contest-app/tx/handler"
	"github.com/calehh/contest-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

func (app *ContestApp) getState() (st *state.State) {
	st = app.db.NewState()
	app.st = st
	return
}

func (app *ContestApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.ContestTx, err error) {
	btx, err = tx.UnmarshalContestTx(txDat)
	if err != nil {
		return
	}
	_, err = st.Verify(btx, allowNonceGap)
	return
}

func (app *ContestApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: handler.CodeOK}
	st := app.db.State()
	btx, err := app.parseTx(st, check.Tx, true)
	if err != nil {
		app.logger.Info("parse tx fail", "err", err)
		res.Code = handler.Code(err)
		res.Log = err.Error()
		err = nil
		return
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		app.logger.Error("unsupported tx", "type", btx.Type)
		res.Code = handler.Code(tx.ErrUnsupportedTxType)
		res.Log = "unsupported tx"
		return
	}
	res, err = h.Check(ctx, st, btx)
	if err != nil {
		app.logger.Error("check tx fail", "err", err)
		res = &abcitypes.ResponseCheckTx{Code: handler.Code(err), Log: err.Error()}
		err = nil
	}
	return
}

// PrepareProposal drops txs that cannot be delivered in order: malformed,
// badly signed, or out of nonce sequence.
func (app *ContestApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	st := app.db.NewState()
	txs := make([][]byte, 0, len(proposal.Txs))
	var size int64
	for _, stx := range proposal.Txs {
		btx, err := app.parseTx(st, stx, false)
		if err != nil {
			app.logger.Info("PrepareProposal drop tx", "err", err)
			continue
		}
		if _, ok := app.txHdlrs[btx.Type]; !ok {
			app.logger.Info("PrepareProposal drop tx", "type", btx.Type)
			continue
		}
		size += int64(len(stx))
		if proposal.MaxTxBytes > 0 && size > proposal.MaxTxBytes {
			break
		}
		if err := st.IncNonce(btx); err != nil {
			app.logger.Error("PrepareProposal inc nonce fail", "err", err)
			continue
		}
		txs = append(txs, stx)
	}
	return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
}

func (app *ContestApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	for _, stx := range proposal.Txs {
		btx, err := tx.UnmarshalContestTx(stx)
		if err != nil {
			app.logger.Error("ProcessProposal parse tx fail", "height", proposal.Height, "err", err)
			return res, nil
		}
		if _, ok := app.txHdlrs[btx.Type]; !ok {
			app.logger.Error("ProcessProposal unsupported tx", "height", proposal.Height, "type", btx.Type)
			return res, nil
		}
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	return res, nil
}

// deliverTx runs one block tx. The sender nonce is consumed by every well
// formed tx; registry changes are kept only on success or when the failure
// must still be recorded.
func (app *ContestApp) deliverTx(ctx context.Context, st *state.State, stx []byte) (*state.State, *abcitypes.ExecTxResult) {
	btx, err := app.parseTx(st, stx, false)
	if err != nil {
		return st, &abcitypes.ExecTxResult{Code: handler.Code(err), Log: err.Error()}
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		return st, &abcitypes.ExecTxResult{Code: handler.Code(tx.ErrUnsupportedTxType), Log: tx.ErrUnsupportedTxType.Error()}
	}
	if err = st.IncNonce(btx); err != nil {
		return st, &abcitypes.ExecTxResult{Code: handler.Code(err), Log: err.Error()}
	}
	next := st.Clone()
	res, err := h.Process(ctx, next, btx)
	if res == nil {
		res = &abcitypes.ExecTxResult{Code: handler.Code(err), Log: err.Error()}
	}
	if err == nil || contest.KeepsState(err) {
		return next, res
	}
	res.Events = nil
	return st, res
}

func (app *ContestApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	app.lastBlk.Set(req)
	st := app.getState()
	st.SetTime(uint64(req.Time.Unix()))

	res := make([]*abcitypes.ExecTxResult, len(req.Txs))
	for i, stx := range req.Txs {
		st, res[i] = app.deliverTx(ctx, st, stx)
		if res[i].Code != handler.CodeOK {
			app.logger.Info("tx failed", "height", req.Height, "index", i, "code", res[i].Code, "log", res[i].Log)
		}
	}

	var events []abcitypes.Event
	if reg := st.Registry(); reg != nil {
		buf := &contest.EventBuffer{}
		if n := reg.PruneExpired(contest.Call{Now: st.Time(), Events: buf}); n > 0 {
			app.logger.Info("pruned expired requests", "height", req.Height, "count", n)
		}
		events = types.EncodeEvents(buf.Events)
	}

	h, err := st.Update()
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	app.st = st
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
		Events:    events,
	}, nil
}

func (app *ContestApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	_, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.st = nil
	app.logger.Info("Commit", "height", app.lastBlk.Height)
	return &abcitypes.ResponseCommit{}, nil
}
