package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/state"
	"github.com/calehh/contest-app/tx/handler"
	"github.com/calehh/contest-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const codeUnknownPath uint32 = 404

func (app *ContestApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = codeUnknownPath
		res.Log = "unknown query path " + req.Path
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

// AccountQuerier answers with the account whose id is req.Data.
type AccountQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewAccountQuerier(db *state.StateDB, logger cmtlog.Logger) (q *AccountQuerier) {
	q = &AccountQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *AccountQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	a, height, err1 := q.db.GetAccount(contest.AccountID(req.Data))
	if err1 != nil {
		q.logger.Error("query account fail", "err", err1)
		res.Code = handler.CodeInternal
		res.Log = err1.Error()
		return
	}
	if a == nil {
		res.Code = handler.CodeNotFound
		res.Log = "account not found"
		return
	}
	res.Value, _ = json.Marshal(a)
	res.Height = int64(height)
	return
}

type queryFunc func(reg *contest.Registry, header *state.StateHeader, p *types.QueryParams) (any, error)

// ContestQuerier decodes req.Data as types.QueryParams and answers with the
// JSON encoding of fn's result.
type ContestQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
	fn     queryFunc
}

func NewContestQuerier(db *state.StateDB, logger cmtlog.Logger, fn queryFunc) (q *ContestQuerier) {
	q = &ContestQuerier{
		db:     db,
		logger: logger,
		fn:     fn,
	}
	return
}

func (q *ContestQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	p := &types.QueryParams{}
	if len(req.Data) != 0 {
		if err1 := json.Unmarshal(req.Data, p); err1 != nil {
			res.Code = handler.CodeInvalidTx
			res.Log = err1.Error()
			return
		}
	}
	err1 := q.db.View(func(reg *contest.Registry, header *state.StateHeader) error {
		v, err := q.fn(reg, header, p)
		if err != nil {
			return err
		}
		res.Value, err = json.Marshal(v)
		res.Height = int64(header.Height)
		return err
	})
	if err1 != nil {
		if !errors.Is(err1, contest.ErrNotFound) {
			q.logger.Info("query fail", "path", req.Path, "err", err1)
		}
		res.Code = handler.Code(err1)
		res.Log = err1.Error()
	}
	return
}

var contestQueries = map[string]queryFunc{
	types.QueryContests: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		if p.Account != "" {
			return reg.ContestsByCreator(contest.AccountID(p.Account)), nil
		}
		return reg.Contests(), nil
	},
	types.QueryContest: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.ContestDetail(contest.SessionID(p.Session))
	},
	types.QueryArts: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.ContestArts(contest.SessionID(p.Session))
	},
	types.QueryArt: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.ArtistArt(contest.SessionID(p.Session), contest.AccountID(p.Account))
	},
	types.QueryArtVoters: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.ArtVoters(contest.SessionID(p.Session), contest.AccountID(p.Account))
	},
	types.QueryVotes: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.AllUserVoted(contest.SessionID(p.Session))
	},
	types.QueryUserVoted: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.UserVoted(contest.SessionID(p.Session), contest.AccountID(p.Account))
	},
	types.QueryWinners: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.Winners(contest.SessionID(p.Session))
	},
	types.QueryWinnerPayout: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.WinnerPayoutInfo(contest.SessionID(p.Session), contest.AccountID(p.Account))
	},
	types.QueryEntries: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.UserEntries(contest.AccountID(p.Account)), nil
	},
	types.QueryRequest: func(reg *contest.Registry, _ *state.StateHeader, p *types.QueryParams) (any, error) {
		return reg.Request(p.Request)
	},
	types.QueryRequests: func(reg *contest.Registry, _ *state.StateHeader, _ *types.QueryParams) (any, error) {
		return reg.OpenRequests(), nil
	},
	types.QueryContestStatus: func(reg *contest.Registry, header *state.StateHeader, p *types.QueryParams) (any, error) {
		id := contest.SessionID(p.Session)
		sub, err := reg.IsSubmissionActive(id, header.Time)
		if err != nil {
			return nil, err
		}
		vote, err := reg.IsVotingActive(id, header.Time)
		if err != nil {
			return nil, err
		}
		return &types.ContestStatus{
			Session:          p.Session,
			Time:             header.Time,
			SubmissionActive: sub,
			VotingActive:     vote,
		}, nil
	},
}
