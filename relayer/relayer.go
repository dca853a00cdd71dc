package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/oracle"
	"github.com/calehh/contest-app/state"
	"github.com/calehh/contest-app/tx"
	"github.com/calehh/contest-app/tx/handler"
	"github.com/calehh/contest-app/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// ChainClient is the part of the CometBFT RPC client the relayer uses.
type ChainClient interface {
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
	BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error)
	ABCIQuery(ctx context.Context, path string, data cmtbytes.HexBytes) (*coretypes.ResultABCIQuery, error)
	BroadcastTxSync(ctx context.Context, tx cmttypes.Tx) (*coretypes.ResultBroadcastTx, error)
}

// Signer signs callback transactions as the oracle account.
type Signer interface {
	tx.Signer
	Account() contest.AccountID
}

// Relayer follows the chain, answers every oracle_request event by asking
// the oracle, and submits the answer back as a callback transaction.
type Relayer struct {
	logger       cmtlog.Logger
	db           *gorm.DB
	cli          ChainClient
	oracle       oracle.Client
	signer       Signer
	chainID      string
	pollInterval time.Duration

	Height        int64
	nonce         uint64
	nonceLoaded   bool
	eventHandlers map[string]eventHandler
}

func NewRelayer(logger cmtlog.Logger, dbPath string, cli ChainClient, oc oracle.Client, signer Signer, pollInterval time.Duration) (*Relayer, error) {
	logger = logger.With("module", "relayer")
	logger.Info("NewRelayer", "dbPath", dbPath, "account", signer.Account())
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &Fulfilment{}).Error; err != nil {
		return nil, err
	}
	h := Height{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	r := &Relayer{
		logger:       logger,
		db:           db,
		cli:          cli,
		oracle:       oc,
		signer:       signer,
		pollInterval: pollInterval,
		Height:       int64(h.Height),
	}
	r.eventHandlers = map[string]eventHandler{
		contest.EventOracleRequestType:      r.handleEventOracleRequest,
		contest.EventVerificationFailedType: r.handleEventVerificationFailed,
	}
	return r, nil
}

func (r *Relayer) Close() error {
	return r.db.Close()
}

type eventHandler func(ctx context.Context, event abci.Event, blk *blockInfo) error

type blockInfo struct {
	height int64
	now    uint64
}

func (r *Relayer) Start(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sync(ctx); err != nil {
				r.logger.Error("sync fail", "height", r.Height, "err", err)
			}
		}
	}
}

// Sync handles every block after the stored height up to the latest one.
// A block is marked done only once all its requests were answered.
func (r *Relayer) Sync(ctx context.Context) error {
	status, err := r.cli.Status(ctx)
	if err != nil {
		return err
	}
	if r.chainID == "" {
		r.chainID = status.NodeInfo.Network
	}
	now := uint64(status.SyncInfo.LatestBlockTime.Unix())
	for status.SyncInfo.LatestBlockHeight > r.Height {
		height := r.Height + 1
		if err := r.processBlock(ctx, &blockInfo{height: height, now: now}); err != nil {
			return err
		}
		if err := r.db.Save(&Height{Id: 1, Height: uint64(height)}).Error; err != nil {
			return err
		}
		r.Height = height
	}
	return nil
}

func (r *Relayer) processBlock(ctx context.Context, blk *blockInfo) error {
	res, err := r.cli.BlockResults(ctx, &blk.height)
	if err != nil {
		return err
	}
	for _, txRes := range res.TxsResults {
		for _, event := range txRes.Events {
			if err := r.handleEvent(ctx, event, blk); err != nil {
				return err
			}
		}
	}
	for _, event := range res.FinalizeBlockEvents {
		if err := r.handleEvent(ctx, event, blk); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relayer) handleEvent(ctx context.Context, event abci.Event, blk *blockInfo) error {
	if h, ok := r.eventHandlers[event.Type]; ok {
		return h(ctx, event, blk)
	}
	return nil
}

func (r *Relayer) handleEventOracleRequest(ctx context.Context, event abci.Event, blk *blockInfo) error {
	req := types.DecodeEventOracleRequest(event)
	if req == nil {
		r.logger.Error("decode event fail", "event", event)
		return nil
	}
	var f Fulfilment
	err := r.db.First(&f, req.ID).Error
	if err == nil && f.Status != StatusFailed {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	f = Fulfilment{
		Id:        req.ID,
		Kind:      uint8(req.Kind),
		Session:   uint64(req.Session),
		Caller:    string(req.Caller),
		Artist:    string(req.Artist),
		Height:    uint64(blk.height),
		ExpiresAt: req.ExpiresAt,
	}
	if req.Expired(blk.now) {
		f.Status = StatusExpired
		return r.db.Save(&f).Error
	}

	btx, err := r.answer(ctx, req)
	if err != nil {
		return err
	}
	f.TxType = uint8(btx.Type)
	hash, err := r.broadcast(ctx, btx)
	if err != nil {
		var rejected *RejectedError
		if !errors.As(err, &rejected) {
			return err
		}
		r.logger.Error("callback rejected", "request", req.ID, "code", rejected.Code, "log", rejected.Log)
		f.Status = StatusFailed
		f.Reason = rejected.Log
		return r.db.Save(&f).Error
	}
	f.Status = StatusSent
	f.TxHash = hash
	r.logger.Info("request answered", "request", req.ID, "kind", req.Kind, "tx", btx.Type, "hash", hash)
	return r.db.Save(&f).Error
}

func (r *Relayer) handleEventVerificationFailed(ctx context.Context, event abci.Event, blk *blockInfo) error {
	id := types.DecodeEventVerificationFailed(event)
	if id == 0 {
		return nil
	}
	reason := ""
	for _, attr := range event.Attributes {
		if attr.Key == "reason" {
			reason = attr.Value
		}
	}
	return r.db.Model(&Fulfilment{}).Where("id = ?", id).Updates(map[string]any{
		"status": StatusClosed,
		"reason": reason,
	}).Error
}

// answer asks the oracle about req and builds the callback tx. A question the
// oracle cannot answer becomes a proof failure so the caller may retry.
func (r *Relayer) answer(ctx context.Context, req *contest.Request) (*tx.ContestTx, error) {
	btx := &tx.ContestTx{Version: tx.TxVersion1}
	switch req.Kind {
	case contest.FlowSubmission, contest.FlowVote:
		proof, err := r.oracle.GetToken(ctx, req.ContractID, req.TokenID)
		if errors.Is(err, oracle.ErrTokenNotFound) {
			return proofFailure(req, err), nil
		}
		if err != nil {
			return nil, err
		}
		btx.Type = tx.TxTypeSubmissionProof
		if req.Kind == contest.FlowVote {
			btx.Type = tx.TxTypeVoteProof
		}
		btx.Tx = &tx.OwnershipProofTx{Request: req.ID, Proof: *proof}
	case contest.FlowPayout:
		proof, err := r.oracle.GetPolicy(ctx, req.DaoID, req.Caller)
		if errors.Is(err, oracle.ErrDaoNotFound) {
			return proofFailure(req, err), nil
		}
		if err != nil {
			return nil, err
		}
		btx.Type = tx.TxTypePolicyProof
		btx.Tx = &tx.PolicyProofTx{Request: req.ID, Proof: *proof}
	default:
		return proofFailure(req, fmt.Errorf("unknown request kind %d", req.Kind)), nil
	}
	return btx, nil
}

func proofFailure(req *contest.Request, err error) *tx.ContestTx {
	return &tx.ContestTx{
		Version: tx.TxVersion1,
		Type:    tx.TxTypeProofFailure,
		Tx:      &tx.ProofFailureTx{Request: req.ID, Reason: err.Error()},
	}
}

// RejectedError is a callback the node refused in CheckTx.
type RejectedError struct {
	Code uint32
	Log  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("tx rejected code=%d: %s", e.Code, e.Log)
}

func (r *Relayer) loadNonce(ctx context.Context) error {
	res, err := r.cli.ABCIQuery(ctx, types.QueryAccounts, []byte(r.signer.Account()))
	if err != nil {
		return err
	}
	switch res.Response.Code {
	case handler.CodeOK:
		var acnt state.Account
		if err := json.Unmarshal(res.Response.Value, &acnt); err != nil {
			return err
		}
		r.nonce = acnt.Nonce
	case handler.CodeNotFound:
		r.nonce = 0
	default:
		return fmt.Errorf("query account code=%d: %s", res.Response.Code, res.Response.Log)
	}
	r.nonceLoaded = true
	return nil
}

// broadcast signs btx with the next nonce and submits it. The nonce is
// reloaded from the chain once if the node reports it stale.
func (r *Relayer) broadcast(ctx context.Context, btx *tx.ContestTx) (hash string, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		if !r.nonceLoaded {
			if err = r.loadNonce(ctx); err != nil {
				return "", err
			}
		}
		btx.Nonce = r.nonce
		if err = btx.Sign(r.chainID, r.signer); err != nil {
			return "", err
		}
		var dat []byte
		if dat, err = tx.MarshalContestTx(btx); err != nil {
			return "", err
		}
		var res *coretypes.ResultBroadcastTx
		res, err = r.cli.BroadcastTxSync(ctx, dat)
		if err != nil {
			return "", err
		}
		if res.Code == handler.CodeOK {
			r.nonce++
			return res.Hash.String(), nil
		}
		err = &RejectedError{Code: res.Code, Log: res.Log}
		if res.Code != handler.CodeNonceInvalid {
			return "", err
		}
		r.nonceLoaded = false
	}
	return "", err
}

func (r *Relayer) getFulfilment(id uint64) (Fulfilment, error) {
	var f Fulfilment
	err := r.db.First(&f, id).Error
	return f, err
}

func (r *Relayer) getFulfilments(status string, page int, pageSize int) ([]Fulfilment, uint64, error) {
	var fs []Fulfilment
	var total uint64
	q := r.db.Model(&Fulfilment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&fs).Error; err != nil {
		return nil, 0, err
	}
	return fs, total, nil
}
