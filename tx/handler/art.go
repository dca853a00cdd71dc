package handler

import (
	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/tx"
)

func submitArt(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.SubmitArtTx](btx)
	if err != nil {
		return err
	}
	if stx.ContractID == "" || stx.TokenID == "" {
		return tx.ErrInvalidTx
	}
	_, err = reg.SubmitArt(call, contest.SessionID(stx.Session), stx.ContractID, stx.TokenID)
	return err
}

func vote(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.VoteTx](btx)
	if err != nil {
		return err
	}
	_, err = reg.Vote(call, contest.SessionID(stx.Session), stx.Artist)
	return err
}

func submissionProof(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.OwnershipProofTx](btx)
	if err != nil {
		return err
	}
	return reg.OnSubmissionVerified(call, stx.Request, stx.Proof)
}

func voteProof(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.OwnershipProofTx](btx)
	if err != nil {
		return err
	}
	return reg.OnVoteVerified(call, stx.Request, stx.Proof)
}
