package handler

import (
	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/tx"
)

func setPayout(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.SetPayoutTx](btx)
	if err != nil {
		return err
	}
	_, err = reg.SetPayoutProposalID(call, contest.SessionID(stx.Session), stx.Winner, stx.ProposalID)
	return err
}

func policyProof(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.PolicyProofTx](btx)
	if err != nil {
		return err
	}
	return reg.OnPolicyVerified(call, stx.Request, stx.Proof)
}

func proofFailure(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.ProofFailureTx](btx)
	if err != nil {
		return err
	}
	return reg.OnVerificationFailed(call, stx.Request, stx.Reason)
}
