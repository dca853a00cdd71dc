package handler

import (
	"errors"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/state"
	"github.com/calehh/contest-app/tx"
)

// Result codes reported in CheckTx and ExecTxResult. CodeInternal covers
// everything without a code of its own.
const (
	CodeOK       uint32 = 0
	CodeInternal uint32 = 1

	CodeInvalidTx           uint32 = 10
	CodeNonceInvalid        uint32 = 11
	CodeSigInvalid          uint32 = 12
	CodeRegistryUninitiated uint32 = 13

	CodePaused               uint32 = 20
	CodeUnauthorized         uint32 = 21
	CodeNotOracle            uint32 = 22
	CodeNotFound             uint32 = 23
	CodeSessionExists        uint32 = 24
	CodeInvalidConfig        uint32 = 25
	CodeSubmissionClosed     uint32 = 26
	CodeVotingClosed         uint32 = 27
	CodeDuplicateCandidate   uint32 = 28
	CodeDoubleVote           uint32 = 29
	CodeVotingOngoing        uint32 = 30
	CodeAlreadyFinalised     uint32 = 31
	CodeNotOwner             uint32 = 32
	CodeOwnershipLapsed      uint32 = 33
	CodeBlacklisted          uint32 = 34
	CodePendingVerification  uint32 = 35
	CodeRequestNotFound      uint32 = 36
	CodeRequestExpired       uint32 = 37
	CodeRequestKind          uint32 = 38
	CodeWinnerNotFound       uint32 = 39
	CodeUnauthorizedProposal uint32 = 40
)

var errCodes = []struct {
	kind error
	code uint32
}{
	{tx.ErrInvalidTx, CodeInvalidTx},
	{tx.ErrInvalidPubKey, CodeInvalidTx},
	{tx.ErrUnsupportedTxType, CodeInvalidTx},
	{tx.ErrUnsupportedTxVersion, CodeInvalidTx},
	{state.ErrTxNonceInvalid, CodeNonceInvalid},
	{state.ErrTxSigInvalid, CodeSigInvalid},
	{state.ErrRegistryUninitiated, CodeRegistryUninitiated},
	{contest.ErrPaused, CodePaused},
	{contest.ErrUnauthorized, CodeUnauthorized},
	{contest.ErrNotOracle, CodeNotOracle},
	{contest.ErrNotFound, CodeNotFound},
	{contest.ErrSessionExists, CodeSessionExists},
	{contest.ErrInvalidConfig, CodeInvalidConfig},
	{contest.ErrSubmissionClosed, CodeSubmissionClosed},
	{contest.ErrVotingClosed, CodeVotingClosed},
	{contest.ErrDuplicateCandidate, CodeDuplicateCandidate},
	{contest.ErrDoubleVote, CodeDoubleVote},
	{contest.ErrVotingOngoing, CodeVotingOngoing},
	{contest.ErrAlreadyFinalised, CodeAlreadyFinalised},
	{contest.ErrNotOwner, CodeNotOwner},
	{contest.ErrOwnershipLapsed, CodeOwnershipLapsed},
	{contest.ErrBlacklisted, CodeBlacklisted},
	{contest.ErrPendingVerification, CodePendingVerification},
	{contest.ErrRequestNotFound, CodeRequestNotFound},
	{contest.ErrRequestExpired, CodeRequestExpired},
	{contest.ErrRequestKind, CodeRequestKind},
	{contest.ErrWinnerNotFound, CodeWinnerNotFound},
	{contest.ErrUnauthorizedProposal, CodeUnauthorizedProposal},
}

// Code maps err to its result code.
func Code(err error) uint32 {
	if err == nil {
		return CodeOK
	}
	for _, c := range errCodes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return CodeInternal
}
