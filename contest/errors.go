package contest

import (
	"errors"
	"fmt"
)

// voter eligibility
var (
	ErrWrongIssuer        = errors.New("expected human SBTs proof from the human issuer only")
	ErrNoSBTs             = errors.New("voter is not a verified human, expected IAH SBTs proof from the IAH issuer only")
	ErrDuplicateCandidate = errors.New("artist already has a submission for this contest")
	ErrDoubleVote         = errors.New("double vote")
	ErrMinBond            = errors.New("bond below minimum")
	ErrBlacklisted        = errors.New("user is blacklisted/no longer owns nft")
	ErrNoBond             = errors.New("voter didn't bond")

	ErrNotActive      = errors.New("can only revoke votes between proposal start and (end time + cooldown)")
	ErrNotVoted       = errors.New("voter did not vote on this proposal or the vote has been already revoked")
	ErrNotBlacklisted = errors.New("can not revoke a not blacklisted voter")
)

var (
	ErrPaused               = errors.New("contract paused")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotOracle            = errors.New("caller is not the oracle")
	ErrNotFound             = errors.New("not found")
	ErrSessionExists        = errors.New("contest exists")
	ErrInvalidConfig        = errors.New("invalid contest config")
	ErrSubmissionClosed     = errors.New("submission not active")
	ErrVotingClosed         = errors.New("voting not active")
	ErrVotingOngoing        = errors.New("voting ongoing")
	ErrAlreadyFinalised     = errors.New("contest already finalised")
	ErrNotOwner             = errors.New("not owner")
	ErrOwnershipLapsed      = errors.New("user disqualified, no longer owns nft")
	ErrPendingVerification  = errors.New("verification already pending")
	ErrRequestNotFound      = errors.New("verification request not found")
	ErrRequestExpired       = errors.New("verification request expired")
	ErrRequestKind          = errors.New("verification request kind mismatch")
	ErrWinnerNotFound       = errors.New("winner not found")
	ErrUnauthorizedProposal = errors.New("unauthorized to set id")
	ErrVerificationFailed   = errors.New("verification failed")
)

// ContestError attaches call context to one of the error kinds above.
type ContestError struct {
	Kind error
	Msg  string
}

func (e *ContestError) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ContestError) Unwrap() error {
	return e.Kind
}

func errorf(kind error, format string, args ...any) error {
	return &ContestError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

type DoubleVoteError struct {
	Token string
}

func (e *DoubleVoteError) Error() string {
	return fmt.Sprintf("user already voted with sbt=%s", e.Token)
}

func (e *DoubleVoteError) Is(target error) bool {
	return target == ErrDoubleVote
}

type MinBondError struct {
	Required  uint64
	Deposited uint64
}

func (e *MinBondError) Error() string {
	return fmt.Sprintf("required bond amount=%d, deposited=%d", e.Required, e.Deposited)
}

func (e *MinBondError) Is(target error) bool {
	return target == ErrMinBond
}

// ResolvedError is returned by callbacks that failed after consuming their
// request. Changes made before the failure must be committed.
type ResolvedError struct {
	RequestID uint64
	Err       error
}

func (e *ResolvedError) Error() string {
	return fmt.Sprintf("request %d: %v", e.RequestID, e.Err)
}

func (e *ResolvedError) Unwrap() error {
	return e.Err
}

// KeepsState reports whether the state changes made by a failed call must
// still be committed.
func KeepsState(err error) bool {
	var re *ResolvedError
	return errors.As(err, &re)
}
