package tx

import (
	"errors"
)

type ContestTxType uint8

const (
	TxTypeUnknown         ContestTxType = 0
	TxTypeCreateContest   ContestTxType = 1
	TxTypePause           ContestTxType = 2
	TxTypeDisqualify      ContestTxType = 3
	TxTypeSubmitArt       ContestTxType = 4
	TxTypeVote            ContestTxType = 5
	TxTypeFinalise        ContestTxType = 6
	TxTypeSetPayout       ContestTxType = 7
	TxTypeSubmissionProof ContestTxType = 8
	TxTypeVoteProof       ContestTxType = 9
	TxTypePolicyProof     ContestTxType = 10
	TxTypeProofFailure    ContestTxType = 11
)

func (t ContestTxType) String() string {
	switch t {
	case TxTypeCreateContest:
		return "create_contest"
	case TxTypePause:
		return "pause"
	case TxTypeDisqualify:
		return "disqualify"
	case TxTypeSubmitArt:
		return "submit_art"
	case TxTypeVote:
		return "vote"
	case TxTypeFinalise:
		return "finalise"
	case TxTypeSetPayout:
		return "set_payout_proposal"
	case TxTypeSubmissionProof:
		return "submission_proof"
	case TxTypeVoteProof:
		return "vote_proof"
	case TxTypePolicyProof:
		return "policy_proof"
	case TxTypeProofFailure:
		return "proof_failure"
	}
	return "unknown"
}

const (
	TxVersion0 uint8 = 0
	TxVersion1 uint8 = 1
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
	ErrInvalidPubKey        = errors.New("invalid public key")
)
