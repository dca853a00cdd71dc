package tx

import (
	"encoding/json"

	"github.com/calehh/contest-app/contest"
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// ContestTx is the signed envelope of every transaction. The sender is the
// account derived from PubKey.
type ContestTx struct {
	Version uint8         `json:"version"`
	Type    ContestTxType `json:"type"`
	Nonce   uint64        `json:"nonce"`
	PubKey  []byte        `json:"pubKey"`
	Tx      any           `json:"tx"`
	Sig     [][]byte      `json:"sig"`
}

type CreateContestTx struct {
	Contest contest.Config `json:"contest"`
}

type PauseTx struct {
	Paused bool `json:"paused"`
}

type DisqualifyTx struct {
	Session uint64            `json:"session"`
	Artist  contest.AccountID `json:"artist"`
}

type SubmitArtTx struct {
	Session    uint64            `json:"session"`
	ContractID contest.AccountID `json:"contractId"`
	TokenID    string            `json:"tokenId"`
}

type VoteTx struct {
	Session uint64            `json:"session"`
	Artist  contest.AccountID `json:"artist"`
}

type FinaliseTx struct {
	Session uint64 `json:"session"`
}

type SetPayoutTx struct {
	Session    uint64            `json:"session"`
	Winner     contest.AccountID `json:"winner"`
	ProposalID uint64            `json:"proposalId"`
}

type OwnershipProofTx struct {
	Request uint64                 `json:"request"`
	Proof   contest.OwnershipProof `json:"proof"`
}

type PolicyProofTx struct {
	Request uint64              `json:"request"`
	Proof   contest.PolicyProof `json:"proof"`
}

type ProofFailureTx struct {
	Request uint64 `json:"request"`
	Reason  string `json:"reason"`
}

type contestTxTmpl[Tx any] struct {
	Version uint8         `json:"version"`
	Type    ContestTxType `json:"type"`
	Nonce   uint64        `json:"nonce"`
	PubKey  []byte        `json:"pubKey"`
	Tx      Tx            `json:"tx"`
	Sig     [][]byte      `json:"sig"`
}

// SigData is the payload covered by the signature: the tx with its
// signatures replaced by ext, the chain id.
func (tx *ContestTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func (tx *ContestTx) Sender() (contest.AccountID, error) {
	if len(tx.PubKey) != ed25519.PubKeySize {
		return "", ErrInvalidPubKey
	}
	return AccountOf(tx.PubKey), nil
}

// AccountOf derives the account id of an ed25519 public key.
func AccountOf(pubKey []byte) contest.AccountID {
	return contest.AccountID(ed25519.PubKey(pubKey).Address().String())
}

func (tx *ContestTx) Verify(chainID string) bool {
	if len(tx.PubKey) != ed25519.PubKeySize || len(tx.Sig) != 1 {
		return false
	}
	dat, err := tx.SigData([]byte(chainID))
	if err != nil {
		return false
	}
	return ed25519.PubKey(tx.PubKey).VerifySignature(dat, tx.Sig[0])
}

// Signer signs transaction payloads.
type Signer interface {
	PublicKey() []byte
	Sign(data []byte) ([]byte, error)
}

// Sign fills in PubKey and Sig for chainID.
func (tx *ContestTx) Sign(chainID string, signer Signer) error {
	tx.PubKey = signer.PublicKey()
	tx.Sig = nil
	dat, err := tx.SigData([]byte(chainID))
	if err != nil {
		return err
	}
	sig, err := signer.Sign(dat)
	if err != nil {
		return err
	}
	tx.Sig = [][]byte{sig}
	return nil
}

func parseContestTxType(dat []byte) ContestTxType {
	var tx struct {
		Type ContestTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return TxTypeUnknown
	}
	return tx.Type
}

func unmarshalContestTx[Tx any](dat []byte) (btx *ContestTx, err error) {
	var txt contestTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version != TxVersion1 {
		return nil, ErrUnsupportedTxVersion
	}
	btx = new(ContestTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.PubKey = txt.PubKey
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalContestTx(dat []byte) (btx *ContestTx, err error) {
	switch parseContestTxType(dat) {
	case TxTypeCreateContest:
		return unmarshalContestTx[CreateContestTx](dat)
	case TxTypePause:
		return unmarshalContestTx[PauseTx](dat)
	case TxTypeDisqualify:
		return unmarshalContestTx[DisqualifyTx](dat)
	case TxTypeSubmitArt:
		return unmarshalContestTx[SubmitArtTx](dat)
	case TxTypeVote:
		return unmarshalContestTx[VoteTx](dat)
	case TxTypeFinalise:
		return unmarshalContestTx[FinaliseTx](dat)
	case TxTypeSetPayout:
		return unmarshalContestTx[SetPayoutTx](dat)
	case TxTypeSubmissionProof, TxTypeVoteProof:
		return unmarshalContestTx[OwnershipProofTx](dat)
	case TxTypePolicyProof:
		return unmarshalContestTx[PolicyProofTx](dat)
	case TxTypeProofFailure:
		return unmarshalContestTx[ProofFailureTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalContestTx(btx *ContestTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
