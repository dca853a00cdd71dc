package contest

import "sort"

type AccountID string

type SessionID uint64

const DefaultArtTitle = "UnTitled"

// Config is the creator supplied part of a contest. Times are unix seconds.
type Config struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DaoID           string  `json:"daoId"`
	LogoURL         string  `json:"logoUrl"`
	SubmissionStart uint64  `json:"submissionStart"`
	SubmissionEnd   uint64  `json:"submissionEnd"`
	VotingStart     uint64  `json:"votingStart"`
	VotingEnd       uint64  `json:"votingEnd"`
	Prize           float64 `json:"prize"`
	Places          int16   `json:"places"`
	Quorum          int16   `json:"quorum"`
	MinArtVote      int16   `json:"minArtVote"`
}

func (c *Config) Validate() error {
	if c.Prize < 0 {
		return errorf(ErrInvalidConfig, "negative prize")
	}
	return nil
}

type Art struct {
	Title      string    `json:"title"`
	ContractID AccountID `json:"contractId"`
	TokenID    string    `json:"tokenId"`
	ImageURL   string    `json:"imageUrl"`
	Timestamp  uint64    `json:"timestamp"`
	Votes      uint32    `json:"votes"`
}

type PayoutInfo struct {
	Amount     float64 `json:"amount"`
	ProposalID *uint64 `json:"proposalId,omitempty"`
}

// Call carries the caller and block context into a mutating operation.
type Call struct {
	Caller AccountID
	Now    uint64
	Events EventSink
}

func (c Call) emit(e Event) {
	if c.Events != nil {
		c.Events.Emit(e)
	}
}

type SessionDetail struct {
	ID              SessionID   `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	DaoID           string      `json:"daoId"`
	LogoURL         string      `json:"logoUrl"`
	SubmissionStart uint64      `json:"submissionStart"`
	SubmissionEnd   uint64      `json:"submissionEnd"`
	VotingStart     uint64      `json:"votingStart"`
	VotingEnd       uint64      `json:"votingEnd"`
	Prize           float64     `json:"prize"`
	Places          int16       `json:"places"`
	Quorum          int16       `json:"quorum"`
	MinArtVote      int16       `json:"minArtVote"`
	Creator         AccountID   `json:"creator"`
	Submissions     int         `json:"submissions"`
	Winners         []AccountID `json:"winners"`
	Finalised       bool        `json:"finalised"`
}

type ArtEntry struct {
	Artist AccountID `json:"artist"`
	Art
}

type WinnerEntry struct {
	Winner AccountID `json:"winner"`
	PayoutInfo
}

func sortedAccounts[V any](m map[AccountID]V) []AccountID {
	ids := make([]AccountID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

func containsAccount(list []AccountID, id AccountID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
