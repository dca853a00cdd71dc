package types

// ABCI query paths served by the app.
const (
	QueryAccounts      = "/accounts/"
	QueryContests      = "/contests/"
	QueryContest       = "/contest/"
	QueryArts          = "/arts/"
	QueryArt           = "/art/"
	QueryArtVoters     = "/voters/"
	QueryVotes         = "/votes/"
	QueryUserVoted     = "/voted/"
	QueryWinners       = "/winners/"
	QueryWinnerPayout  = "/payout/"
	QueryEntries       = "/entries/"
	QueryRequest       = "/request/"
	QueryRequests      = "/requests/"
	QueryContestStatus = "/status/"
)

// QueryParams is the JSON body of a contest query. Unused fields are ignored.
type QueryParams struct {
	Session uint64 `json:"session,omitempty"`
	Account string `json:"account,omitempty"`
	Request uint64 `json:"request,omitempty"`
}

type ContestStatus struct {
	Session          uint64 `json:"session"`
	Time             uint64 `json:"time"`
	SubmissionActive bool   `json:"submissionActive"`
	VotingActive     bool   `json:"votingActive"`
}
