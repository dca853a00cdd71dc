package contest

const (
	EventContestCreatedType     = "contest_created"
	EventArtSubmittedType       = "art_submitted"
	EventVoteRecordedType       = "vote_recorded"
	EventArtDisqualifiedType    = "art_disqualified"
	EventContestFinalisedType   = "contest_finalised"
	EventPayoutProposalType     = "payout_proposal_set"
	EventOracleRequestType      = "oracle_request"
	EventVerificationFailedType = "verification_failed"
)

type Event interface {
	EventType() string
}

// EventSink receives events as they happen. Emit must not block or fail the
// operation that produced the event.
type EventSink interface {
	Emit(e Event)
}

type EventSinkFunc func(e Event)

func (f EventSinkFunc) Emit(e Event) {
	f(e)
}

// EventBuffer collects events in emission order.
type EventBuffer struct {
	Events []Event
}

func (b *EventBuffer) Emit(e Event) {
	b.Events = append(b.Events, e)
}

type EventContestCreated struct {
	Session         SessionID `json:"session"`
	Creator         AccountID `json:"creator"`
	Title           string    `json:"title"`
	SubmissionStart uint64    `json:"submissionStart"`
	SubmissionEnd   uint64    `json:"submissionEnd"`
	VotingStart     uint64    `json:"votingStart"`
	VotingEnd       uint64    `json:"votingEnd"`
	Prize           float64   `json:"prize"`
	Places          int16     `json:"places"`
	Quorum          int16     `json:"quorum"`
	MinArtVote      int16     `json:"minArtVote"`
}

func (*EventContestCreated) EventType() string { return EventContestCreatedType }

type EventArtSubmitted struct {
	Session    SessionID `json:"session"`
	Artist     AccountID `json:"artist"`
	ContractID AccountID `json:"contractId"`
	TokenID    string    `json:"tokenId"`
}

func (*EventArtSubmitted) EventType() string { return EventArtSubmittedType }

type EventVoteRecorded struct {
	Session SessionID `json:"session"`
	Voter   AccountID `json:"voter"`
	Artist  AccountID `json:"artist"`
	Votes   uint32    `json:"votes"`
}

func (*EventVoteRecorded) EventType() string { return EventVoteRecordedType }

type EventArtDisqualified struct {
	Session SessionID `json:"session"`
	Artist  AccountID `json:"artist"`
	Reason  string    `json:"reason"`
}

func (*EventArtDisqualified) EventType() string { return EventArtDisqualifiedType }

type EventContestFinalised struct {
	Session SessionID `json:"session"`
	Payouts []Payout  `json:"payouts"`
}

func (*EventContestFinalised) EventType() string { return EventContestFinalisedType }

type EventPayoutProposal struct {
	Session    SessionID `json:"session"`
	Winner     AccountID `json:"winner"`
	ProposalID uint64    `json:"proposalId"`
}

func (*EventPayoutProposal) EventType() string { return EventPayoutProposalType }

type EventOracleRequest struct {
	Request Request `json:"request"`
}

func (*EventOracleRequest) EventType() string { return EventOracleRequestType }

type EventVerificationFailed struct {
	Request uint64    `json:"request"`
	Kind    Flow      `json:"kind"`
	Caller  AccountID `json:"caller"`
	Reason  string    `json:"reason"`
}

func (*EventVerificationFailed) EventType() string { return EventVerificationFailedType }
