package types

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/calehh/contest-app/contest"
	abci "github.com/cometbft/cometbft/abci/types"
)

// EncodeEvent converts a contest event into an ABCI event. Identifiers are
// indexed so they can be searched through the tx and block search endpoints.
func EncodeEvent(e contest.Event) abci.Event {
	switch ev := e.(type) {
	case *contest.EventContestCreated:
		return encodeEventContestCreated(ev)
	case *contest.EventArtSubmitted:
		return abci.Event{
			Type: ev.EventType(),
			Attributes: []abci.EventAttribute{
				{Key: "session", Value: fmt.Sprintf("%v", ev.Session), Index: true},
				{Key: "artist", Value: string(ev.Artist), Index: true},
				{Key: "contractId", Value: string(ev.ContractID), Index: false},
				{Key: "tokenId", Value: ev.TokenID, Index: false},
			},
		}
	case *contest.EventVoteRecorded:
		return abci.Event{
			Type: ev.EventType(),
			Attributes: []abci.EventAttribute{
				{Key: "session", Value: fmt.Sprintf("%v", ev.Session), Index: true},
				{Key: "voter", Value: string(ev.Voter), Index: true},
				{Key: "artist", Value: string(ev.Artist), Index: true},
				{Key: "votes", Value: fmt.Sprintf("%v", ev.Votes), Index: false},
			},
		}
	case *contest.EventArtDisqualified:
		return abci.Event{
			Type: ev.EventType(),
			Attributes: []abci.EventAttribute{
				{Key: "session", Value: fmt.Sprintf("%v", ev.Session), Index: true},
				{Key: "artist", Value: string(ev.Artist), Index: true},
				{Key: "reason", Value: ev.Reason, Index: false},
			},
		}
	case *contest.EventContestFinalised:
		payouts, _ := json.Marshal(ev.Payouts)
		return abci.Event{
			Type: ev.EventType(),
			Attributes: []abci.EventAttribute{
				{Key: "session", Value: fmt.Sprintf("%v", ev.Session), Index: true},
				{Key: "payouts", Value: string(payouts), Index: false},
			},
		}
	case *contest.EventPayoutProposal:
		return abci.Event{
			Type: ev.EventType(),
			Attributes: []abci.EventAttribute{
				{Key: "session", Value: fmt.Sprintf("%v", ev.Session), Index: true},
				{Key: "winner", Value: string(ev.Winner), Index: true},
				{Key: "proposalId", Value: fmt.Sprintf("%v", ev.ProposalID), Index: false},
			},
		}
	case *contest.EventOracleRequest:
		return encodeEventOracleRequest(ev)
	case *contest.EventVerificationFailed:
		return abci.Event{
			Type: ev.EventType(),
			Attributes: []abci.EventAttribute{
				{Key: "request", Value: fmt.Sprintf("%v", ev.Request), Index: true},
				{Key: "kind", Value: fmt.Sprintf("%v", uint8(ev.Kind)), Index: false},
				{Key: "caller", Value: string(ev.Caller), Index: true},
				{Key: "reason", Value: ev.Reason, Index: false},
			},
		}
	}
	return abci.Event{Type: e.EventType()}
}

func EncodeEvents(events []contest.Event) []abci.Event {
	res := make([]abci.Event, 0, len(events))
	for _, e := range events {
		res = append(res, EncodeEvent(e))
	}
	return res
}

func encodeEventContestCreated(ev *contest.EventContestCreated) abci.Event {
	return abci.Event{
		Type: ev.EventType(),
		Attributes: []abci.EventAttribute{
			{Key: "session", Value: fmt.Sprintf("%v", ev.Session), Index: true},
			{Key: "creator", Value: string(ev.Creator), Index: true},
			{Key: "title", Value: ev.Title, Index: false},
			{Key: "submissionStart", Value: fmt.Sprintf("%v", ev.SubmissionStart), Index: false},
			{Key: "submissionEnd", Value: fmt.Sprintf("%v", ev.SubmissionEnd), Index: false},
			{Key: "votingStart", Value: fmt.Sprintf("%v", ev.VotingStart), Index: false},
			{Key: "votingEnd", Value: fmt.Sprintf("%v", ev.VotingEnd), Index: false},
			{Key: "prize", Value: strconv.FormatFloat(ev.Prize, 'f', -1, 64), Index: false},
			{Key: "places", Value: fmt.Sprintf("%v", ev.Places), Index: false},
			{Key: "quorum", Value: fmt.Sprintf("%v", ev.Quorum), Index: false},
			{Key: "minArtVote", Value: fmt.Sprintf("%v", ev.MinArtVote), Index: false},
		},
	}
}

func DecodeEventContestCreated(originEvent abci.Event) *contest.EventContestCreated {
	if originEvent.Type != contest.EventContestCreatedType {
		return nil
	}
	event := &contest.EventContestCreated{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "session":
			var id uint64
			id, err = strconv.ParseUint(v.Value, 10, 64)
			event.Session = contest.SessionID(id)
		case "creator":
			event.Creator = contest.AccountID(v.Value)
		case "title":
			event.Title = v.Value
		case "submissionStart":
			event.SubmissionStart, err = strconv.ParseUint(v.Value, 10, 64)
		case "submissionEnd":
			event.SubmissionEnd, err = strconv.ParseUint(v.Value, 10, 64)
		case "votingStart":
			event.VotingStart, err = strconv.ParseUint(v.Value, 10, 64)
		case "votingEnd":
			event.VotingEnd, err = strconv.ParseUint(v.Value, 10, 64)
		case "prize":
			event.Prize, err = strconv.ParseFloat(v.Value, 64)
		case "places":
			event.Places, err = parseInt16(v.Value)
		case "quorum":
			event.Quorum, err = parseInt16(v.Value)
		case "minArtVote":
			event.MinArtVote, err = parseInt16(v.Value)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

func parseInt16(s string) (int16, error) {
	v, err := strconv.ParseInt(s, 10, 16)
	return int16(v), err
}

func encodeEventOracleRequest(ev *contest.EventOracleRequest) abci.Event {
	req := ev.Request
	return abci.Event{
		Type: ev.EventType(),
		Attributes: []abci.EventAttribute{
			{Key: "request", Value: fmt.Sprintf("%v", req.ID), Index: true},
			{Key: "kind", Value: fmt.Sprintf("%v", uint8(req.Kind)), Index: true},
			{Key: "caller", Value: string(req.Caller), Index: true},
			{Key: "session", Value: fmt.Sprintf("%v", req.Session), Index: true},
			{Key: "contractId", Value: string(req.ContractID), Index: false},
			{Key: "tokenId", Value: req.TokenID, Index: false},
			{Key: "artist", Value: string(req.Artist), Index: false},
			{Key: "daoId", Value: req.DaoID, Index: false},
			{Key: "proposalId", Value: fmt.Sprintf("%v", req.ProposalID), Index: false},
			{Key: "issuedAt", Value: fmt.Sprintf("%v", req.IssuedAt), Index: false},
			{Key: "expiresAt", Value: fmt.Sprintf("%v", req.ExpiresAt), Index: false},
		},
	}
}

// DecodeEventOracleRequest rebuilds the verification request announced by an
// oracle_request event. It returns nil for any other or malformed event.
func DecodeEventOracleRequest(originEvent abci.Event) *contest.Request {
	if originEvent.Type != contest.EventOracleRequestType {
		return nil
	}
	req := &contest.Request{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "request":
			req.ID, err = strconv.ParseUint(v.Value, 10, 64)
		case "kind":
			var kind uint64
			kind, err = strconv.ParseUint(v.Value, 10, 8)
			req.Kind = contest.Flow(kind)
		case "caller":
			req.Caller = contest.AccountID(v.Value)
		case "session":
			var id uint64
			id, err = strconv.ParseUint(v.Value, 10, 64)
			req.Session = contest.SessionID(id)
		case "contractId":
			req.ContractID = contest.AccountID(v.Value)
		case "tokenId":
			req.TokenID = v.Value
		case "artist":
			req.Artist = contest.AccountID(v.Value)
		case "daoId":
			req.DaoID = v.Value
		case "proposalId":
			req.ProposalID, err = strconv.ParseUint(v.Value, 10, 64)
		case "issuedAt":
			req.IssuedAt, err = strconv.ParseUint(v.Value, 10, 64)
		case "expiresAt":
			req.ExpiresAt, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	if req.ID == 0 {
		return nil
	}
	return req
}

// DecodeEventVerificationFailed returns the request id closed by a
// verification_failed event, or 0.
func DecodeEventVerificationFailed(originEvent abci.Event) uint64 {
	if originEvent.Type != contest.EventVerificationFailedType {
		return 0
	}
	for _, v := range originEvent.Attributes {
		if v.Key == "request" {
			id, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return 0
			}
			return id
		}
	}
	return 0
}
