package contest

import "fmt"

// Flow identifies which operation a verification request resumes.
type Flow uint8

const (
	FlowSubmission Flow = 1
	FlowVote       Flow = 2
	FlowPayout     Flow = 3
)

func (f Flow) String() string {
	switch f {
	case FlowSubmission:
		return "submission"
	case FlowVote:
		return "vote"
	case FlowPayout:
		return "payout"
	}
	return fmt.Sprintf("flow(%d)", uint8(f))
}

const DefaultRequestTTL uint64 = 600

// Request is an open verification. It holds everything the callback needs to
// resume the suspended call; the session itself is re-read on resumption.
type Request struct {
	ID         uint64    `json:"id"`
	Kind       Flow      `json:"kind"`
	Caller     AccountID `json:"caller"`
	Session    SessionID `json:"session"`
	ContractID AccountID `json:"contractId,omitempty"`
	TokenID    string    `json:"tokenId,omitempty"`
	Artist     AccountID `json:"artist,omitempty"`
	DaoID      string    `json:"daoId,omitempty"`
	ProposalID uint64    `json:"proposalId,omitempty"`
	IssuedAt   uint64    `json:"issuedAt"`
	ExpiresAt  uint64    `json:"expiresAt"`
}

func (r *Request) Expired(now uint64) bool {
	return now >= r.ExpiresAt
}

func (r *Registry) pending(kind Flow, caller AccountID, id SessionID, now uint64) bool {
	for _, req := range r.Requests {
		if req.Kind == kind && req.Caller == caller && req.Session == id && !req.Expired(now) {
			return true
		}
	}
	return false
}

func (r *Registry) openRequest(c Call, req Request) *Request {
	r.RequestCounter++
	req.ID = r.RequestCounter
	req.Caller = c.Caller
	req.IssuedAt = c.Now
	req.ExpiresAt = c.Now + r.RequestTTL
	r.Requests[req.ID] = &req
	r.changes.meta = true
	r.changes.requests[req.ID] = struct{}{}
	c.emit(&EventOracleRequest{Request: req})
	out := req
	return &out
}

// takeRequest removes and returns the request a callback answers. Once it
// returns a request, every later failure must be reported as resolved.
func (r *Registry) takeRequest(c Call, id uint64, kind Flow) (*Request, error) {
	if c.Caller != r.Oracle {
		return nil, ErrNotOracle
	}
	req, ok := r.Requests[id]
	if !ok {
		return nil, errorf(ErrRequestNotFound, "request %d", id)
	}
	if req.Kind != kind {
		return nil, errorf(ErrRequestKind, "request %d is a %s request", id, req.Kind)
	}
	delete(r.Requests, id)
	r.changes.requests[id] = struct{}{}
	if req.Expired(c.Now) {
		return req, resolved(req, ErrRequestExpired)
	}
	return req, nil
}

func resolved(req *Request, err error) error {
	return &ResolvedError{RequestID: req.ID, Err: err}
}

// OnVerificationFailed consumes a request the oracle could not answer, so the
// caller may try again.
func (r *Registry) OnVerificationFailed(c Call, id uint64, reason string) error {
	if c.Caller != r.Oracle {
		return ErrNotOracle
	}
	req, ok := r.Requests[id]
	if !ok {
		return errorf(ErrRequestNotFound, "request %d", id)
	}
	delete(r.Requests, id)
	r.changes.requests[id] = struct{}{}
	c.emit(&EventVerificationFailed{Request: id, Kind: req.Kind, Caller: req.Caller, Reason: reason})
	return nil
}

// PruneExpired drops every request past its expiry.
func (r *Registry) PruneExpired(c Call) int {
	n := 0
	for _, id := range sortedRequestIDs(r.Requests) {
		req := r.Requests[id]
		if !req.Expired(c.Now) {
			continue
		}
		delete(r.Requests, id)
		r.changes.requests[id] = struct{}{}
		c.emit(&EventVerificationFailed{Request: id, Kind: req.Kind, Caller: req.Caller, Reason: "expired"})
		n++
	}
	return n
}
