package contest

import (
	"sort"
)

// Registry holds every contest, the per-account entry index and the open
// verification requests. It is the single owner of contest state.
type Registry struct {
	Admin          AccountID `json:"admin"`
	Oracle         AccountID `json:"oracle"`
	Paused         bool      `json:"paused"`
	SessionCounter uint64    `json:"sessionCounter"`
	RequestCounter uint64    `json:"requestCounter"`
	RequestTTL     uint64    `json:"requestTtl"`

	Sessions map[SessionID]*Session   `json:"-"`
	Entries  map[AccountID][]SessionID `json:"-"`
	Requests map[uint64]*Request       `json:"-"`

	changes changeSet
}

type changeSet struct {
	meta     bool
	sessions map[SessionID]struct{}
	requests map[uint64]struct{}
	entries  map[AccountID]struct{}
}

func newChangeSet() changeSet {
	return changeSet{
		sessions: make(map[SessionID]struct{}),
		requests: make(map[uint64]struct{}),
		entries:  make(map[AccountID]struct{}),
	}
}

// Changes lists what was touched since the last ResetChanges.
type Changes struct {
	Meta     bool
	Sessions []SessionID
	Requests []uint64
	Entries  []AccountID
}

// NewRegistry returns an empty registry whose metadata is marked as changed.
func NewRegistry(admin, oracle AccountID) *Registry {
	r := &Registry{
		Admin:      admin,
		Oracle:     oracle,
		RequestTTL: DefaultRequestTTL,
		Sessions:   make(map[SessionID]*Session),
		Entries:    make(map[AccountID][]SessionID),
		Requests:   make(map[uint64]*Request),
		changes:    newChangeSet(),
	}
	r.changes.meta = true
	return r
}

func (r *Registry) Changes() Changes {
	c := Changes{Meta: r.changes.meta}
	for id := range r.changes.sessions {
		c.Sessions = append(c.Sessions, id)
	}
	sort.Slice(c.Sessions, func(i, j int) bool { return c.Sessions[i] < c.Sessions[j] })
	for id := range r.changes.requests {
		c.Requests = append(c.Requests, id)
	}
	sort.Slice(c.Requests, func(i, j int) bool { return c.Requests[i] < c.Requests[j] })
	for id := range r.changes.entries {
		c.Entries = append(c.Entries, id)
	}
	sort.Slice(c.Entries, func(i, j int) bool { return c.Entries[i] < c.Entries[j] })
	return c
}

func (r *Registry) ResetChanges() {
	r.changes = newChangeSet()
}

func (r *Registry) Clone() *Registry {
	n := *r
	n.Sessions = make(map[SessionID]*Session, len(r.Sessions))
	for id, s := range r.Sessions {
		n.Sessions[id] = s.Clone()
	}
	n.Entries = make(map[AccountID][]SessionID, len(r.Entries))
	for acct, ids := range r.Entries {
		n.Entries[acct] = append([]SessionID{}, ids...)
	}
	n.Requests = make(map[uint64]*Request, len(r.Requests))
	for id, req := range r.Requests {
		c := *req
		n.Requests[id] = &c
	}
	n.changes = newChangeSet()
	n.changes.meta = r.changes.meta
	for k := range r.changes.sessions {
		n.changes.sessions[k] = struct{}{}
	}
	for k := range r.changes.requests {
		n.changes.requests[k] = struct{}{}
	}
	for k := range r.changes.entries {
		n.changes.entries[k] = struct{}{}
	}
	return &n
}

func (r *Registry) session(id SessionID) (*Session, error) {
	s, ok := r.Sessions[id]
	if !ok {
		return nil, errorf(ErrNotFound, "contest %d", id)
	}
	return s, nil
}

func (r *Registry) touch(id SessionID) {
	r.changes.sessions[id] = struct{}{}
}

func (r *Registry) requireAdmin(c Call) error {
	if c.Caller != r.Admin {
		return errorf(ErrUnauthorized, "%s is not admin", c.Caller)
	}
	return nil
}

func (r *Registry) CreateContest(c Call, cfg Config) (SessionID, error) {
	if r.Paused {
		return 0, ErrPaused
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	id := SessionID(r.SessionCounter + 1)
	if _, ok := r.Sessions[id]; ok {
		return 0, errorf(ErrSessionExists, "contest %d", id)
	}
	r.SessionCounter++
	r.Sessions[id] = NewSession(c.Caller, cfg)
	r.changes.meta = true
	r.touch(id)
	c.emit(&EventContestCreated{
		Session:         id,
		Creator:         c.Caller,
		Title:           cfg.Title,
		SubmissionStart: cfg.SubmissionStart,
		SubmissionEnd:   cfg.SubmissionEnd,
		VotingStart:     cfg.VotingStart,
		VotingEnd:       cfg.VotingEnd,
		Prize:           cfg.Prize,
		Places:          cfg.Places,
		Quorum:          cfg.Quorum,
		MinArtVote:      cfg.MinArtVote,
	})
	return id, nil
}

func (r *Registry) Pause(c Call, paused bool) error {
	if err := r.requireAdmin(c); err != nil {
		return err
	}
	r.Paused = paused
	r.changes.meta = true
	return nil
}

// DisqualifyArtist removes the artist's submission and bars them from the
// contest.
func (r *Registry) DisqualifyArtist(c Call, id SessionID, artist AccountID) error {
	if err := r.requireAdmin(c); err != nil {
		return err
	}
	s, err := r.session(id)
	if err != nil {
		return err
	}
	s.disqualify(artist)
	r.touch(id)
	c.emit(&EventArtDisqualified{Session: id, Artist: artist, Reason: "admin"})
	return nil
}

func (r *Registry) SubmitArt(c Call, id SessionID, contractID AccountID, tokenID string) (*Request, error) {
	if r.Paused {
		return nil, ErrPaused
	}
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubmit(c.Caller, c.Now); err != nil {
		return nil, err
	}
	if r.pending(FlowSubmission, c.Caller, id, c.Now) {
		return nil, ErrPendingVerification
	}
	return r.openRequest(c, Request{
		Kind:       FlowSubmission,
		Session:    id,
		ContractID: contractID,
		TokenID:    tokenID,
	}), nil
}

func (r *Registry) OnSubmissionVerified(c Call, reqID uint64, proof OwnershipProof) error {
	req, err := r.takeRequest(c, reqID, FlowSubmission)
	if err != nil {
		return err
	}
	if r.Paused {
		return resolved(req, ErrPaused)
	}
	s, err := r.session(req.Session)
	if err != nil {
		return resolved(req, err)
	}
	if err := s.checkSubmit(req.Caller, c.Now); err != nil {
		return resolved(req, err)
	}
	if proof.ContractID != req.ContractID || proof.TokenID != req.TokenID {
		return resolved(req, errorf(ErrNotOwner, "proof is for %s/%s", proof.ContractID, proof.TokenID))
	}
	if proof.Owner != req.Caller {
		return resolved(req, errorf(ErrNotOwner, "token %s is owned by %s", req.TokenID, proof.Owner))
	}
	title := proof.Title
	if title == "" {
		title = DefaultArtTitle
	}
	s.Submissions[req.Caller] = Art{
		Title:      title,
		ContractID: req.ContractID,
		TokenID:    req.TokenID,
		ImageURL:   proof.Media,
		Timestamp:  c.Now,
	}
	r.touch(req.Session)
	r.addEntry(req.Caller, req.Session)
	c.emit(&EventArtSubmitted{
		Session:    req.Session,
		Artist:     req.Caller,
		ContractID: req.ContractID,
		TokenID:    req.TokenID,
	})
	return nil
}

func (r *Registry) addEntry(account AccountID, id SessionID) {
	for _, v := range r.Entries[account] {
		if v == id {
			return
		}
	}
	r.Entries[account] = append(r.Entries[account], id)
	r.changes.entries[account] = struct{}{}
}

func (r *Registry) Vote(c Call, id SessionID, artist AccountID) (*Request, error) {
	if r.Paused {
		return nil, ErrPaused
	}
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	art, err := s.checkVote(c.Caller, artist, c.Now)
	if err != nil {
		return nil, err
	}
	if r.pending(FlowVote, c.Caller, id, c.Now) {
		return nil, ErrPendingVerification
	}
	return r.openRequest(c, Request{
		Kind:       FlowVote,
		Session:    id,
		ContractID: art.ContractID,
		TokenID:    art.TokenID,
		Artist:     artist,
	}), nil
}

// OnVoteVerified records the vote once the artist is shown to still own the
// entered token. An artist who no longer owns it loses the submission, and
// that removal stands even though the call fails.
func (r *Registry) OnVoteVerified(c Call, reqID uint64, proof OwnershipProof) error {
	req, err := r.takeRequest(c, reqID, FlowVote)
	if err != nil {
		return err
	}
	if r.Paused {
		return resolved(req, ErrPaused)
	}
	s, err := r.session(req.Session)
	if err != nil {
		return resolved(req, err)
	}
	art, err := s.checkVote(req.Caller, req.Artist, c.Now)
	if err != nil {
		return resolved(req, err)
	}
	if art.ContractID != req.ContractID || art.TokenID != req.TokenID {
		return resolved(req, errorf(ErrNotFound, "submission of %s changed", req.Artist))
	}
	if proof.ContractID != req.ContractID || proof.TokenID != req.TokenID {
		return resolved(req, errorf(ErrNotOwner, "proof is for %s/%s", proof.ContractID, proof.TokenID))
	}
	if proof.Owner != req.Artist {
		delete(s.Submissions, req.Artist)
		r.touch(req.Session)
		c.emit(&EventArtDisqualified{Session: req.Session, Artist: req.Artist, Reason: "ownership lapsed"})
		return resolved(req, ErrOwnershipLapsed)
	}
	votes := s.recordVote(req.Caller, req.Artist)
	r.touch(req.Session)
	c.emit(&EventVoteRecorded{Session: req.Session, Voter: req.Caller, Artist: req.Artist, Votes: votes})
	return nil
}

func (r *Registry) FinaliseContest(c Call, id SessionID) ([]Payout, error) {
	if r.Paused {
		return nil, ErrPaused
	}
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	payouts, err := s.finalise(c.Now)
	if err != nil {
		return nil, err
	}
	r.touch(id)
	c.emit(&EventContestFinalised{Session: id, Payouts: payouts})
	return payouts, nil
}

func (r *Registry) SetPayoutProposalID(c Call, id SessionID, winner AccountID, proposalID uint64) (*Request, error) {
	if r.Paused {
		return nil, ErrPaused
	}
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	if _, ok := s.Winners[winner]; !ok {
		return nil, errorf(ErrWinnerNotFound, "%s in contest %d", winner, id)
	}
	if r.pending(FlowPayout, c.Caller, id, c.Now) {
		return nil, ErrPendingVerification
	}
	return r.openRequest(c, Request{
		Kind:       FlowPayout,
		Session:    id,
		Artist:     winner,
		DaoID:      s.DaoID,
		ProposalID: proposalID,
	}), nil
}

func (r *Registry) OnPolicyVerified(c Call, reqID uint64, proof PolicyProof) error {
	req, err := r.takeRequest(c, reqID, FlowPayout)
	if err != nil {
		return err
	}
	if r.Paused {
		return resolved(req, ErrPaused)
	}
	s, err := r.session(req.Session)
	if err != nil {
		return resolved(req, err)
	}
	info, ok := s.Winners[req.Artist]
	if !ok {
		return resolved(req, errorf(ErrWinnerNotFound, "%s in contest %d", req.Artist, req.Session))
	}
	if proof.DaoID != req.DaoID {
		return resolved(req, errorf(ErrUnauthorizedProposal, "policy is for dao %s", proof.DaoID))
	}
	if !proof.Policy.Authorizes(req.Caller, proof.Balance, PayoutPermission) {
		return resolved(req, ErrUnauthorizedProposal)
	}
	pid := req.ProposalID
	info.ProposalID = &pid
	s.Winners[req.Artist] = info
	r.touch(req.Session)
	c.emit(&EventPayoutProposal{Session: req.Session, Winner: req.Artist, ProposalID: pid})
	return nil
}
