package contest

// Session is a single contest.
type Session struct {
	Config
	Creator     AccountID                 `json:"creator"`
	Submissions map[AccountID]Art         `json:"submissions"`
	ArtVoters   map[AccountID][]AccountID `json:"artVoters"`
	VoteRecord  []AccountID               `json:"voteRecord"`
	Winners     map[AccountID]PayoutInfo  `json:"winners"`
	Blacklist   []AccountID               `json:"blacklist"`
	Finalised   bool                      `json:"finalised"`
}

func NewSession(creator AccountID, cfg Config) *Session {
	return &Session{
		Config:      cfg,
		Creator:     creator,
		Submissions: make(map[AccountID]Art),
		ArtVoters:   make(map[AccountID][]AccountID),
		VoteRecord:  []AccountID{},
		Winners:     make(map[AccountID]PayoutInfo),
		Blacklist:   []AccountID{},
	}
}

func (s *Session) SubmissionActive(now uint64) bool {
	return s.SubmissionStart <= now && now < s.SubmissionEnd
}

func (s *Session) VotingActive(now uint64) bool {
	return s.VotingStart <= now && now < s.VotingEnd
}

func (s *Session) Blacklisted(account AccountID) bool {
	return containsAccount(s.Blacklist, account)
}

func (s *Session) HasVoted(account AccountID) bool {
	return containsAccount(s.VoteRecord, account)
}

func (s *Session) checkSubmit(artist AccountID, now uint64) error {
	if s.Blacklisted(artist) {
		return errorf(ErrBlacklisted, "you're blacklisted")
	}
	if !s.SubmissionActive(now) {
		return ErrSubmissionClosed
	}
	if _, ok := s.Submissions[artist]; ok {
		return errorf(ErrDuplicateCandidate, "artist %s", artist)
	}
	return nil
}

func (s *Session) checkVote(voter, artist AccountID, now uint64) (art Art, err error) {
	if s.Blacklisted(voter) {
		return art, errorf(ErrBlacklisted, "you're blacklisted")
	}
	if !s.VotingActive(now) {
		return art, ErrVotingClosed
	}
	if s.HasVoted(voter) {
		return art, &DoubleVoteError{Token: string(voter)}
	}
	art, ok := s.Submissions[artist]
	if !ok {
		return art, errorf(ErrNotFound, "no submission found for artist %s", artist)
	}
	return art, nil
}

func (s *Session) recordVote(voter, artist AccountID) uint32 {
	art := s.Submissions[artist]
	art.Votes++
	s.Submissions[artist] = art
	s.VoteRecord = append(s.VoteRecord, voter)
	s.ArtVoters[artist] = append(s.ArtVoters[artist], voter)
	return art.Votes
}

func (s *Session) disqualify(artist AccountID) {
	delete(s.Submissions, artist)
	if !s.Blacklisted(artist) {
		s.Blacklist = append(s.Blacklist, artist)
	}
}

func (s *Session) finalise(now uint64) ([]Payout, error) {
	if now < s.VotingEnd {
		return nil, ErrVotingOngoing
	}
	if s.Finalised {
		return nil, ErrAlreadyFinalised
	}
	tallies := make([]Tally, 0, len(s.Submissions))
	for _, artist := range sortedAccounts(s.Submissions) {
		art := s.Submissions[artist]
		if int64(art.Votes) >= int64(s.MinArtVote) {
			tallies = append(tallies, Tally{Account: artist, Votes: art.Votes})
		}
	}
	payouts := AllocatePrizes(tallies, int(s.Places), s.Prize)
	for _, p := range payouts {
		s.Winners[p.Account] = PayoutInfo{Amount: p.Amount}
	}
	s.Finalised = true
	return payouts, nil
}

func (s *Session) Detail(id SessionID) SessionDetail {
	return SessionDetail{
		ID:              id,
		Title:           s.Title,
		Description:     s.Description,
		DaoID:           s.DaoID,
		LogoURL:         s.LogoURL,
		SubmissionStart: s.SubmissionStart,
		SubmissionEnd:   s.SubmissionEnd,
		VotingStart:     s.VotingStart,
		VotingEnd:       s.VotingEnd,
		Prize:           s.Prize,
		Places:          s.Places,
		Quorum:          s.Quorum,
		MinArtVote:      s.MinArtVote,
		Creator:         s.Creator,
		Submissions:     len(s.Submissions),
		Winners:         sortedAccounts(s.Winners),
		Finalised:       s.Finalised,
	}
}

func (s *Session) Clone() *Session {
	n := &Session{
		Config:      s.Config,
		Creator:     s.Creator,
		Submissions: make(map[AccountID]Art, len(s.Submissions)),
		ArtVoters:   make(map[AccountID][]AccountID, len(s.ArtVoters)),
		VoteRecord:  append([]AccountID{}, s.VoteRecord...),
		Winners:     make(map[AccountID]PayoutInfo, len(s.Winners)),
		Blacklist:   append([]AccountID{}, s.Blacklist...),
		Finalised:   s.Finalised,
	}
	for k, v := range s.Submissions {
		n.Submissions[k] = v
	}
	for k, v := range s.ArtVoters {
		n.ArtVoters[k] = append([]AccountID{}, v...)
	}
	for k, v := range s.Winners {
		n.Winners[k] = v
	}
	return n
}
