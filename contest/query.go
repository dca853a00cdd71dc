package contest

import "sort"

func (r *Registry) Session(id SessionID) (*Session, error) {
	return r.session(id)
}

func sortedSessionIDs(m map[SessionID]*Session) []SessionID {
	ids := make([]SessionID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedRequestIDs(m map[uint64]*Request) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Contests() []SessionDetail {
	res := make([]SessionDetail, 0, len(r.Sessions))
	for _, id := range sortedSessionIDs(r.Sessions) {
		res = append(res, r.Sessions[id].Detail(id))
	}
	return res
}

func (r *Registry) ContestsByCreator(creator AccountID) []SessionDetail {
	res := make([]SessionDetail, 0)
	for _, id := range sortedSessionIDs(r.Sessions) {
		s := r.Sessions[id]
		if s.Creator == creator {
			res = append(res, s.Detail(id))
		}
	}
	return res
}

func (r *Registry) ContestDetail(id SessionID) (SessionDetail, error) {
	s, err := r.session(id)
	if err != nil {
		return SessionDetail{}, err
	}
	return s.Detail(id), nil
}

func (r *Registry) ContestArts(id SessionID) ([]ArtEntry, error) {
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	res := make([]ArtEntry, 0, len(s.Submissions))
	for _, artist := range sortedAccounts(s.Submissions) {
		res = append(res, ArtEntry{Artist: artist, Art: s.Submissions[artist]})
	}
	return res, nil
}

func (r *Registry) ArtistArt(id SessionID, artist AccountID) (Art, error) {
	s, err := r.session(id)
	if err != nil {
		return Art{}, err
	}
	art, ok := s.Submissions[artist]
	if !ok {
		return Art{}, errorf(ErrNotFound, "no submission found for artist %s", artist)
	}
	return art, nil
}

func (r *Registry) UserVoted(id SessionID, user AccountID) (bool, error) {
	s, err := r.session(id)
	if err != nil {
		return false, err
	}
	return s.HasVoted(user), nil
}

func (r *Registry) ArtVoters(id SessionID, artist AccountID) ([]AccountID, error) {
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	return append([]AccountID{}, s.ArtVoters[artist]...), nil
}

func (r *Registry) AllUserVoted(id SessionID) ([]AccountID, error) {
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	return append([]AccountID{}, s.VoteRecord...), nil
}

func (r *Registry) WinnerPayoutInfo(id SessionID, winner AccountID) (PayoutInfo, error) {
	s, err := r.session(id)
	if err != nil {
		return PayoutInfo{}, err
	}
	info, ok := s.Winners[winner]
	if !ok {
		return PayoutInfo{}, errorf(ErrWinnerNotFound, "%s in contest %d", winner, id)
	}
	return info, nil
}

func (r *Registry) Winners(id SessionID) ([]WinnerEntry, error) {
	s, err := r.session(id)
	if err != nil {
		return nil, err
	}
	res := make([]WinnerEntry, 0, len(s.Winners))
	for _, w := range sortedAccounts(s.Winners) {
		res = append(res, WinnerEntry{Winner: w, PayoutInfo: s.Winners[w]})
	}
	return res, nil
}

func (r *Registry) UserEntries(account AccountID) []SessionID {
	return append([]SessionID{}, r.Entries[account]...)
}

func (r *Registry) Request(id uint64) (Request, error) {
	req, ok := r.Requests[id]
	if !ok {
		return Request{}, errorf(ErrRequestNotFound, "request %d", id)
	}
	return *req, nil
}

func (r *Registry) OpenRequests() []Request {
	res := make([]Request, 0, len(r.Requests))
	for _, id := range sortedRequestIDs(r.Requests) {
		res = append(res, *r.Requests[id])
	}
	return res
}

func (r *Registry) IsSubmissionActive(id SessionID, now uint64) (bool, error) {
	s, err := r.session(id)
	if err != nil {
		return false, err
	}
	return s.SubmissionActive(now), nil
}

func (r *Registry) IsVotingActive(id SessionID, now uint64) (bool, error) {
	s, err := r.session(id)
	if err != nil {
		return false, err
	}
	return s.VotingActive(now), nil
}
