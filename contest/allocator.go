package contest

import "sort"

type Tally struct {
	Account AccountID
	Votes   uint32
}

type Payout struct {
	Account AccountID `json:"account"`
	Amount  float64   `json:"amount"`
}

// AllocatePrizes splits prize among the best tallies. Entries are ranked by
// votes descending, then account ascending. A tie straddling the last paid
// place is paid in full from what is left, so more than places accounts may
// be returned. The sum of amounts never exceeds prize.
func AllocatePrizes(tallies []Tally, places int, prize float64) []Payout {
	ranked := make([]Tally, len(tallies))
	copy(ranked, tallies)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Votes == ranked[j].Votes {
			return ranked[i].Account < ranked[j].Account
		}
		return ranked[i].Votes > ranked[j].Votes
	})

	if places > len(ranked) {
		places = len(ranked)
	}
	if places <= 0 {
		return []Payout{}
	}

	payouts := make([]Payout, 0, places)
	remaining := prize
	for start := 0; start < len(ranked) && places > 0; {
		end := start + 1
		for end < len(ranked) && ranked[end].Votes == ranked[start].Votes {
			end++
		}
		group := ranked[start:end]
		if len(group) >= places {
			share := remaining / float64(len(group))
			for _, t := range group {
				payouts = append(payouts, Payout{Account: t.Account, Amount: share})
			}
			break
		}
		share := remaining / float64(places)
		for _, t := range group {
			payouts = append(payouts, Payout{Account: t.Account, Amount: share})
		}
		remaining -= share * float64(len(group))
		places -= len(group)
		start = end
	}
	return payouts
}
