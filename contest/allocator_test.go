package contest

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatePrizesTopTieAbsorbsAllPlaces(t *testing.T) {
	payouts := AllocatePrizes([]Tally{
		{Account: "alice", Votes: 5},
		{Account: "bob", Votes: 5},
		{Account: "carol", Votes: 3},
	}, 2, 100)

	require.Len(t, payouts, 2)
	assert.Equal(t, Payout{Account: "alice", Amount: 50}, payouts[0])
	assert.Equal(t, Payout{Account: "bob", Amount: 50}, payouts[1])
}

func TestAllocatePrizesTieAtLastPlaceIsPaidInFull(t *testing.T) {
	payouts := AllocatePrizes([]Tally{
		{Account: "alice", Votes: 7},
		{Account: "bob", Votes: 4},
		{Account: "carol", Votes: 4},
		{Account: "dave", Votes: 1},
	}, 2, 90)

	require.Len(t, payouts, 3)
	assert.Equal(t, Payout{Account: "alice", Amount: 45}, payouts[0])
	assert.Equal(t, Payout{Account: "bob", Amount: 22.5}, payouts[1])
	assert.Equal(t, Payout{Account: "carol", Amount: 22.5}, payouts[2])
}

// Every member of a tie at the cut is paid, even past places. The tie
// splits the remaining pool evenly instead of dropping anyone arbitrarily.
func TestAllocatePrizesTieExceedsPlaces(t *testing.T) {
	payouts := AllocatePrizes([]Tally{
		{Account: "carol", Votes: 5},
		{Account: "alice", Votes: 5},
		{Account: "bob", Votes: 5},
	}, 2, 90)

	assert.Equal(t, []Payout{
		{Account: "alice", Amount: 30},
		{Account: "bob", Amount: 30},
		{Account: "carol", Amount: 30},
	}, payouts)
}

func TestAllocatePrizesDistinctVotes(t *testing.T) {
	payouts := AllocatePrizes([]Tally{
		{Account: "carol", Votes: 1},
		{Account: "alice", Votes: 9},
		{Account: "bob", Votes: 4},
	}, 3, 300)

	require.Len(t, payouts, 3)
	assert.Equal(t, AccountID("alice"), payouts[0].Account)
	assert.Equal(t, AccountID("bob"), payouts[1].Account)
	assert.Equal(t, AccountID("carol"), payouts[2].Account)
	for _, p := range payouts {
		assert.InDelta(t, 100, p.Amount, 1e-9)
	}
}

func TestAllocatePrizesNoPlaces(t *testing.T) {
	tallies := []Tally{{Account: "alice", Votes: 3}}
	assert.Empty(t, AllocatePrizes(tallies, 0, 100))
	assert.Empty(t, AllocatePrizes(tallies, -1, 100))
}

func TestAllocatePrizesNoCandidates(t *testing.T) {
	payouts := AllocatePrizes(nil, 3, 100)
	assert.NotNil(t, payouts)
	assert.Empty(t, payouts)
}

func TestAllocatePrizesPlacesClampedToCandidates(t *testing.T) {
	payouts := AllocatePrizes([]Tally{
		{Account: "alice", Votes: 2},
		{Account: "bob", Votes: 1},
	}, 5, 10)

	require.Len(t, payouts, 2)
	assert.Equal(t, 5.0, payouts[0].Amount)
	assert.Equal(t, 5.0, payouts[1].Amount)
}

func TestAllocatePrizesTieOrderIsByAccount(t *testing.T) {
	payouts := AllocatePrizes([]Tally{
		{Account: "zed", Votes: 2},
		{Account: "amy", Votes: 2},
		{Account: "kim", Votes: 2},
	}, 3, 30)

	require.Len(t, payouts, 3)
	assert.Equal(t, []AccountID{"amy", "kim", "zed"}, []AccountID{payouts[0].Account, payouts[1].Account, payouts[2].Account})
}

func TestAllocatePrizesDoesNotReorderInput(t *testing.T) {
	tallies := []Tally{{Account: "b", Votes: 1}, {Account: "a", Votes: 2}}
	AllocatePrizes(tallies, 1, 1)
	assert.Equal(t, AccountID("b"), tallies[0].Account)
}

func TestAllocatePrizesInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for round := 0; round < 500; round++ {
		n := rnd.Intn(12)
		tallies := make([]Tally, n)
		for i := range tallies {
			tallies[i] = Tally{Account: AccountID(fmt.Sprintf("acct%02d", i)), Votes: uint32(rnd.Intn(5))}
		}
		places := rnd.Intn(8) - 1
		prize := float64(rnd.Intn(10000)) / 7

		payouts := AllocatePrizes(tallies, places, prize)

		votes := make(map[AccountID]uint32, n)
		for _, tl := range tallies {
			votes[tl.Account] = tl.Votes
		}
		sum := 0.0
		byVotes := make(map[uint32]float64)
		for i, p := range payouts {
			sum += p.Amount
			if i > 0 {
				prev := payouts[i-1]
				assert.GreaterOrEqual(t, votes[prev.Account], votes[p.Account], "round %d", round)
				assert.GreaterOrEqual(t, prev.Amount, p.Amount-1e-9, "round %d", round)
			}
			if amt, ok := byVotes[votes[p.Account]]; ok {
				assert.InDelta(t, amt, p.Amount, 1e-9, "round %d", round)
			}
			byVotes[votes[p.Account]] = p.Amount
		}
		assert.LessOrEqual(t, sum, prize+1e-6, "round %d", round)
		if places <= 0 || n == 0 {
			assert.Empty(t, payouts, "round %d", round)
		}
	}
}
