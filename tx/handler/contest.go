package handler

import (
	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/tx"
)

func createContest(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.CreateContestTx](btx)
	if err != nil {
		return err
	}
	_, err = reg.CreateContest(call, stx.Contest)
	return err
}

func pause(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.PauseTx](btx)
	if err != nil {
		return err
	}
	return reg.Pause(call, stx.Paused)
}

func disqualify(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.DisqualifyTx](btx)
	if err != nil {
		return err
	}
	return reg.DisqualifyArtist(call, contest.SessionID(stx.Session), stx.Artist)
}

func finalise(reg *contest.Registry, call contest.Call, btx *tx.ContestTx) error {
	stx, err := payload[tx.FinaliseTx](btx)
	if err != nil {
		return err
	}
	_, err = reg.FinaliseContest(call, contest.SessionID(stx.Session))
	return err
}
