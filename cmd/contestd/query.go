package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/calehh/contest-app/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

var queryUrl string

var queryCmd = &cobra.Command{
	Use:     "query",
	Aliases: []string{"q"},
	Short:   "Query contest state",
}

func init() {
	queryCmd.PersistentFlags().StringVarP(&queryUrl, "url", "u", "http://127.0.0.1:26657", "contest node rpc url")
	queryCmd.AddCommand(
		newQueryCmd("contests [creator]", "List contests, optionally by creator", types.QueryContests, 0, 1),
		newQueryCmd("contest [session]", "Show a contest", types.QueryContest, 1, 1),
		newQueryCmd("status [session]", "Show which windows of a contest are open", types.QueryContestStatus, 1, 1),
		newQueryCmd("arts [session]", "List the submissions of a contest", types.QueryArts, 1, 1),
		newQueryCmd("art [session] [artist]", "Show an artist's submission", types.QueryArt, 1, 2),
		newQueryCmd("voters [session] [artist]", "List the voters of a submission", types.QueryArtVoters, 1, 2),
		newQueryCmd("votes [session]", "List every voter of a contest", types.QueryVotes, 1, 1),
		newQueryCmd("voted [session] [account]", "Show which artist an account voted for", types.QueryUserVoted, 1, 2),
		newQueryCmd("winners [session]", "List the winners of a contest", types.QueryWinners, 1, 1),
		newQueryCmd("winner [session] [winner]", "Show the payout of a winner", types.QueryWinnerPayout, 1, 2),
		newQueryCmd("entries [account]", "List the contests an account entered", types.QueryEntries, 0, 1),
		newRequestQueryCmd("request [id]", "Show a pending verification request", types.QueryRequest, 1),
		newRequestQueryCmd("requests", "List pending verification requests", types.QueryRequests, 0),
		accountQueryCmd,
	)
}

// newQueryCmd builds a query taking an optional session followed by an
// optional account. withSession is 1 when the first argument is a session.
func newQueryCmd(use, short, path string, withSession, nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.RangeArgs(withSession, nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p types.QueryParams
			if withSession == 1 {
				session, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return err
				}
				p.Session = session
				args = args[1:]
			}
			if len(args) > 0 {
				p.Account = args[0]
			}
			return runQuery(path, p)
		},
	}
}

func newRequestQueryCmd(use, short, path string, nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p types.QueryParams
			if nargs == 1 {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return err
				}
				p.Request = id
			}
			return runQuery(path, p)
		},
	}
}

var accountQueryCmd = &cobra.Command{
	Use:   "account [account]",
	Short: "Show the nonce of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := http.New(queryUrl, "/websocket")
		if err != nil {
			return err
		}
		res, err := cli.ABCIQuery(context.Background(), types.QueryAccounts, []byte(args[0]))
		if err != nil {
			return err
		}
		return printResponse(res.Response.Code, res.Response.Log, res.Response.Value)
	},
}

func runQuery(path string, p types.QueryParams) error {
	cli, err := http.New(queryUrl, "/websocket")
	if err != nil {
		return err
	}
	dat, err := json.Marshal(p)
	if err != nil {
		return err
	}
	res, err := cli.ABCIQuery(context.Background(), path, dat)
	if err != nil {
		return err
	}
	return printResponse(res.Response.Code, res.Response.Log, res.Response.Value)
}

func printResponse(code uint32, log string, value []byte) error {
	if code != 0 {
		return fmt.Errorf("query failed code=%d: %s", code, log)
	}
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
