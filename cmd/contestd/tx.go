package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/crypto"
	"github.com/calehh/contest-app/state"
	"github.com/calehh/contest-app/tx"
	"github.com/calehh/contest-app/tx/handler"
	"github.com/calehh/contest-app/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type txArguments struct {
	Url    string
	Skey   string
	Nonce  uint64
	NoSend bool
	Resume bool
}

var txArgs txArguments

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign and broadcast contest transactions",
}

func init() {
	f := txCmd.PersistentFlags()
	f.StringVarP(&txArgs.Url, "url", "u", "http://127.0.0.1:26657", "contest node rpc url")
	f.StringVarP(&txArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	f.Uint64VarP(&txArgs.Nonce, "nonce", "n", 0, "account nonce, queried from the node when 0")
	f.BoolVarP(&txArgs.NoSend, "nosend", "", false, "print the signed transaction instead of sending it")
	pauseCmd.Flags().BoolVarP(&txArgs.Resume, "resume", "", false, "lift the pause")

	txCmd.AddCommand(createCmd)
	txCmd.AddCommand(pauseCmd)
	txCmd.AddCommand(disqualifyCmd)
	txCmd.AddCommand(submitCmd)
	txCmd.AddCommand(voteCmd)
	txCmd.AddCommand(finaliseCmd)
	txCmd.AddCommand(payoutCmd)
}

var createCmd = &cobra.Command{
	Use:   "create [contest.json]",
	Short: "Create a contest from a JSON config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dat, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var cfg contest.Config
		if err := json.Unmarshal(dat, &cfg); err != nil {
			return fmt.Errorf("decode contest config: %w", err)
		}
		return sendTx(tx.TxTypeCreateContest, &tx.CreateContestTx{Contest: cfg})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the registry, or resume it with --resume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTx(tx.TxTypePause, &tx.PauseTx{Paused: !txArgs.Resume})
	},
}

var disqualifyCmd = &cobra.Command{
	Use:   "disqualify [session] [artist]",
	Short: "Disqualify an artist's submission",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		return sendTx(tx.TxTypeDisqualify, &tx.DisqualifyTx{Session: session, Artist: contest.AccountID(args[1])})
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit [session] [contract] [token]",
	Short: "Submit an owned NFT to a contest",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		return sendTx(tx.TxTypeSubmitArt, &tx.SubmitArtTx{
			Session:    session,
			ContractID: contest.AccountID(args[1]),
			TokenID:    args[2],
		})
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote [session] [artist]",
	Short: "Vote for an artist's submission",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		return sendTx(tx.TxTypeVote, &tx.VoteTx{Session: session, Artist: contest.AccountID(args[1])})
	},
}

var finaliseCmd = &cobra.Command{
	Use:   "finalise [session]",
	Short: "Rank submissions and record the winners",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		return sendTx(tx.TxTypeFinalise, &tx.FinaliseTx{Session: session})
	},
}

var payoutCmd = &cobra.Command{
	Use:   "payout [session] [winner] [proposal]",
	Short: "Record the DAO payout proposal of a winner",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		proposal, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return err
		}
		return sendTx(tx.TxTypeSetPayout, &tx.SetPayoutTx{
			Session:    session,
			Winner:     contest.AccountID(args[1]),
			ProposalID: proposal,
		})
	},
}

func sendTx(typ tx.ContestTxType, payload any) error {
	cli, err := http.New(txArgs.Url, "/websocket")
	if err != nil {
		return fmt.Errorf("new client err: %w", err)
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("get chain genesis err: %w", err)
	}
	key, err := crypto.LoadKey(txArgs.Skey)
	if err != nil {
		return err
	}
	nonce := txArgs.Nonce
	if nonce == 0 {
		act, err := queryAccount(ctx, cli, key.Account())
		if err != nil {
			return err
		}
		if act != nil {
			nonce = act.Nonce
		}
	}
	btx := &tx.ContestTx{
		Version: tx.TxVersion1,
		Type:    typ,
		Nonce:   nonce,
		Tx:      payload,
	}
	if err = btx.Sign(gres.Genesis.ChainID, key); err != nil {
		return fmt.Errorf("sign tx err: %w", err)
	}
	dat, err := tx.MarshalContestTx(btx)
	if err != nil {
		return err
	}
	fmt.Printf("account:%s nonce:%d type:%s\n", key.Account(), nonce, typ)
	if txArgs.NoSend {
		fmt.Println(hex.EncodeToString(dat))
		return nil
	}
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx err: %w", err)
	}
	out, _ := json.Marshal(res)
	fmt.Println(string(out))
	if res.Code != 0 {
		return fmt.Errorf("tx rejected code=%d: %s", res.Code, res.Log)
	}
	return nil
}

// queryAccount returns nil for an account that has not sent a tx yet.
func queryAccount(ctx context.Context, cli *http.HTTP, id contest.AccountID) (*state.Account, error) {
	res, err := cli.ABCIQuery(ctx, types.QueryAccounts, []byte(id))
	if err != nil {
		return nil, err
	}
	switch res.Response.Code {
	case handler.CodeOK:
	case handler.CodeNotFound:
		return nil, nil
	default:
		return nil, errors.New(res.Response.Log)
	}
	var act state.Account
	if err := json.Unmarshal(res.Response.Value, &act); err != nil {
		return nil, err
	}
	return &act, nil
}
