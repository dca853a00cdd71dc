package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calehh/contest-app/contest"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOracleServer(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/nft/:contract/:token", func(c *gin.Context) {
		if c.Param("contract") != "nft.market" || c.Param("token") != "7" {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token_id": "7",
			"owner_id": "alice",
			"metadata": gin.H{"title": "Dawn", "media": "ipfs://dawn"},
		})
	})
	r.GET("/dao/:dao/policy", func(c *gin.Context) {
		switch c.Param("dao") {
		case "art.dao":
			balance := 0
			if c.Query("account") == "alice" {
				balance = 12
			}
			c.JSON(http.StatusOK, gin.H{
				"policy": gin.H{"roles": []gin.H{
					{"name": "holders", "kind": "Member", "threshold": 10, "permissions": []string{"transfer:AddProposal"}},
				}},
				"balance": balance,
			})
		case "broken.dao":
			c.String(http.StatusInternalServerError, "boom")
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientGetToken(t *testing.T) {
	srv := newOracleServer(t)
	cli := NewHTTPClient(srv.URL, time.Second, cmtlog.NewNopLogger())

	proof, err := cli.GetToken(context.Background(), "nft.market", "7")
	require.NoError(t, err)
	assert.Equal(t, contest.OwnershipProof{
		ContractID: "nft.market", TokenID: "7", Owner: "alice", Title: "Dawn", Media: "ipfs://dawn",
	}, *proof)

	_, err = cli.GetToken(context.Background(), "nft.market", "8")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestHTTPClientGetPolicy(t *testing.T) {
	srv := newOracleServer(t)
	cli := NewHTTPClient(srv.URL, time.Second, cmtlog.NewNopLogger())

	proof, err := cli.GetPolicy(context.Background(), "art.dao", "alice")
	require.NoError(t, err)
	assert.Equal(t, "art.dao", proof.DaoID)
	assert.Equal(t, uint64(12), proof.Balance)
	require.Len(t, proof.Policy.Roles, 1)
	assert.True(t, proof.Policy.Authorizes("alice", proof.Balance, contest.PayoutPermission))

	proof, err = cli.GetPolicy(context.Background(), "art.dao", "bob")
	require.NoError(t, err)
	assert.False(t, proof.Policy.Authorizes("bob", proof.Balance, contest.PayoutPermission))

	_, err = cli.GetPolicy(context.Background(), "missing.dao", "alice")
	assert.ErrorIs(t, err, ErrDaoNotFound)
	_, err = cli.GetPolicy(context.Background(), "broken.dao", "alice")
	assert.Error(t, err)
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	_, err := m.GetToken(context.Background(), "c", "1")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	m.SetToken(contest.OwnershipProof{ContractID: "c", TokenID: "1", Owner: "alice"})
	proof, err := m.GetToken(context.Background(), "c", "1")
	require.NoError(t, err)
	assert.Equal(t, contest.AccountID("alice"), proof.Owner)

	m.SetPolicy("dao", contest.Policy{})
	m.SetBalance("alice", 3)
	policy, err := m.GetPolicy(context.Background(), "dao", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), policy.Balance)
}
