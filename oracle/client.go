package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/calehh/contest-app/contest"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrDaoNotFound   = errors.New("dao not found")
)

// Client answers the questions verification requests ask: who owns a token,
// and what a DAO's policy and an account's voting balance are.
type Client interface {
	GetToken(ctx context.Context, contractID contest.AccountID, tokenID string) (*contest.OwnershipProof, error)
	GetPolicy(ctx context.Context, daoID string, account contest.AccountID) (*contest.PolicyProof, error)
}

var _ Client = &HTTPClient{}
var _ Client = &MockClient{}

type HTTPClient struct {
	Url    string
	cli    *http.Client
	logger cmtlog.Logger
}

func NewHTTPClient(url string, timeout time.Duration, logger cmtlog.Logger) *HTTPClient {
	return &HTTPClient{
		Url:    url,
		cli:    &http.Client{Timeout: timeout},
		logger: logger.With("module", "oracle"),
	}
}

// TokenResponse is the oracle's view of a non-fungible token.
type TokenResponse struct {
	TokenID  string `json:"token_id"`
	OwnerID  string `json:"owner_id"`
	Metadata struct {
		Title string `json:"title"`
		Media string `json:"media"`
	} `json:"metadata"`
}

type PolicyResponse struct {
	Policy  contest.Policy `json:"policy"`
	Balance uint64         `json:"balance"`
}

func (c *HTTPClient) get(ctx context.Context, u string, notFound error, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := c.cli.Do(req)
	if err != nil {
		c.logger.Error("oracle request fail", "url", u, "err", err)
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return notFound
	}
	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		c.logger.Error("read response body fail", "err", err)
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle %s: status %d: %s", u, res.StatusCode, bodyBytes)
	}
	if err = json.Unmarshal(bodyBytes, v); err != nil {
		c.logger.Error("unmarshal response body fail", "err", err)
		return err
	}
	return nil
}

func (c *HTTPClient) GetToken(ctx context.Context, contractID contest.AccountID, tokenID string) (*contest.OwnershipProof, error) {
	u, err := url.JoinPath(c.Url, "nft", string(contractID), tokenID)
	if err != nil {
		return nil, err
	}
	var token TokenResponse
	if err = c.get(ctx, u, ErrTokenNotFound, &token); err != nil {
		return nil, err
	}
	c.logger.Info("GetToken", "contract", contractID, "token", tokenID, "owner", token.OwnerID)
	return &contest.OwnershipProof{
		ContractID: contractID,
		TokenID:    tokenID,
		Owner:      contest.AccountID(token.OwnerID),
		Title:      token.Metadata.Title,
		Media:      token.Metadata.Media,
	}, nil
}

func (c *HTTPClient) GetPolicy(ctx context.Context, daoID string, account contest.AccountID) (*contest.PolicyProof, error) {
	u, err := url.JoinPath(c.Url, "dao", daoID, "policy")
	if err != nil {
		return nil, err
	}
	u += "?" + url.Values{"account": {string(account)}}.Encode()
	var policy PolicyResponse
	if err = c.get(ctx, u, ErrDaoNotFound, &policy); err != nil {
		return nil, err
	}
	c.logger.Info("GetPolicy", "dao", daoID, "account", account, "roles", len(policy.Policy.Roles))
	return &contest.PolicyProof{
		DaoID:   daoID,
		Policy:  policy.Policy,
		Balance: policy.Balance,
	}, nil
}

type tokenKey struct {
	contract contest.AccountID
	token    string
}

// MockClient serves tokens and policies registered in memory.
type MockClient struct {
	mtx      sync.RWMutex
	tokens   map[tokenKey]contest.OwnershipProof
	policies map[string]contest.Policy
	balances map[contest.AccountID]uint64
}

func NewMockClient() *MockClient {
	return &MockClient{
		tokens:   make(map[tokenKey]contest.OwnershipProof),
		policies: make(map[string]contest.Policy),
		balances: make(map[contest.AccountID]uint64),
	}
}

func (m *MockClient) SetToken(proof contest.OwnershipProof) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.tokens[tokenKey{proof.ContractID, proof.TokenID}] = proof
}

func (m *MockClient) SetPolicy(daoID string, policy contest.Policy) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.policies[daoID] = policy
}

func (m *MockClient) SetBalance(account contest.AccountID, balance uint64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.balances[account] = balance
}

func (m *MockClient) GetToken(ctx context.Context, contractID contest.AccountID, tokenID string) (*contest.OwnershipProof, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	proof, ok := m.tokens[tokenKey{contractID, tokenID}]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &proof, nil
}

func (m *MockClient) GetPolicy(ctx context.Context, daoID string, account contest.AccountID) (*contest.PolicyProof, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	policy, ok := m.policies[daoID]
	if !ok {
		return nil, ErrDaoNotFound
	}
	return &contest.PolicyProof{DaoID: daoID, Policy: policy, Balance: m.balances[account]}, nil
}
