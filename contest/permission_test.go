package contest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("transfer:*")
	require.NoError(t, err)
	assert.Equal(t, Named("transfer"), p.Resource)
	assert.True(t, p.Action.Any)
	assert.Equal(t, "transfer:*", p.String())

	for _, bad := range []string{"", "transfer", ":AddProposal", "transfer:"} {
		_, err := ParsePermission(bad)
		assert.Error(t, err, bad)
	}
}

func TestPermissionGrants(t *testing.T) {
	cases := []struct {
		perm  string
		grant bool
	}{
		{"transfer:AddProposal", true},
		{"transfer:*", true},
		{"*:AddProposal", true},
		{"*:*", true},
		{"transfer:VoteApprove", false},
		{"call:AddProposal", false},
		{"call:*", false},
	}
	for _, c := range cases {
		p, err := ParsePermission(c.perm)
		require.NoError(t, err)
		assert.Equal(t, c.grant, p.Grants(PayoutPermission), c.perm)
	}
}

func TestRoleMatches(t *testing.T) {
	everyone := Role{Kind: RoleEveryone}
	assert.True(t, everyone.Matches("anyone", 0))

	member := Role{Kind: RoleMember, Threshold: 10}
	assert.False(t, member.Matches("alice", 9))
	assert.True(t, member.Matches("alice", 10))
	assert.True(t, (&Role{Kind: RoleMember}).Matches("alice", 0))

	group := Role{Kind: RoleGroup, Accounts: []AccountID{"alice", "bob"}}
	assert.True(t, group.Matches("bob", 0))
	assert.False(t, group.Matches("carol", 100))

	assert.False(t, (&Role{Kind: "Council"}).Matches("alice", 100))
}

func TestPolicyAuthorizes(t *testing.T) {
	policy := Policy{Roles: []Role{
		{Name: "all", Kind: RoleEveryone, Permissions: []string{"*:VoteApprove", "garbage"}},
		{Name: "council", Kind: RoleGroup, Accounts: []AccountID{"alice"}, Permissions: []string{"transfer:*"}},
		{Name: "holders", Kind: RoleMember, Threshold: 5, Permissions: []string{"*:AddProposal"}},
	}}

	assert.True(t, policy.Authorizes("alice", 0, PayoutPermission))
	assert.False(t, policy.Authorizes("bob", 0, PayoutPermission))
	assert.True(t, policy.Authorizes("bob", 5, PayoutPermission))
	assert.False(t, (&Policy{}).Authorizes("alice", 100, PayoutPermission))
}
