package contest

import (
	"fmt"
	"strings"
)

const wildcard = "*"

// Selector names a resource or an action, or matches any of them.
type Selector struct {
	Any  bool
	Name string
}

func Named(name string) Selector {
	return Selector{Name: name}
}

func AnySelector() Selector {
	return Selector{Any: true}
}

func (s Selector) matches(name string) bool {
	return s.Any || s.Name == name
}

func (s Selector) String() string {
	if s.Any {
		return wildcard
	}
	return s.Name
}

type Permission struct {
	Resource Selector
	Action   Selector
}

// PayoutPermission is required to bind a winner to a payout proposal.
var PayoutPermission = Permission{Resource: Named("transfer"), Action: Named("AddProposal")}

// ParsePermission reads the "resource:action" form used by DAO policies,
// where either side may be "*".
func ParsePermission(s string) (Permission, error) {
	res, act, ok := strings.Cut(s, ":")
	if !ok || res == "" || act == "" {
		return Permission{}, fmt.Errorf("malformed permission %q", s)
	}
	return Permission{Resource: parseSelector(res), Action: parseSelector(act)}, nil
}

func parseSelector(s string) Selector {
	if s == wildcard {
		return AnySelector()
	}
	return Named(s)
}

// Grants reports whether p covers the concrete permission req.
func (p Permission) Grants(req Permission) bool {
	return p.Resource.matches(req.Resource.Name) && p.Action.matches(req.Action.Name)
}

func (p Permission) String() string {
	return p.Resource.String() + ":" + p.Action.String()
}

type RoleKind string

const (
	RoleEveryone RoleKind = "Everyone"
	RoleMember   RoleKind = "Member"
	RoleGroup    RoleKind = "Group"
)

type Role struct {
	Name        string      `json:"name"`
	Kind        RoleKind    `json:"kind"`
	Threshold   uint64      `json:"threshold,omitempty"`
	Accounts    []AccountID `json:"accounts,omitempty"`
	Permissions []string    `json:"permissions"`
}

// Matches reports whether account holds the role. balance is the account's
// DAO token balance.
func (r *Role) Matches(account AccountID, balance uint64) bool {
	switch r.Kind {
	case RoleEveryone:
		return true
	case RoleMember:
		return balance >= r.Threshold
	case RoleGroup:
		return containsAccount(r.Accounts, account)
	}
	return false
}

type Policy struct {
	Roles []Role `json:"roles"`
}

// Authorizes reports whether any role held by account grants req.
// Permissions that fail to parse are ignored.
func (p *Policy) Authorizes(account AccountID, balance uint64, req Permission) bool {
	for i := range p.Roles {
		role := &p.Roles[i]
		if !role.Matches(account, balance) {
			continue
		}
		for _, s := range role.Permissions {
			perm, err := ParsePermission(s)
			if err != nil {
				continue
			}
			if perm.Grants(req) {
				return true
			}
		}
	}
	return false
}

// PolicyProof is the oracle's answer to a policy request.
type PolicyProof struct {
	DaoID   string `json:"daoId"`
	Policy  Policy `json:"policy"`
	Balance uint64 `json:"balance"`
}

// OwnershipProof is the oracle's answer to an ownership request.
type OwnershipProof struct {
	ContractID AccountID `json:"contractId"`
	TokenID    string    `json:"tokenId"`
	Owner      AccountID `json:"owner"`
	Title      string    `json:"title,omitempty"`
	Media      string    `json:"media,omitempty"`
}
