package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Role names the coarse capability tiers carried as flags in the token.
// Everyone holds RoleEmployee; the flag roles stack on top.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Route-level policy only: who may reach an endpoint class at all. Ownership,
// departments and stage rules are enforced by the core resolver, not here.
var policies = [][]string{
	{RoleAdmin, "leave", "read"},
	{RoleAdmin, "leave", "create"},
	{RoleAdmin, "leave", "update"},
	{RoleAdmin, "leave", "delete"},
	{RoleAdmin, "leave", "approve"},
	{RoleAdmin, "balance", "read"},
	{RoleAdmin, "balance", "allocate"},

	{RoleHR, "leave", "read"},
	{RoleHR, "leave", "approve"},
	{RoleHR, "balance", "read"},
	{RoleHR, "balance", "allocate"},

	{RoleManager, "leave", "read"},
	{RoleManager, "leave", "approve"},

	{RoleEmployee, "leave", "read"},
	{RoleEmployee, "leave", "create"},
	{RoleEmployee, "leave", "update"},
	{RoleEmployee, "leave", "delete"},
	{RoleEmployee, "balance", "read"},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(roles []string, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

// Enforce allows the action if any of the actor's roles carries it.
func (s *service) Enforce(roles []string, resource, action string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, role := range roles {
		allowed, err := s.enforcer.Enforce(role, resource, action)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}
