package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// The role set is fixed: FACULTY submit their own leaves, HOD and DIRECTOR
// additionally review the approval queue, DIRECTOR alone manages users.
const (
	RoleFaculty  = "FACULTY"
	RoleHOD      = "HOD"
	RoleDirector = "DIRECTOR"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{RoleFaculty, "leave", "apply"},
		{RoleFaculty, "leave", "read"},
		{RoleFaculty, "leave", "cancel"},
		{RoleFaculty, "report", "download"},
		{"APPROVER", "leave", "review"},
		{"APPROVER", "report", "faculty"},
		{RoleDirector, "users", "manage"},
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, err
	}

	groupings := [][]string{
		{RoleHOD, RoleFaculty},
		{RoleDirector, RoleFaculty},
		{RoleHOD, "APPROVER"},
		{RoleDirector, "APPROVER"},
	}
	if _, err := enforcer.AddGroupingPolicies(groupings); err != nil {
		return nil, err
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
