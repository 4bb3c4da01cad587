package authz

import "fmt"

// 预置角色
const (
	RoleAuditor       = "auditor"
	RoleReviewer      = "reviewer"
	RoleDomainManager = "domain_manager"
	RoleMarketing     = "marketing"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 预置角色矩阵：auditor 只读，其余角色在只读基础上叠加写权限
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleReviewer,
			Inherits: []string{RoleAuditor},
			Policies: []Policy{
				{Object: "/admin/student-verifications/:id/action", Action: "POST"},
			},
		},
		{
			Role:     RoleDomainManager,
			Inherits: []string{RoleAuditor},
			Policies: []Policy{
				{Object: "/admin/student-domains", Action: "*"},
				{Object: "/admin/student-domains/:id", Action: "*"},
			},
		},
		{
			Role:     RoleMarketing,
			Inherits: []string{RoleAuditor},
			Policies: []Policy{
				{Object: "/admin/newsletter/broadcast", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return err
			}
		}
	}
	return nil
}
