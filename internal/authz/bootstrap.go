package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// super 拥有全部管理端能力; reviewer 只处理各类审核队列, 不能改动
// 方案与分润规则等经营配置。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "super",
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
		{
			Role: "reviewer",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
				{Object: "/admin/agents/:id/approve", Action: "POST"},
				{Object: "/admin/agents/:id/reject", Action: "POST"},
				{Object: "/admin/agents/:id/kyc/verify", Action: "POST"},
				{Object: "/admin/agents/:id/kyc/reject", Action: "POST"},
				{Object: "/admin/agents/bulk-approve", Action: "POST"},
				{Object: "/admin/agents/bulk-reject", Action: "POST"},
				{Object: "/admin/policies/:id/approve", Action: "POST"},
				{Object: "/admin/policies/:id/reject", Action: "POST"},
				{Object: "/admin/policies/bulk-approve", Action: "POST"},
				{Object: "/admin/policies/bulk-reject", Action: "POST"},
				{Object: "/admin/commissions/:id/approve", Action: "POST"},
				{Object: "/admin/commissions/bulk-approve", Action: "POST"},
				{Object: "/admin/claims/:id/approve", Action: "POST"},
				{Object: "/admin/claims/:id/reject", Action: "POST"},
				{Object: "/admin/claims/bulk-approve", Action: "POST"},
				{Object: "/admin/claims/bulk-reject", Action: "POST"},
				{Object: "/admin/withdrawals/:id/settle", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
