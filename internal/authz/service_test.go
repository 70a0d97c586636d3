package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestBootstrapReviewerRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.SetAdminRoles(5, []string{"reviewer"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	cases := []struct {
		obj  string
		act  string
		want bool
	}{
		{"/api/v1/admin/agents", "GET", true},
		{"/api/v1/admin/agents/12/approve", "POST", true},
		{"/api/v1/admin/agents/12/kyc/verify", "POST", true},
		{"/api/v1/admin/policies/7/reject", "POST", true},
		{"/api/v1/admin/withdrawals/3/settle", "POST", true},
		{"/api/v1/admin/plans", "POST", false},
		{"/api/v1/admin/commission-rules", "PUT", false},
		{"/api/v1/admin/agents/12/block", "POST", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceAdmin(5, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.act, tc.obj, err)
		}
		if allow != tc.want {
			t.Fatalf("enforce %s %s want %v got %v", tc.act, tc.obj, tc.want, allow)
		}
	}
}

func TestBootstrapSuperRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"super"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	for _, tc := range []struct {
		obj string
		act string
	}{
		{"/api/v1/admin/plans", "POST"},
		{"/api/v1/admin/commission-rules", "PUT"},
		{"/api/v1/admin/agents/9/block", "POST"},
	} {
		allow, err := svc.EnforceAdmin(1, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.act, tc.obj, err)
		}
		if !allow {
			t.Fatalf("super should be allowed %s %s", tc.act, tc.obj)
		}
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"super"}); err != nil {
		t.Fatalf("set super failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{"reviewer"}); err != nil {
		t.Fatalf("override with reviewer failed: %v", err)
	}

	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get admin roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:reviewer" {
		t.Fatalf("roles want [role:reviewer] got %v", roles)
	}

	// 覆盖后不再保留 super 的能力
	allow, err := svc.EnforceAdmin(2, "/api/v1/admin/plans", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("overridden role should lose super permissions")
	}
}

func TestEnforceUnknownAdminDenied(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(42, "/api/v1/admin/agents", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("admin without roles should be denied")
	}
}

func TestNormalizeHelpers(t *testing.T) {
	if got := NormalizeObject("/api/v1/admin/agents"); got != "/admin/agents" {
		t.Fatalf("object want /admin/agents got %s", got)
	}
	if got := NormalizeObject("admin/agents"); got != "/admin/agents" {
		t.Fatalf("object want /admin/agents got %s", got)
	}
	if got := NormalizeAction(" get "); got != "GET" {
		t.Fatalf("action want GET got %s", got)
	}
	role, err := NormalizeRole("reviewer")
	if err != nil {
		t.Fatalf("normalize role failed: %v", err)
	}
	if role != "role:reviewer" {
		t.Fatalf("role want role:reviewer got %s", role)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("blank role should fail")
	}
}
