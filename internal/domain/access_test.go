package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRoute(t *testing.T) {
	tests := map[string]RouteClass{
		"/admin":               RouteAdmin,
		"/admin/registrations": RouteAdmin,
		"/administrator":       RouteOther,
		"/profile/x":           RouteProfile,
		"/enterprise":          RouteEnterprise,
		"/enterprise/jobs/1":   RouteEnterprise,
		"/api/admin/x":         RouteOther,
		"/":                    RouteOther,
	}
	for path, want := range tests {
		assert.Equal(t, want, ClassifyRoute(path), path)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		class  RouteClass
		role   Role
		status UserStatus
		want   Decision
	}{
		{"no session on admin", RouteAdmin, "", "", Deny},
		{"no session on profile", RouteProfile, "", "", Deny},
		{"no session on public page", RouteOther, "", "", Allow},
		{"superadmin on admin", RouteAdmin, RoleSuperadmin, UserStatusVerified, Allow},
		{"superadmin unverified on enterprise", RouteEnterprise, RoleSuperadmin, UserStatusUnverified, Allow},
		{"admin on admin", RouteAdmin, RoleAdmin, UserStatusVerified, Allow},
		{"alumni on admin", RouteAdmin, RoleAlumni, UserStatusVerified, Deny},
		{"company on admin", RouteAdmin, RoleCompany, UserStatusVerified, Deny},
		{"verified alumni on profile", RouteProfile, RoleAlumni, UserStatusVerified, Allow},
		{"pending alumni on profile", RouteProfile, RoleAlumni, UserStatusPending, Deny},
		{"unverified alumni on profile", RouteProfile, RoleAlumni, UserStatusUnverified, Deny},
		{"verified company on profile", RouteProfile, RoleCompany, UserStatusVerified, Deny},
		{"admin on profile", RouteProfile, RoleAdmin, UserStatusVerified, Deny},
		{"verified company on enterprise", RouteEnterprise, RoleCompany, UserStatusVerified, Allow},
		{"pending company on enterprise", RouteEnterprise, RoleCompany, UserStatusPending, Deny},
		{"verified alumni on enterprise", RouteEnterprise, RoleAlumni, UserStatusVerified, Deny},
		{"alumni on public page", RouteOther, RoleAlumni, UserStatusPending, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.class, tt.role, tt.status))
		})
	}
}
