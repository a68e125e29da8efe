package domain

import "strings"

type RouteClass int

const (
	RouteOther RouteClass = iota
	RouteAdmin
	RouteProfile
	RouteEnterprise
)

func (c RouteClass) String() string {
	switch c {
	case RouteAdmin:
		return "admin"
	case RouteProfile:
		return "profile"
	case RouteEnterprise:
		return "enterprise"
	default:
		return "other"
	}
}

type Decision int

const (
	Allow Decision = iota
	Deny
)

var protectedPrefixes = []struct {
	prefix string
	class  RouteClass
}{
	{"/admin", RouteAdmin},
	{"/profile", RouteProfile},
	{"/enterprise", RouteEnterprise},
}

// ClassifyRoute maps a request path to its protected area. Prefixes match
// on segment boundaries, so /administrator is not /admin.
func ClassifyRoute(path string) RouteClass {
	for _, p := range protectedPrefixes {
		if path == p.prefix || strings.HasPrefix(path, p.prefix+"/") {
			return p.class
		}
	}
	return RouteOther
}

// Decide is the page access policy. An empty role means there is no
// session.
func Decide(class RouteClass, role Role, status UserStatus) Decision {
	if class == RouteOther {
		return Allow
	}
	if role == "" {
		return Deny
	}
	if role == RoleSuperadmin {
		return Allow
	}

	switch class {
	case RouteAdmin:
		if role != RoleAdmin {
			return Deny
		}
	case RouteProfile:
		if status != UserStatusVerified || role != RoleAlumni {
			return Deny
		}
	case RouteEnterprise:
		if status != UserStatusVerified || role != RoleCompany {
			return Deny
		}
	}
	return Allow
}
