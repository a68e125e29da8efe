package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleAlumni     Role = "ALUMNI"
	RoleCompany    Role = "COMPANY"
	RoleAdmin      Role = "ADMIN"
	RoleSuperadmin Role = "SUPERADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAlumni, RoleCompany, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusPending    UserStatus = "PENDING"
	UserStatusUnverified UserStatus = "UNVERIFIED"
	UserStatusVerified   UserStatus = "VERIFIED"
)

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSuperadmin)
}

func (u *User) IsSuperadmin() bool {
	return u != nil && u.Role == RoleSuperadmin
}

// IsVerifiedAs reports whether u holds role and has been verified.
func (u *User) IsVerifiedAs(role Role) bool {
	return u != nil && u.Role == role && u.Status == UserStatusVerified
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdateAccess(ctx context.Context, id string, role Role, status UserStatus) error
	UpdateStatus(ctx context.Context, id string, status UserStatus) error
}

// SignInInput is the identity a successful OAuth sign-in proved.
type SignInInput struct {
	Email     string
	Name      string
	AvatarURL string
}

type AuthUsecase interface {
	SignIn(ctx context.Context, in SignInInput) (*User, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	AssignRole(ctx context.Context, actor *User, userID string, role Role) (*User, error)
}
