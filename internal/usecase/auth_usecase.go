package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/security"

	"github.com/google/uuid"
)

type authUsecase struct {
	userRepo    domain.UserRepository
	superadmins map[string]bool
	audit       *security.SecurityLogger
}

// NewAuthUsecase creates the sign-in and role management usecase. Emails in
// superadminEmails are promoted to SUPERADMIN on every sign-in.
func NewAuthUsecase(userRepo domain.UserRepository, superadminEmails []string, audit *security.SecurityLogger) domain.AuthUsecase {
	superadmins := make(map[string]bool, len(superadminEmails))
	for _, e := range superadminEmails {
		superadmins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &authUsecase{userRepo: userRepo, superadmins: superadmins, audit: audit}
}

// SignIn creates the local user on first sign-in and keeps the profile in
// sync afterwards. Role and status are never touched for existing users
// except for the configured superadmins.
func (u *authUsecase) SignIn(ctx context.Context, in domain.SignInInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, apperror.BadRequest("Sign-in identity has no email")
	}

	existing, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		user := u.newUser(email, in)
		err = u.userRepo.Create(ctx, user)
		if err == nil {
			u.audit.Log(ctx, security.SecurityEvent{
				Event:        security.EventSignIn,
				ActorID:      user.ID,
				SubjectType:  "email",
				SubjectValue: email,
				Details:      map[string]interface{}{"first_sign_in": true},
			})
			return user, nil
		}
		// Lost a race with a concurrent first sign-in for the same email.
		if apperror.CodeOf(err) != http.StatusConflict {
			return nil, err
		}
		existing, err = u.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, apperror.Internal(errors.New("user vanished after conflicting insert"))
		}
	}

	changed := false
	if name := strings.TrimSpace(in.Name); name != "" && name != existing.Username {
		existing.Username = name
		changed = true
	}
	if in.AvatarURL != "" && (existing.AvatarURL == nil || *existing.AvatarURL != in.AvatarURL) {
		avatar := in.AvatarURL
		existing.AvatarURL = &avatar
		changed = true
	}
	if changed {
		existing.UpdatedAt = time.Now()
		if err := u.userRepo.UpdateProfile(ctx, existing); err != nil {
			return nil, err
		}
	}

	if u.superadmins[email] && (existing.Role != domain.RoleSuperadmin || existing.Status != domain.UserStatusVerified) {
		if err := u.userRepo.UpdateAccess(ctx, existing.ID, domain.RoleSuperadmin, domain.UserStatusVerified); err != nil {
			return nil, err
		}
		existing.Role = domain.RoleSuperadmin
		existing.Status = domain.UserStatusVerified
	}

	u.audit.Log(ctx, security.SecurityEvent{
		Event:        security.EventSignIn,
		ActorID:      existing.ID,
		SubjectType:  "email",
		SubjectValue: email,
	})
	return existing, nil
}

func (u *authUsecase) newUser(email string, in domain.SignInInput) *domain.User {
	now := time.Now()
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  strings.TrimSpace(in.Name),
		Role:      domain.RoleAlumni,
		Status:    domain.UserStatusUnverified,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Username == "" {
		user.Username = strings.SplitN(email, "@", 2)[0]
	}
	if in.AvatarURL != "" {
		avatar := in.AvatarURL
		user.AvatarURL = &avatar
	}
	if u.superadmins[email] {
		user.Role = domain.RoleSuperadmin
		user.Status = domain.UserStatusVerified
	}
	return user
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// AssignRole lets a superadmin grant ALUMNI, COMPANY or ADMIN. Status is
// left as it is.
func (u *authUsecase) AssignRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if !actor.IsSuperadmin() {
		return nil, apperror.Forbidden("Only superadmins can assign roles")
	}
	if !role.Valid() {
		return nil, apperror.Validation("role", "角色: 無效的角色")
	}
	if role == domain.RoleSuperadmin {
		return nil, apperror.Forbidden("SUPERADMIN cannot be granted")
	}

	target, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperror.NotFound("User not found")
	}
	if target.IsSuperadmin() {
		return nil, apperror.Forbidden("Cannot change the role of a superadmin")
	}

	if err := u.userRepo.UpdateAccess(ctx, target.ID, role, target.Status); err != nil {
		return nil, err
	}
	previous := target.Role
	target.Role = role

	u.audit.Log(ctx, security.SecurityEvent{
		Event:        security.EventRoleAssigned,
		ActorID:      actor.ID,
		SubjectType:  "user_id",
		SubjectValue: target.ID,
		Details:      map[string]interface{}{"from": string(previous), "to": string(role)},
	})
	return target, nil
}
