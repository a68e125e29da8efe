package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/internal/usecase"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("first sign-in creates an unverified alumni", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, nil, security.NopSecurityLogger())

		repo.On("GetByEmail", ctx, "a@x.edu").Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "a@x.edu" && u.Role == domain.RoleAlumni &&
				u.Status == domain.UserStatusUnverified && u.ID != "" && u.Username == "王小明"
		})).Return(nil)

		user, err := uc.SignIn(ctx, domain.SignInInput{Email: " A@X.edu ", Name: "王小明"})
		require.NoError(t, err)
		assert.Equal(t, "a@x.edu", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("configured superadmin is promoted", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, []string{"Root@School.edu"}, security.NopSecurityLogger())

		existing := &domain.User{ID: "u-1", Email: "root@school.edu", Username: "root", Role: domain.RoleAlumni, Status: domain.UserStatusUnverified}
		repo.On("GetByEmail", ctx, "root@school.edu").Return(existing, nil)
		repo.On("UpdateAccess", ctx, "u-1", domain.RoleSuperadmin, domain.UserStatusVerified).Return(nil)

		user, err := uc.SignIn(ctx, domain.SignInInput{Email: "root@school.edu", Name: "root"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSuperadmin, user.Role)
		assert.Equal(t, domain.UserStatusVerified, user.Status)
		repo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	})

	t.Run("returning user keeps role and status", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, nil, security.NopSecurityLogger())

		existing := &domain.User{ID: "u-2", Email: "c@corp.com", Username: "old", Role: domain.RoleCompany, Status: domain.UserStatusVerified}
		repo.On("GetByEmail", ctx, "c@corp.com").Return(existing, nil)
		repo.On("UpdateProfile", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "New Name" && u.AvatarURL != nil && *u.AvatarURL == "https://img/a.png"
		})).Return(nil)

		user, err := uc.SignIn(ctx, domain.SignInInput{Email: "c@corp.com", Name: "New Name", AvatarURL: "https://img/a.png"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCompany, user.Role)
		assert.Equal(t, domain.UserStatusVerified, user.Status)
		repo.AssertNotCalled(t, "UpdateAccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing email", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockUserRepo), nil, nil)
		_, err := uc.SignIn(ctx, domain.SignInInput{Name: "x"})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()
	superadmin := &domain.User{ID: "root", Role: domain.RoleSuperadmin, Status: domain.UserStatusVerified}

	t.Run("only superadmins can assign roles", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, nil, nil)
		admin := &domain.User{ID: "adm", Role: domain.RoleAdmin, Status: domain.UserStatusVerified}

		_, err := uc.AssignRole(ctx, admin, "target", domain.RoleAdmin)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
		_, err = uc.AssignRole(ctx, nil, "target", domain.RoleAdmin)
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
		repo.AssertNotCalled(t, "UpdateAccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("superadmin cannot be granted", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockUserRepo), nil, nil)
		_, err := uc.AssignRole(ctx, superadmin, "target", domain.RoleSuperadmin)
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("invalid role", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockUserRepo), nil, nil)
		_, err := uc.AssignRole(ctx, superadmin, "target", domain.Role("OWNER"))
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, nil, nil)
		repo.On("GetByID", ctx, "ghost").Return(nil, nil)

		_, err := uc.AssignRole(ctx, superadmin, "ghost", domain.RoleAdmin)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("grants admin and keeps status", func(t *testing.T) {
		repo := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(repo, nil, security.NopSecurityLogger())
		target := &domain.User{ID: "t-1", Role: domain.RoleAlumni, Status: domain.UserStatusPending}
		repo.On("GetByID", ctx, "t-1").Return(target, nil)
		repo.On("UpdateAccess", ctx, "t-1", domain.RoleAdmin, domain.UserStatusPending).Return(nil)

		user, err := uc.AssignRole(ctx, superadmin, "t-1", domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		repo.AssertExpectations(t)
	})
}
