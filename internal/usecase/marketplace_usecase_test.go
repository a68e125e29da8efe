package usecase_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/internal/usecase"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/security"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompanyUploadLogo(t *testing.T) {
	ctx := context.Background()
	owner := verifiedCompany("c-user", "hr@corp.com")
	oldLogo := "https://cdn.test/companies/7/logo-old.jpg"
	company := &domain.Company{ID: 7, Name: "Corp", Email: "hr@corp.com", LogoURL: &oldLogo}

	t.Run("owner replaces logo and old object is removed", func(t *testing.T) {
		repo := new(MockCompanyRepo)
		store := new(MockStorage)
		uc := usecase.NewCompanyUsecase(repo, store, nil)

		repo.On("GetByID", ctx, int64(7)).Return(company, nil)
		store.On("Put", ctx, mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "companies/7/logo-") && strings.HasSuffix(key, ".jpg")
		}), "image/jpeg").Return("https://cdn.test/companies/7/logo-new.jpg", nil)
		repo.On("UpdateLogo", ctx, int64(7), "https://cdn.test/companies/7/logo-new.jpg").Return(nil)
		store.On("KeyFromURL", oldLogo).Return("companies/7/logo-old.jpg", true)
		store.On("Delete", ctx, "companies/7/logo-old.jpg").Return(nil)

		out, err := uc.UploadLogo(ctx, owner, 7, &domain.FileUpload{Filename: "logo.png", Data: pngBytes(t, 1024, 600)})
		require.NoError(t, err)
		require.NotNil(t, out.LogoURL)
		assert.Equal(t, "https://cdn.test/companies/7/logo-new.jpg", *out.LogoURL)
		repo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("other company is forbidden", func(t *testing.T) {
		repo := new(MockCompanyRepo)
		store := new(MockStorage)
		uc := usecase.NewCompanyUsecase(repo, store, nil)
		repo.On("GetByID", ctx, int64(7)).Return(company, nil)

		_, err := uc.UploadLogo(ctx, verifiedCompany("x", "other@corp.com"), 7, &domain.FileUpload{Filename: "logo.png", Data: pngBytes(t, 8, 8)})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-image is rejected", func(t *testing.T) {
		repo := new(MockCompanyRepo)
		uc := usecase.NewCompanyUsecase(repo, new(MockStorage), nil)
		repo.On("GetByID", ctx, int64(7)).Return(company, nil)

		_, err := uc.UploadLogo(ctx, owner, 7, &domain.FileUpload{Filename: "logo.png", Data: pdfBytes})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}

func TestCompanyVisibility(t *testing.T) {
	ctx := context.Background()
	draft := &domain.Company{ID: 3, Email: "hr@corp.com", Published: false}
	repo := new(MockCompanyRepo)
	repo.On("GetByID", ctx, int64(3)).Return(draft, nil)
	uc := usecase.NewCompanyUsecase(repo, nil, nil)

	_, err := uc.GetByID(ctx, nil, 3)
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	_, err = uc.GetByID(ctx, verifiedAlumni("a", "a@x.edu"), 3)
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))

	got, err := uc.GetByID(ctx, verifiedCompany("c", "hr@corp.com"), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)

	// a pending company user is not yet the owner
	pending := &domain.User{ID: "c", Email: "hr@corp.com", Role: domain.RoleCompany, Status: domain.UserStatusPending}
	_, err = uc.GetByID(ctx, pending, 3)
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
}

func TestCompanyUpdateMine_NormalizesTags(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCompanyRepo)
	uc := usecase.NewCompanyUsecase(repo, nil, nil)
	owner := verifiedCompany("c", "hr@corp.com")

	repo.On("GetByEmail", ctx, "hr@corp.com").Return(&domain.Company{ID: 3, Email: "hr@corp.com"}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Company) bool {
		return assert.ObjectsAreEqual([]string{"Go", "Cloud"}, c.Tags)
	})).Return(nil)

	_, err := uc.UpdateMine(ctx, owner, &domain.UpdateCompanyInput{Tags: []string{" Go ", "go", "Cloud", ""}})
	require.Error(t, err, "empty tag fails dive,required")

	out, err := uc.UpdateMine(ctx, owner, &domain.UpdateCompanyInput{Tags: []string{" Go ", "go", "Cloud"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Cloud"}, out.Tags)
}

func TestJobCreate(t *testing.T) {
	ctx := context.Background()
	owner := verifiedCompany("c", "hr@corp.com")
	company := &domain.Company{ID: 9, Name: "Corp", Email: "hr@corp.com"}

	t.Run("unverified company cannot post", func(t *testing.T) {
		uc := usecase.NewJobUsecase(new(MockJobRepo), new(MockCompanyRepo), nil)
		pending := &domain.User{ID: "c", Email: "hr@corp.com", Role: domain.RoleCompany, Status: domain.UserStatusPending}
		_, err := uc.Create(ctx, pending, &domain.JobInput{})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("salary range must be ordered", func(t *testing.T) {
		companies := new(MockCompanyRepo)
		companies.On("GetByEmail", ctx, "hr@corp.com").Return(company, nil)
		uc := usecase.NewJobUsecase(new(MockJobRepo), companies, nil)

		lo, hi := decimal.NewFromInt(60000), decimal.NewFromInt(40000)
		_, err := uc.Create(ctx, owner, &domain.JobInput{
			Title: "Backend Engineer", Description: "Go services",
			EmploymentType: domain.EmploymentFullTime, SalaryMin: &lo, SalaryMax: &hi,
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, "salary_max", appErr.Field)
	})

	t.Run("creates draft under own company", func(t *testing.T) {
		companies := new(MockCompanyRepo)
		jobs := new(MockJobRepo)
		companies.On("GetByEmail", ctx, "hr@corp.com").Return(company, nil)
		jobs.On("Create", ctx, mock.MatchedBy(func(j *domain.Job) bool {
			return j.CompanyID == 9 && !j.Published && j.Title == "Backend Engineer"
		})).Return(nil)
		uc := usecase.NewJobUsecase(jobs, companies, nil)

		salary := decimal.RequireFromString("45000.50")
		job, err := uc.Create(ctx, owner, &domain.JobInput{
			Title: " Backend Engineer ", Description: "Go services",
			EmploymentType: domain.EmploymentFullTime, SalaryMin: &salary,
		})
		require.NoError(t, err)
		assert.Equal(t, "Corp", job.CompanyName)
		jobs.AssertExpectations(t)
	})
}

func TestJobManageOwnOnly(t *testing.T) {
	ctx := context.Background()
	companies := new(MockCompanyRepo)
	jobs := new(MockJobRepo)
	companies.On("GetByEmail", ctx, "hr@corp.com").Return(&domain.Company{ID: 9, Email: "hr@corp.com"}, nil)
	jobs.On("GetByID", ctx, int64(50)).Return(&domain.Job{ID: 50, CompanyID: 10}, nil)
	uc := usecase.NewJobUsecase(jobs, companies, nil)

	err := uc.Delete(ctx, verifiedCompany("c", "hr@corp.com"), 50)
	assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	_, err = uc.SetPublished(ctx, verifiedCompany("c", "hr@corp.com"), 50, true)
	assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	jobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	// drafts of another company are invisible
	_, err = uc.Get(ctx, verifiedCompany("c", "hr@corp.com"), 50)
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	alumni := verifiedAlumni("a-1", "a@x.edu")
	job := &domain.Job{ID: 5, CompanyID: 9, Title: "Backend Engineer", Published: true}
	company := &domain.Company{ID: 9, Name: "Corp", Published: true}
	resume := &domain.Resume{ID: 11, UserID: "a-1", URL: "https://cdn.test/resumes/a-1/cv.pdf"}

	newUC := func() (domain.ApplicationUsecase, *MockApplicationRepo, *MockJobRepo, *MockResumeRepo, *MockCompanyRepo) {
		apps, jobs, resumes, companies := new(MockApplicationRepo), new(MockJobRepo), new(MockResumeRepo), new(MockCompanyRepo)
		return usecase.NewApplicationUsecase(apps, jobs, resumes, companies, nil), apps, jobs, resumes, companies
	}

	t.Run("unverified alumni cannot apply", func(t *testing.T) {
		uc, _, _, _, _ := newUC()
		pending := &domain.User{ID: "a-1", Role: domain.RoleAlumni, Status: domain.UserStatusPending}
		_, err := uc.Apply(ctx, pending, &domain.ApplyInput{JobID: 5, ResumeID: 11})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("someone else's resume", func(t *testing.T) {
		uc, _, jobs, resumes, companies := newUC()
		jobs.On("GetByID", ctx, int64(5)).Return(job, nil)
		companies.On("GetByID", ctx, int64(9)).Return(company, nil)
		resumes.On("GetByID", ctx, int64(12)).Return(&domain.Resume{ID: 12, UserID: "other"}, nil)

		_, err := uc.Apply(ctx, alumni, &domain.ApplyInput{JobID: 5, ResumeID: 12})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, "resume_id", appErr.Field)
	})

	t.Run("unpublished company hides its jobs", func(t *testing.T) {
		uc, _, jobs, _, companies := newUC()
		jobs.On("GetByID", ctx, int64(5)).Return(job, nil)
		companies.On("GetByID", ctx, int64(9)).Return(&domain.Company{ID: 9, Published: false}, nil)

		_, err := uc.Apply(ctx, alumni, &domain.ApplyInput{JobID: 5, ResumeID: 11})
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("duplicate application", func(t *testing.T) {
		uc, apps, jobs, resumes, companies := newUC()
		jobs.On("GetByID", ctx, int64(5)).Return(job, nil)
		companies.On("GetByID", ctx, int64(9)).Return(company, nil)
		resumes.On("GetByID", ctx, int64(11)).Return(resume, nil)
		apps.On("Exists", ctx, "a-1", int64(5)).Return(true, nil)

		_, err := uc.Apply(ctx, alumni, &domain.ApplyInput{JobID: 5, ResumeID: 11})
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
		apps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("applies", func(t *testing.T) {
		uc, apps, jobs, resumes, companies := newUC()
		jobs.On("GetByID", ctx, int64(5)).Return(job, nil)
		companies.On("GetByID", ctx, int64(9)).Return(company, nil)
		resumes.On("GetByID", ctx, int64(11)).Return(resume, nil)
		apps.On("Exists", ctx, "a-1", int64(5)).Return(false, nil)
		apps.On("Create", ctx, mock.MatchedBy(func(a *domain.Application) bool {
			return a.UserID == "a-1" && a.JobID == 5 && a.ResumeID == 11 && a.Status == domain.ApplicationApplied
		})).Return(nil)

		app, err := uc.Apply(ctx, alumni, &domain.ApplyInput{JobID: 5, ResumeID: 11})
		require.NoError(t, err)
		assert.Equal(t, "Corp", app.CompanyName)
		apps.AssertExpectations(t)
	})
}

func TestApplicationStatusTransitions(t *testing.T) {
	ctx := context.Background()
	owner := verifiedCompany("c", "hr@corp.com")

	setup := func(status domain.ApplicationStatus) (domain.ApplicationUsecase, *MockApplicationRepo) {
		apps, jobs, companies := new(MockApplicationRepo), new(MockJobRepo), new(MockCompanyRepo)
		apps.On("GetByID", ctx, int64(1)).Return(&domain.Application{ID: 1, JobID: 5, Status: status}, nil)
		jobs.On("GetByID", ctx, int64(5)).Return(&domain.Job{ID: 5, CompanyID: 9}, nil)
		companies.On("GetByEmail", ctx, "hr@corp.com").Return(&domain.Company{ID: 9}, nil)
		return usecase.NewApplicationUsecase(apps, jobs, new(MockResumeRepo), companies, nil), apps
	}

	uc, apps := setup(domain.ApplicationApplied)
	apps.On("UpdateStatus", ctx, int64(1), domain.ApplicationReviewed).Return(nil)
	out, err := uc.UpdateStatus(ctx, owner, 1, domain.ApplicationReviewed)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationReviewed, out.Status)

	uc, apps = setup(domain.ApplicationAccepted)
	_, err = uc.UpdateStatus(ctx, owner, 1, domain.ApplicationRejected)
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)

	apps, jobs, companies := new(MockApplicationRepo), new(MockJobRepo), new(MockCompanyRepo)
	apps.On("GetByID", ctx, int64(1)).Return(&domain.Application{ID: 1, JobID: 5, Status: domain.ApplicationApplied}, nil)
	jobs.On("GetByID", ctx, int64(5)).Return(&domain.Job{ID: 5, CompanyID: 9}, nil)
	companies.On("GetByEmail", ctx, "x@other.com").Return(&domain.Company{ID: 77}, nil)
	uc = usecase.NewApplicationUsecase(apps, jobs, new(MockResumeRepo), companies, nil)
	_, err = uc.UpdateStatus(ctx, verifiedCompany("x", "x@other.com"), 1, domain.ApplicationReviewed)
	assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestResumeUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	alumni := verifiedAlumni("a-1", "a@x.edu")

	t.Run("uploads pdf", func(t *testing.T) {
		repo := new(MockResumeRepo)
		store := new(MockStorage)
		uc := usecase.NewResumeUsecase(repo, store, nil, security.NopSecurityLogger())

		repo.On("ListByUser", ctx, "a-1").Return([]domain.Resume{}, nil)
		store.On("Put", ctx, pdfBytes, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "resumes/a-1/") && strings.HasSuffix(key, ".pdf")
		}), "application/pdf").Return("https://cdn.test/resumes/a-1/x.pdf", nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Resume")).Return(nil)

		resume, err := uc.Upload(ctx, alumni, "", &domain.FileUpload{Filename: "my-cv.pdf", Data: pdfBytes})
		require.NoError(t, err)
		assert.Equal(t, "my-cv", resume.Title)
		assert.Equal(t, int64(len(pdfBytes)), resume.SizeBytes)
	})

	t.Run("rejects images", func(t *testing.T) {
		uc := usecase.NewResumeUsecase(new(MockResumeRepo), new(MockStorage), nil, nil)
		_, err := uc.Upload(ctx, alumni, "cv", &domain.FileUpload{Filename: "cv.png", Data: pngBytes(t, 4, 4)})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("quota exhausted", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("ListByUser", ctx, "a-1").Return([]domain.Resume{}, nil)
		uc := usecase.NewResumeUsecase(repo, new(MockStorage), staticQuota{allowed: false}, nil)
		_, err := uc.Upload(ctx, alumni, "cv", &domain.FileUpload{Filename: "cv.pdf", Data: pdfBytes})
		assert.Equal(t, http.StatusTooManyRequests, apperror.CodeOf(err))
	})

	t.Run("delete hides other users' resumes", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByID", ctx, int64(4)).Return(&domain.Resume{ID: 4, UserID: "someone"}, nil)
		uc := usecase.NewResumeUsecase(repo, new(MockStorage), nil, nil)

		err := uc.Delete(ctx, alumni, 4)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("delete removes row then object", func(t *testing.T) {
		repo := new(MockResumeRepo)
		store := new(MockStorage)
		repo.On("GetByID", ctx, int64(4)).Return(&domain.Resume{ID: 4, UserID: "a-1", ObjectKey: "resumes/a-1/x.pdf"}, nil)
		repo.On("Delete", ctx, int64(4)).Return(nil)
		store.On("Delete", ctx, "resumes/a-1/x.pdf").Return(nil)
		uc := usecase.NewResumeUsecase(repo, store, nil, nil)

		require.NoError(t, uc.Delete(ctx, alumni, 4))
		store.AssertExpectations(t)
	})
}
