package usecase

import (
	"context"
	"strings"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type jobUsecase struct {
	jobRepo     domain.JobRepository
	companyRepo domain.CompanyRepository
	validate    *validator.Validate
}

func NewJobUsecase(jobRepo domain.JobRepository, companyRepo domain.CompanyRepository, validate *validator.Validate) domain.JobUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &jobUsecase{jobRepo: jobRepo, companyRepo: companyRepo, validate: validate}
}

// ownCompany resolves the company listing of a verified company user.
func (uc *jobUsecase) ownCompany(ctx context.Context, user *domain.User) (*domain.Company, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if !user.IsVerifiedAs(domain.RoleCompany) {
		return nil, apperror.Forbidden("Verified company account required")
	}
	company, err := uc.companyRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.Forbidden("No company listing for this account")
	}
	return company, nil
}

// ownJob loads a job and checks that it belongs to the user's company.
func (uc *jobUsecase) ownJob(ctx context.Context, user *domain.User, id int64) (*domain.Job, error) {
	company, err := uc.ownCompany(ctx, user)
	if err != nil {
		return nil, err
	}
	job, err := uc.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NotFound("Job not found")
	}
	if job.CompanyID != company.ID {
		return nil, apperror.Forbidden("You can only manage your own jobs")
	}
	return job, nil
}

func (uc *jobUsecase) checkInput(in *domain.JobInput) error {
	if in == nil {
		return apperror.BadRequest("Invalid request body")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(uc.validate, in); err != nil {
		return err
	}
	if in.SalaryMin != nil && in.SalaryMin.IsNegative() {
		return apperror.Validation("salary_min", "最低薪資: 不可為負數")
	}
	if in.SalaryMax != nil && in.SalaryMax.IsNegative() {
		return apperror.Validation("salary_max", "最高薪資: 不可為負數")
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && in.SalaryMin.GreaterThan(*in.SalaryMax) {
		return apperror.Validation("salary_max", "最高薪資: 不可小於最低薪資")
	}
	return nil
}

func applyJobInput(job *domain.Job, in *domain.JobInput) {
	job.Title = in.Title
	job.Description = in.Description
	job.Location = in.Location
	job.EmploymentType = in.EmploymentType
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.Tags = normalizeTags(in.Tags)
}

// Create adds an unpublished job to the caller's company.
func (uc *jobUsecase) Create(ctx context.Context, user *domain.User, in *domain.JobInput) (*domain.Job, error) {
	company, err := uc.ownCompany(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := uc.checkInput(in); err != nil {
		return nil, err
	}

	job := &domain.Job{CompanyID: company.ID, CompanyName: company.Name, CompanyLogoURL: company.LogoURL}
	applyJobInput(job, in)
	if err := uc.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (uc *jobUsecase) Update(ctx context.Context, user *domain.User, id int64, in *domain.JobInput) (*domain.Job, error) {
	job, err := uc.ownJob(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkInput(in); err != nil {
		return nil, err
	}
	applyJobInput(job, in)
	job.UpdatedAt = time.Now()
	if err := uc.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (uc *jobUsecase) SetPublished(ctx context.Context, user *domain.User, id int64, published bool) (*domain.Job, error) {
	job, err := uc.ownJob(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := uc.jobRepo.SetPublished(ctx, id, published); err != nil {
		return nil, err
	}
	job.Published = published
	return job, nil
}

func (uc *jobUsecase) Delete(ctx context.Context, user *domain.User, id int64) error {
	if _, err := uc.ownJob(ctx, user, id); err != nil {
		return err
	}
	return uc.jobRepo.Delete(ctx, id)
}

// Get returns a published job to anyone. Drafts are visible to their own
// company and to admins.
func (uc *jobUsecase) Get(ctx context.Context, viewer *domain.User, id int64) (*domain.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NotFound("Job not found")
	}
	if job.Published || viewer.IsAdmin() {
		return job, nil
	}
	if viewer.IsVerifiedAs(domain.RoleCompany) {
		company, err := uc.companyRepo.GetByEmail(ctx, viewer.Email)
		if err != nil {
			return nil, err
		}
		if company != nil && company.ID == job.CompanyID {
			return job, nil
		}
	}
	return nil, apperror.NotFound("Job not found")
}

func (uc *jobUsecase) ListPublished(ctx context.Context, filter domain.JobFilter) (*domain.JobPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Tag = strings.TrimSpace(filter.Tag)
	filter.Normalize()
	items, total, err := uc.jobRepo.ListPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Job{}
	}
	return &domain.JobPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (uc *jobUsecase) ListMine(ctx context.Context, user *domain.User) ([]domain.Job, error) {
	company, err := uc.ownCompany(ctx, user)
	if err != nil {
		return nil, err
	}
	jobs, err := uc.jobRepo.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return jobs, nil
}
