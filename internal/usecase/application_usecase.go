package usecase

import (
	"context"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type applicationUsecase struct {
	appRepo     domain.ApplicationRepository
	jobRepo     domain.JobRepository
	resumeRepo  domain.ResumeRepository
	companyRepo domain.CompanyRepository
	validate    *validator.Validate
}

func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	resumeRepo domain.ResumeRepository,
	companyRepo domain.CompanyRepository,
	validate *validator.Validate,
) domain.ApplicationUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &applicationUsecase{
		appRepo:     appRepo,
		jobRepo:     jobRepo,
		resumeRepo:  resumeRepo,
		companyRepo: companyRepo,
		validate:    validate,
	}
}

// Apply submits the caller's resume to a published job of a published
// company. Each alumni may apply once per job.
func (uc *applicationUsecase) Apply(ctx context.Context, user *domain.User, in *domain.ApplyInput) (*domain.Application, error) {
	if err := requireAlumni(user); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := validateInput(uc.validate, in); err != nil {
		return nil, err
	}

	job, err := uc.jobRepo.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil || !job.Published {
		return nil, apperror.NotFound("Job not found")
	}
	company, err := uc.companyRepo.GetByID(ctx, job.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.Published {
		return nil, apperror.NotFound("Job not found")
	}

	resume, err := uc.resumeRepo.GetByID(ctx, in.ResumeID)
	if err != nil {
		return nil, err
	}
	if resume == nil || resume.UserID != user.ID {
		return nil, apperror.Validation("resume_id", "履歷: 找不到此履歷")
	}

	exists, err := uc.appRepo.Exists(ctx, user.ID, job.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("You have already applied to this job")
	}

	app := &domain.Application{
		UserID:      user.ID,
		JobID:       job.ID,
		ResumeID:    resume.ID,
		CoverLetter: in.CoverLetter,
		Status:      domain.ApplicationApplied,
		JobTitle:    job.Title,
		CompanyName: company.Name,
		ResumeURL:   resume.URL,
	}
	if err := uc.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (uc *applicationUsecase) ListMine(ctx context.Context, user *domain.User) ([]domain.Application, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	apps, err := uc.appRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// jobOwnedBy checks that the job belongs to the verified company user.
func (uc *applicationUsecase) jobOwnedBy(ctx context.Context, user *domain.User, jobID int64) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if !user.IsVerifiedAs(domain.RoleCompany) {
		return apperror.Forbidden("Verified company account required")
	}
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return apperror.NotFound("Job not found")
	}
	company, err := uc.companyRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if company == nil || company.ID != job.CompanyID {
		return apperror.Forbidden("You can only view applications for your own jobs")
	}
	return nil
}

func (uc *applicationUsecase) ListForJob(ctx context.Context, user *domain.User, jobID int64) ([]domain.Application, error) {
	if err := uc.jobOwnedBy(ctx, user, jobID); err != nil {
		return nil, err
	}
	apps, err := uc.appRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

func (uc *applicationUsecase) UpdateStatus(ctx context.Context, user *domain.User, id int64, status domain.ApplicationStatus) (*domain.Application, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	app, err := uc.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("Application not found")
	}
	if err := uc.jobOwnedBy(ctx, user, app.JobID); err != nil {
		return nil, err
	}
	if !app.Status.CanMoveTo(status) {
		return nil, apperror.Conflict("Cannot move application from " + string(app.Status) + " to " + string(status))
	}
	if err := uc.appRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	app.Status = status
	app.UpdatedAt = time.Now()
	return app, nil
}
