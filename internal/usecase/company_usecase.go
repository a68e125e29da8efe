package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/imaging"
	"alumni-talent-platform/pkg/logger"
	"alumni-talent-platform/pkg/security"
	"alumni-talent-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	logoMaxDimension = 512
	logoJPEGQuality  = 85
)

type companyUsecase struct {
	companyRepo domain.CompanyRepository
	storage     domain.ObjectStorage
	validate    *validator.Validate
}

func NewCompanyUsecase(companyRepo domain.CompanyRepository, storage domain.ObjectStorage, validate *validator.Validate) domain.CompanyUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &companyUsecase{companyRepo: companyRepo, storage: storage, validate: validate}
}

// List is the admin view and includes unpublished listings.
func (uc *companyUsecase) List(ctx context.Context, actor *domain.User, filter domain.CompanyFilter) (*domain.CompanyPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.list(ctx, filter)
}

func (uc *companyUsecase) ListPublished(ctx context.Context, filter domain.CompanyFilter) (*domain.CompanyPage, error) {
	published := true
	filter.Published = &published
	return uc.list(ctx, filter)
}

func (uc *companyUsecase) list(ctx context.Context, filter domain.CompanyFilter) (*domain.CompanyPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Normalize()
	items, total, err := uc.companyRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Company{}
	}
	return &domain.CompanyPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// GetByID hides unpublished companies from everyone but their owner and
// admins.
func (uc *companyUsecase) GetByID(ctx context.Context, viewer *domain.User, id int64) (*domain.Company, error) {
	company, err := uc.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil || (!company.Published && !viewer.IsAdmin() && !company.IsOwnedBy(viewer)) {
		return nil, apperror.NotFound("Company not found")
	}
	return company, nil
}

func (uc *companyUsecase) GetMine(ctx context.Context, user *domain.User) (*domain.Company, error) {
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
		return nil, apperror.NotFound("Company not found")
	}
	return company, nil
}

func (uc *companyUsecase) UpdateMine(ctx context.Context, user *domain.User, in *domain.UpdateCompanyInput) (*domain.Company, error) {
	company, err := uc.GetMine(ctx, user)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := validateInput(uc.validate, in); err != nil {
		return nil, err
	}

	if in.Description != nil {
		company.Description = in.Description
	}
	if in.Website != nil {
		company.Website = in.Website
	}
	if in.Tags != nil {
		company.Tags = normalizeTags(in.Tags)
	}
	company.UpdatedAt = time.Now()
	if err := uc.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// UploadLogo resizes the image to a JPEG thumbnail, stores it and removes
// the previous logo object.
func (uc *companyUsecase) UploadLogo(ctx context.Context, user *domain.User, id int64, file *domain.FileUpload) (*domain.Company, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	company, err := uc.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.NotFound("Company not found")
	}
	if !company.IsOwnedBy(user) && !user.IsAdmin() {
		return nil, apperror.Forbidden("You can only change your own company logo")
	}
	if file.Empty() {
		return nil, apperror.Validation("logo", "公司標誌: 必填")
	}
	check := security.ImagePolicy.Validate(file.Filename, file.Data)
	if !check.Valid {
		return nil, apperror.Validation("logo", "公司標誌: "+check.Error)
	}

	resized, err := imaging.ResizeToJPEG(file.Data, logoMaxDimension, logoJPEGQuality)
	if err != nil {
		return nil, apperror.Validation("logo", "公司標誌: 無法讀取圖片")
	}

	key := fmt.Sprintf("companies/%d/logo-%s.jpg", company.ID, uuid.NewString())
	url, err := uc.storage.Put(ctx, resized, key, "image/jpeg")
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("upload logo: %w", err))
	}
	if err := uc.companyRepo.UpdateLogo(ctx, company.ID, url); err != nil {
		if delErr := uc.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.Log.Warn("failed to remove orphaned logo", "key", key, "error", delErr)
		}
		return nil, err
	}

	if company.LogoURL != nil {
		if oldKey, ok := uc.storage.KeyFromURL(*company.LogoURL); ok {
			if err := uc.storage.Delete(ctx, oldKey); err != nil {
				logger.Log.Warn("failed to remove previous logo", "key", oldKey, "error", err)
			}
		}
	}
	company.LogoURL = &url
	return company, nil
}

func (uc *companyUsecase) SetPublished(ctx context.Context, actor *domain.User, id int64, published bool) (*domain.Company, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	company, err := uc.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, apperror.NotFound("Company not found")
	}
	if !company.IsOwnedBy(actor) && !actor.IsAdmin() {
		return nil, apperror.Forbidden("You can only publish your own company")
	}
	if err := uc.companyRepo.SetPublished(ctx, id, published); err != nil {
		return nil, err
	}
	company.Published = published
	return company, nil
}

// normalizeTags trims and de-duplicates tags case-insensitively, keeping
// the first spelling.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
