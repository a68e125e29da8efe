package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/logger"
	"alumni-talent-platform/pkg/metrics"
	"alumni-talent-platform/pkg/security"
	"alumni-talent-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RegistrationDeps groups the collaborators of the registration usecase.
// Quota, Notifier, Metrics and Audit are optional.
type RegistrationDeps struct {
	Tx            domain.Transactor
	Registrations domain.RegistrationRepository
	Users         domain.UserRepository
	Companies     domain.CompanyRepository
	Storage       domain.ObjectStorage
	Cache         domain.RegistrationCache
	Quota         domain.UploadQuota
	Notifier      domain.DecisionNotifier
	Validate      *validator.Validate
	Metrics       *metrics.Metrics
	Audit         *security.SecurityLogger
}

type registrationUsecase struct {
	tx          domain.Transactor
	regRepo     domain.RegistrationRepository
	userRepo    domain.UserRepository
	companyRepo domain.CompanyRepository
	storage     domain.ObjectStorage
	cache       domain.RegistrationCache
	quota       domain.UploadQuota
	notifier    domain.DecisionNotifier
	validate    *validator.Validate
	metrics     *metrics.Metrics
	audit       *security.SecurityLogger
	now         func() time.Time
}

func NewRegistrationUsecase(deps RegistrationDeps) domain.RegistrationUsecase {
	uc := &registrationUsecase{
		tx:          deps.Tx,
		regRepo:     deps.Registrations,
		userRepo:    deps.Users,
		companyRepo: deps.Companies,
		storage:     deps.Storage,
		cache:       deps.Cache,
		quota:       deps.Quota,
		notifier:    deps.Notifier,
		validate:    deps.Validate,
		metrics:     deps.Metrics,
		audit:       deps.Audit,
		now:         time.Now,
	}
	if uc.validate == nil {
		uc.validate = validation.New()
	}
	return uc
}

type pendingUpload struct {
	field string
	file  *domain.FileUpload
	check security.FileValidationResult
}

func (uc *registrationUsecase) SubmitAlumni(ctx context.Context, user *domain.User, in *domain.AlumniRegistrationInput) (*domain.Registration, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Department = strings.TrimSpace(in.Department)
	if err := validateInput(uc.validate, in); err != nil {
		return nil, err
	}
	if in.IdentityDocument.Empty() {
		return nil, apperror.Validation("identity_document", "身分證明文件: 必填")
	}

	uploads, err := checkUploads(
		pendingUpload{field: "identity_document", file: in.IdentityDocument},
		pendingUpload{field: "diploma", file: in.Diploma},
	)
	if err != nil {
		return nil, err
	}

	reg := &domain.Registration{
		Kind:   domain.KindAlumni,
		Email:  user.Email,
		Name:   in.Name,
		Phone:  in.Phone,
		Status: domain.RegistrationPending,
		Alumni: &domain.AlumniDetails{
			StudentID:      in.StudentID,
			Department:     in.Department,
			GraduationYear: in.GraduationYear,
			Degree:         in.Degree,
		},
	}
	return uc.submit(ctx, user, reg, uploads, func(keys map[string]string) {
		reg.Alumni.IdentityDocumentKey = keys["identity_document"]
		if key, ok := keys["diploma"]; ok {
			reg.Alumni.DiplomaKey = &key
		}
	})
}

func (uc *registrationUsecase) SubmitCompany(ctx context.Context, user *domain.User, in *domain.CompanyRegistrationInput) (*domain.Registration, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.TaxID = strings.TrimSpace(in.TaxID)
	if err := validateInput(uc.validate, in); err != nil {
		return nil, err
	}

	uploads, err := checkUploads(pendingUpload{field: "business_license", file: in.BusinessLicense})
	if err != nil {
		return nil, err
	}

	reg := &domain.Registration{
		Kind:   domain.KindCompany,
		Email:  user.Email,
		Name:   in.Name,
		Phone:  in.Phone,
		Status: domain.RegistrationPending,
		Company: &domain.CompanyDetails{
			CompanyName: in.CompanyName,
			TaxID:       in.TaxID,
		},
	}
	return uc.submit(ctx, user, reg, uploads, func(keys map[string]string) {
		if key, ok := keys["business_license"]; ok {
			reg.Company.LicenseKey = &key
		}
	})
}

// checkUploads validates every non-empty file against the document policy
// and drops the empty ones.
func checkUploads(candidates ...pendingUpload) ([]pendingUpload, error) {
	var uploads []pendingUpload
	for _, c := range candidates {
		if c.file.Empty() {
			continue
		}
		c.check = security.DocumentPolicy.Validate(c.file.Filename, c.file.Data)
		if !c.check.Valid {
			return nil, apperror.Validation(c.field, fmt.Sprintf("%s: %s", validation.Label(c.field), c.check.Error))
		}
		uploads = append(uploads, c)
	}
	return uploads, nil
}

// submit stores the documents and inserts the registration. The active
// registration check is repeated under the per-email lock so two concurrent
// submissions cannot both pass it.
func (uc *registrationUsecase) submit(
	ctx context.Context,
	user *domain.User,
	reg *domain.Registration,
	uploads []pendingUpload,
	attach func(keys map[string]string),
) (*domain.Registration, error) {
	if err := uc.ensureNoActive(ctx, reg.Email); err != nil {
		return nil, err
	}

	if len(uploads) > 0 && uc.quota != nil {
		allowed, err := uc.quota.Allow(ctx, user.ID)
		if err != nil {
			logger.Log.Warn("upload quota check failed", "user_id", user.ID, "error", err)
		}
		if !allowed {
			uc.audit.Log(ctx, security.SecurityEvent{
				Event:        security.EventUploadRejected,
				ActorID:      user.ID,
				SubjectType:  "user_id",
				SubjectValue: user.ID,
				Details:      map[string]interface{}{"reason": "daily upload quota"},
			})
			return nil, apperror.New(http.StatusTooManyRequests, "Daily upload limit reached", nil)
		}
	}

	keys := make(map[string]string, len(uploads))
	for _, up := range uploads {
		key := fmt.Sprintf("registrations/%s/%s/%s%s", reg.Kind, uuid.NewString(), up.field, up.check.Extension)
		if _, err := uc.storage.Put(ctx, up.file.Data, key, up.check.ContentType()); err != nil {
			uc.discard(ctx, keys)
			return nil, apperror.Internal(fmt.Errorf("upload %s: %w", up.field, err))
		}
		keys[up.field] = key
	}
	attach(keys)

	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.regRepo.LockEmail(ctx, reg.Email); err != nil {
			return err
		}
		if err := uc.ensureNoActive(ctx, reg.Email); err != nil {
			return err
		}
		if err := uc.regRepo.Create(ctx, reg); err != nil {
			return err
		}
		return uc.userRepo.UpdateStatus(ctx, user.ID, domain.UserStatusPending)
	})
	if err != nil {
		uc.discard(ctx, keys)
		return nil, err
	}

	uc.invalidate(ctx)
	uc.metrics.RegistrationSubmitted(string(reg.Kind))
	uc.audit.Log(ctx, security.SecurityEvent{
		Event:        security.EventRegistrationSubmitted,
		ActorID:      user.ID,
		SubjectType:  "email",
		SubjectValue: reg.Email,
		Details:      map[string]interface{}{"kind": string(reg.Kind), "registration_id": reg.ID},
	})
	return reg, nil
}

func (uc *registrationUsecase) ensureNoActive(ctx context.Context, email string) error {
	for _, kind := range []domain.RegistrationKind{domain.KindAlumni, domain.KindCompany} {
		active, err := uc.regRepo.FindActiveByEmail(ctx, kind, email)
		if err != nil {
			return err
		}
		if active != nil {
			return apperror.Conflict("An active registration already exists for this email")
		}
	}
	return nil
}

func (uc *registrationUsecase) discard(ctx context.Context, keys map[string]string) {
	for _, key := range keys {
		if err := uc.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
			logger.Log.Warn("failed to remove orphaned upload", "key", key, "error", err)
		}
	}
}

func (uc *registrationUsecase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		logger.Log.Warn("registration cache invalidation failed", "error", err)
	}
}

func (uc *registrationUsecase) GetMyRegistrations(ctx context.Context, email string) (*domain.MyRegistrations, error) {
	alumni, err := uc.regRepo.FindActiveByEmail(ctx, domain.KindAlumni, email)
	if err != nil {
		return nil, err
	}
	company, err := uc.regRepo.FindActiveByEmail(ctx, domain.KindCompany, email)
	if err != nil {
		return nil, err
	}
	return &domain.MyRegistrations{Alumni: alumni, Company: company}, nil
}

func (uc *registrationUsecase) History(ctx context.Context, email string) ([]domain.Registration, error) {
	regs, err := uc.regRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []domain.Registration{}
	}
	return regs, nil
}

func (uc *registrationUsecase) List(ctx context.Context, actor *domain.User, filter domain.RegistrationFilter) (*domain.RegistrationPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Normalize()

	var version int64
	if uc.cache != nil {
		page, v, ok := uc.cache.GetList(ctx, filter)
		if ok {
			return page, nil
		}
		version = v
	}

	items, total, err := uc.regRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Registration{}
	}
	page := &domain.RegistrationPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}
	if uc.cache != nil {
		uc.cache.SetList(ctx, version, filter, page)
	}
	return page, nil
}

func (uc *registrationUsecase) Get(ctx context.Context, actor *domain.User, kind domain.RegistrationKind, id int64) (*domain.Registration, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	reg, err := uc.regRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperror.NotFound("Registration not found")
	}
	return reg, nil
}

// Approve marks a pending registration approved and verifies the applicant
// under the registration's role. Approving a company also creates its
// unpublished listing. All writes share one transaction.
func (uc *registrationUsecase) Approve(ctx context.Context, actor *domain.User, kind domain.RegistrationKind, id int64) (*domain.Registration, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var approved *domain.Registration
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		reg, err := uc.lockPending(ctx, kind, id)
		if err != nil {
			return err
		}

		now := uc.now()
		reg.Status = domain.RegistrationApproved
		reg.ReviewedBy = &actor.ID
		reg.ApprovedAt = &now
		reg.RejectedAt = nil
		reg.RejectionReason = nil
		if err := uc.regRepo.UpdateReview(ctx, reg); err != nil {
			return err
		}

		applicant, err := uc.userRepo.GetByEmail(ctx, reg.Email)
		if err != nil {
			return err
		}
		if applicant != nil {
			role := kind.Role()
			// staff keep their role; only the status follows the decision
			if applicant.IsAdmin() {
				role = applicant.Role
			}
			if err := uc.userRepo.UpdateAccess(ctx, applicant.ID, role, domain.UserStatusVerified); err != nil {
				return err
			}
		}

		if kind == domain.KindCompany && reg.Company != nil {
			if err := uc.ensureCompanyListing(ctx, reg); err != nil {
				return err
			}
		}
		approved = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterDecision(ctx, actor, approved, security.EventRegistrationApproved, "approved")
	return approved, nil
}

func (uc *registrationUsecase) ensureCompanyListing(ctx context.Context, reg *domain.Registration) error {
	existing, err := uc.companyRepo.GetByEmail(ctx, reg.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return uc.companyRepo.Create(ctx, &domain.Company{
		Name:      reg.Company.CompanyName,
		TaxID:     reg.Company.TaxID,
		Email:     reg.Email,
		Tags:      []string{},
		Published: false,
	})
}

// Reject records the reason and returns the applicant to UNVERIFIED. An
// invalid reason is refused before anything is read or written.
func (uc *registrationUsecase) Reject(ctx context.Context, actor *domain.User, kind domain.RegistrationKind, id int64, reason string) (*domain.Registration, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("reason", "退件原因: 必填")
	}
	if utf8.RuneCountInString(reason) > domain.MaxRejectionReasonLength {
		return nil, apperror.Validation("reason", fmt.Sprintf("退件原因: 最多 %d 個字元", domain.MaxRejectionReasonLength))
	}

	var rejected *domain.Registration
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		reg, err := uc.lockPending(ctx, kind, id)
		if err != nil {
			return err
		}

		now := uc.now()
		reg.Status = domain.RegistrationRejected
		reg.ReviewedBy = &actor.ID
		reg.RejectedAt = &now
		reg.ApprovedAt = nil
		reg.RejectionReason = &reason
		if err := uc.regRepo.UpdateReview(ctx, reg); err != nil {
			return err
		}

		applicant, err := uc.userRepo.GetByEmail(ctx, reg.Email)
		if err != nil {
			return err
		}
		if applicant != nil {
			if err := uc.userRepo.UpdateStatus(ctx, applicant.ID, domain.UserStatusUnverified); err != nil {
				return err
			}
		}
		rejected = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterDecision(ctx, actor, rejected, security.EventRegistrationRejected, "rejected")
	return rejected, nil
}

// lockPending loads the registration with a row lock and refuses anything
// that has already been decided.
func (uc *registrationUsecase) lockPending(ctx context.Context, kind domain.RegistrationKind, id int64) (*domain.Registration, error) {
	reg, err := uc.regRepo.GetForUpdate(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperror.NotFound("Registration not found")
	}
	if reg.Status != domain.RegistrationPending {
		return nil, apperror.Conflict(fmt.Sprintf("Registration has already been %s", strings.ToLower(string(reg.Status))))
	}
	return reg, nil
}

// afterDecision runs the side effects of a committed decision. None of them
// can undo it, so failures are only logged.
func (uc *registrationUsecase) afterDecision(ctx context.Context, actor *domain.User, reg *domain.Registration, event security.EventType, decision string) {
	uc.invalidate(ctx)
	uc.metrics.RegistrationDecided(string(reg.Kind), decision)
	uc.audit.LogDecision(ctx, event, actor.ID, string(reg.Kind), reg.ID, reg.Email)

	if uc.notifier == nil {
		return
	}
	d := domain.RegistrationDecision{
		RegistrationID: reg.ID,
		Kind:           reg.Kind,
		Email:          reg.Email,
		Name:           reg.Name,
		Status:         reg.Status,
		ReviewedBy:     actor.ID,
		DecidedAt:      uc.now(),
	}
	if reg.RejectionReason != nil {
		d.Reason = *reg.RejectionReason
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := uc.notifier.NotifyDecision(notifyCtx, d); err != nil {
		logger.Log.Warn("decision notification failed",
			"registration_id", reg.ID,
			"kind", reg.Kind,
			"error", err,
		)
	}
}
