package domain

import (
	"context"
	"time"
)

type RegistrationKind string

const (
	KindAlumni  RegistrationKind = "alumni"
	KindCompany RegistrationKind = "company"
)

func ParseRegistrationKind(s string) (RegistrationKind, bool) {
	switch RegistrationKind(s) {
	case KindAlumni:
		return KindAlumni, true
	case KindCompany:
		return KindCompany, true
	}
	return "", false
}

// Role is the user role an approved registration of this kind grants.
func (k RegistrationKind) Role() Role {
	if k == KindCompany {
		return RoleCompany
	}
	return RoleAlumni
}

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// IsActive reports whether the status blocks a new registration for the
// same email.
func (s RegistrationStatus) IsActive() bool {
	return s == RegistrationPending || s == RegistrationApproved
}

const MaxRejectionReasonLength = 500

// Registration is one alumni or company application. Both kinds share the
// review columns; Alumni or Company is set according to Kind.
type Registration struct {
	ID              int64              `json:"id"`
	Kind            RegistrationKind   `json:"kind"`
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Phone           string             `json:"phone"`
	Status          RegistrationStatus `json:"status"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	ReviewedBy      *string            `json:"reviewed_by,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	RejectedAt      *time.Time         `json:"rejected_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	Alumni  *AlumniDetails  `json:"alumni,omitempty"`
	Company *CompanyDetails `json:"company,omitempty"`
}

type AlumniDetails struct {
	StudentID           string  `json:"student_id,omitempty"`
	Department          string  `json:"department,omitempty"`
	GraduationYear      int     `json:"graduation_year,omitempty"`
	Degree              string  `json:"degree,omitempty"`
	IdentityDocumentKey string  `json:"identity_document_key"`
	DiplomaKey          *string `json:"diploma_key,omitempty"`
}

type CompanyDetails struct {
	CompanyName string  `json:"company_name"`
	TaxID       string  `json:"tax_id"`
	LicenseKey  *string `json:"license_key,omitempty"`
}

// FileUpload is an uploaded file read fully into memory.
type FileUpload struct {
	Filename string
	Data     []byte
}

func (f *FileUpload) Empty() bool {
	return f == nil || len(f.Data) == 0
}

type AlumniRegistrationInput struct {
	Name           string `json:"name" form:"name" validate:"required,max=100,valid_name,no_emoji"`
	Phone          string `json:"phone" form:"phone" validate:"required,valid_phone"`
	StudentID      string `json:"student_id" form:"student_id" validate:"omitempty,max=32,alphanum"`
	Department     string `json:"department" form:"department" validate:"omitempty,max=100,no_emoji"`
	GraduationYear int    `json:"graduation_year" form:"graduation_year" validate:"omitempty,min=1950,max_current_year"`
	Degree         string `json:"degree" form:"degree" validate:"omitempty,oneof=BACHELOR MASTER DOCTORATE"`

	IdentityDocument *FileUpload `json:"-" form:"-"`
	Diploma          *FileUpload `json:"-" form:"-"`
}

type CompanyRegistrationInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=100,valid_name,no_emoji"`
	Phone       string `json:"phone" form:"phone" validate:"required,valid_phone"`
	CompanyName string `json:"company_name" form:"company_name" validate:"required,max=200,no_emoji"`
	TaxID       string `json:"tax_id" form:"tax_id" validate:"required,tax_id"`

	BusinessLicense *FileUpload `json:"-" form:"-"`
}

type RegistrationFilter struct {
	Kind   RegistrationKind   `form:"kind" binding:"omitempty,oneof=alumni company"`
	Status RegistrationStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Search string             `form:"q"`
	Page   int                `form:"page"`
	Limit  int                `form:"limit"`
}

func (f *RegistrationFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f RegistrationFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type RegistrationPage struct {
	Items []Registration `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// MyRegistrations holds the caller's active registration of each kind.
type MyRegistrations struct {
	Alumni  *Registration `json:"alumni"`
	Company *Registration `json:"company"`
}

// RegistrationDecision describes an approve or reject outcome for
// notification and event consumers.
type RegistrationDecision struct {
	RegistrationID int64              `json:"registration_id"`
	Kind           RegistrationKind   `json:"kind"`
	Email          string             `json:"email"`
	Name           string             `json:"name"`
	Status         RegistrationStatus `json:"status"`
	Reason         string             `json:"reason,omitempty"`
	ReviewedBy     string             `json:"reviewed_by"`
	DecidedAt      time.Time          `json:"decided_at"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, kind RegistrationKind, id int64) (*Registration, error)
	// GetForUpdate row-locks the registration for the rest of the
	// transaction in ctx.
	GetForUpdate(ctx context.Context, kind RegistrationKind, id int64) (*Registration, error)
	FindActiveByEmail(ctx context.Context, kind RegistrationKind, email string) (*Registration, error)
	ListByEmail(ctx context.Context, email string) ([]Registration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]Registration, int, error)
	UpdateReview(ctx context.Context, reg *Registration) error
	// LockEmail serialises submissions for one email until the
	// transaction in ctx ends.
	LockEmail(ctx context.Context, email string) error
}

// RegistrationCache caches admin list pages. Implementations must treat
// every failure as a miss.
//
// GetList also reports the cache version it read. SetList stores the page
// under that version, so a page loaded before an Invalidate is never
// visible after it.
type RegistrationCache interface {
	GetList(ctx context.Context, filter RegistrationFilter) (page *RegistrationPage, version int64, ok bool)
	SetList(ctx context.Context, version int64, filter RegistrationFilter, page *RegistrationPage)
	Invalidate(ctx context.Context) error
}

type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, decision RegistrationDecision) error
}

type RegistrationUsecase interface {
	SubmitAlumni(ctx context.Context, user *User, in *AlumniRegistrationInput) (*Registration, error)
	SubmitCompany(ctx context.Context, user *User, in *CompanyRegistrationInput) (*Registration, error)
	GetMyRegistrations(ctx context.Context, email string) (*MyRegistrations, error)
	History(ctx context.Context, email string) ([]Registration, error)
	List(ctx context.Context, actor *User, filter RegistrationFilter) (*RegistrationPage, error)
	Get(ctx context.Context, actor *User, kind RegistrationKind, id int64) (*Registration, error)
	Approve(ctx context.Context, actor *User, kind RegistrationKind, id int64) (*Registration, error)
	Reject(ctx context.Context, actor *User, kind RegistrationKind, id int64, reason string) (*Registration, error)
	Export(ctx context.Context, actor *User, filter RegistrationFilter, format string) (*ExportFile, error)
}
