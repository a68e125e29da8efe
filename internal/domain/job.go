package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULL_TIME"
	EmploymentPartTime   EmploymentType = "PART_TIME"
	EmploymentContract   EmploymentType = "CONTRACT"
	EmploymentInternship EmploymentType = "INTERNSHIP"
)

type Job struct {
	ID             int64            `json:"id"`
	CompanyID      int64            `json:"company_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Location       *string          `json:"location"`
	EmploymentType EmploymentType   `json:"employment_type"`
	SalaryMin      *decimal.Decimal `json:"salary_min"`
	SalaryMax      *decimal.Decimal `json:"salary_max"`
	Tags           []string         `json:"tags"`
	Published      bool             `json:"published"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// joined from companies on reads
	CompanyName    string  `json:"company_name,omitempty"`
	CompanyLogoURL *string `json:"company_logo_url,omitempty"`
}

type JobInput struct {
	Title          string           `json:"title" validate:"required,max=150,no_emoji"`
	Description    string           `json:"description" validate:"required,max=10000"`
	Location       *string          `json:"location" validate:"omitempty,max=100"`
	EmploymentType EmploymentType   `json:"employment_type" validate:"required,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP"`
	SalaryMin      *decimal.Decimal `json:"salary_min"`
	SalaryMax      *decimal.Decimal `json:"salary_max"`
	Tags           []string         `json:"tags" validate:"omitempty,max=10,dive,required,max=30,no_emoji"`
}

type JobFilter struct {
	Search         string         `form:"q"`
	EmploymentType EmploymentType `form:"employment_type"`
	Tag            string         `form:"tag"`
	Page           int            `form:"page"`
	Limit          int            `form:"limit"`
}

func (f *JobFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type JobPage struct {
	Items []Job `json:"items"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	ListPublished(ctx context.Context, filter JobFilter) ([]Job, int, error)
	ListByCompany(ctx context.Context, companyID int64) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	SetPublished(ctx context.Context, id int64, published bool) error
	Delete(ctx context.Context, id int64) error
}

type JobUsecase interface {
	Create(ctx context.Context, user *User, in *JobInput) (*Job, error)
	Update(ctx context.Context, user *User, id int64, in *JobInput) (*Job, error)
	SetPublished(ctx context.Context, user *User, id int64, published bool) (*Job, error)
	Delete(ctx context.Context, user *User, id int64) error
	Get(ctx context.Context, viewer *User, id int64) (*Job, error)
	ListPublished(ctx context.Context, filter JobFilter) (*JobPage, error)
	ListMine(ctx context.Context, user *User) ([]Job, error)
}
