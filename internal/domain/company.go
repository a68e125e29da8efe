package domain

import (
	"context"
	"time"
)

// Company is the listing created when a company registration is approved.
// Email links it to the registrant's user account.
type Company struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	TaxID       string    `json:"tax_id"`
	Email       string    `json:"email"`
	Description *string   `json:"description"`
	Website     *string   `json:"website"`
	LogoURL     *string   `json:"logo_url"`
	Tags        []string  `json:"tags"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether u is the verified company user behind c.
func (c *Company) IsOwnedBy(u *User) bool {
	return c != nil && u.IsVerifiedAs(RoleCompany) && c.Email == u.Email
}

type UpdateCompanyInput struct {
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Website     *string  `json:"website" validate:"omitempty,url,max=255"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,required,max=30,no_emoji"`
}

type CompanyFilter struct {
	Published *bool  `form:"published"`
	Search    string `form:"q"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

func (f *CompanyFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type CompanyPage struct {
	Items []Company `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	GetByID(ctx context.Context, id int64) (*Company, error)
	GetByEmail(ctx context.Context, email string) (*Company, error)
	List(ctx context.Context, filter CompanyFilter) ([]Company, int, error)
	Update(ctx context.Context, company *Company) error
	UpdateLogo(ctx context.Context, id int64, logoURL string) error
	SetPublished(ctx context.Context, id int64, published bool) error
}

type CompanyUsecase interface {
	List(ctx context.Context, actor *User, filter CompanyFilter) (*CompanyPage, error)
	ListPublished(ctx context.Context, filter CompanyFilter) (*CompanyPage, error)
	GetByID(ctx context.Context, viewer *User, id int64) (*Company, error)
	GetMine(ctx context.Context, user *User) (*Company, error)
	UpdateMine(ctx context.Context, user *User, in *UpdateCompanyInput) (*Company, error)
	UploadLogo(ctx context.Context, user *User, id int64, file *FileUpload) (*Company, error)
	SetPublished(ctx context.Context, actor *User, id int64, published bool) (*Company, error)
}
