// Package schema declares the table layout read and written by the pgx
// repositories. It is only used to migrate the database.
package schema

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	Email     string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	Username  string  `gorm:"type:varchar(100);not null;default:''"`
	AvatarURL *string `gorm:"type:text"`
	Role      string  `gorm:"type:varchar(20);not null;default:'ALUMNI';check:role IN ('ALUMNI','COMPANY','ADMIN','SUPERADMIN')"`
	Status    string  `gorm:"type:varchar(20);not null;default:'UNVERIFIED';check:status IN ('PENDING','UNVERIFIED','VERIFIED')"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Review holds the lifecycle columns both registration tables share.
type Review struct {
	Status          string  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RejectionReason *string `gorm:"type:varchar(500)"`
	ReviewedBy      *string `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

type AlumniRegistration struct {
	ID                  int64   `gorm:"primaryKey"`
	Email               string  `gorm:"type:varchar(255);not null;index"`
	Name                string  `gorm:"type:varchar(100);not null"`
	Phone               string  `gorm:"type:varchar(20);not null"`
	StudentID           string  `gorm:"type:varchar(32);not null;default:''"`
	Department          string  `gorm:"type:varchar(100);not null;default:''"`
	GraduationYear      int     `gorm:"not null;default:0"`
	Degree              string  `gorm:"type:varchar(20);not null;default:''"`
	IdentityDocumentKey string  `gorm:"type:text;not null"`
	DiplomaKey          *string `gorm:"type:text"`
	Review
}

type CompanyRegistration struct {
	ID          int64   `gorm:"primaryKey"`
	Email       string  `gorm:"type:varchar(255);not null;index"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Phone       string  `gorm:"type:varchar(20);not null"`
	CompanyName string  `gorm:"type:varchar(200);not null"`
	TaxID       string  `gorm:"type:char(8);not null"`
	LicenseKey  *string `gorm:"type:text"`
	Review
}

type Company struct {
	ID          int64          `gorm:"primaryKey"`
	Name        string         `gorm:"type:varchar(200);not null"`
	TaxID       string         `gorm:"type:char(8);not null"`
	Email       string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description *string        `gorm:"type:text"`
	Website     *string        `gorm:"type:varchar(255)"`
	LogoURL     *string        `gorm:"type:text"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Published   bool           `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Job struct {
	ID             int64               `gorm:"primaryKey"`
	CompanyID      int64               `gorm:"not null;index"`
	Company        Company             `gorm:"constraint:OnDelete:CASCADE"`
	Title          string              `gorm:"type:varchar(150);not null"`
	Description    string              `gorm:"type:text;not null"`
	Location       *string             `gorm:"type:varchar(100)"`
	EmploymentType string              `gorm:"type:varchar(20);not null"`
	SalaryMin      decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	SalaryMax      decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Tags           pq.StringArray      `gorm:"type:text[];not null;default:'{}'"`
	Published      bool                `gorm:"not null;default:false;index"`
	CreatedAt      time.Time           `gorm:"index"`
	UpdatedAt      time.Time
}

type Resume struct {
	ID          int64  `gorm:"primaryKey"`
	UserID      string `gorm:"type:uuid;not null;index"`
	User        User   `gorm:"constraint:OnDelete:CASCADE"`
	Title       string `gorm:"type:varchar(150);not null"`
	ObjectKey   string `gorm:"type:text;not null"`
	URL         string `gorm:"type:text;not null"`
	FileName    string `gorm:"type:varchar(255);not null"`
	ContentType string `gorm:"type:varchar(100);not null"`
	SizeBytes   int64  `gorm:"not null"`
	CreatedAt   time.Time
}

type Application struct {
	ID          int64   `gorm:"primaryKey"`
	UserID      string  `gorm:"type:uuid;not null;uniqueIndex:idx_applications_user_job"`
	User        User    `gorm:"constraint:OnDelete:CASCADE"`
	JobID       int64   `gorm:"not null;uniqueIndex:idx_applications_user_job;index"`
	Job         Job     `gorm:"constraint:OnDelete:CASCADE"`
	ResumeID    *int64  `gorm:"index"`
	Resume      *Resume `gorm:"constraint:OnDelete:SET NULL"`
	CoverLetter *string `gorm:"type:text"`
	Status      string  `gorm:"type:varchar(20);not null;default:'applied'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// All lists the models in dependency order.
func All() []any {
	return []any{
		&User{},
		&AlumniRegistration{},
		&CompanyRegistration{},
		&Company{},
		&Job{},
		&Resume{},
		&Application{},
	}
}

// PostMigrate holds statements AutoMigrate cannot express. Partial unique
// indexes keep at most one active registration per email within a table;
// the cross-table rule is enforced by the submission lock.
var PostMigrate = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_alumni_registrations_active_email
		ON alumni_registrations (email) WHERE status IN ('PENDING', 'APPROVED')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_company_registrations_active_email
		ON company_registrations (email) WHERE status IN ('PENDING', 'APPROVED')`,
}
