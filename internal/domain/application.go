package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

const (
	ApplicationApplied  ApplicationStatus = "applied"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// CanMoveTo lists the allowed status changes; accepted and rejected are
// final.
func (s ApplicationStatus) CanMoveTo(next ApplicationStatus) bool {
	switch s {
	case ApplicationApplied:
		return next == ApplicationReviewed || next == ApplicationAccepted || next == ApplicationRejected
	case ApplicationReviewed:
		return next == ApplicationAccepted || next == ApplicationRejected
	}
	return false
}

type Application struct {
	ID          int64             `json:"id"`
	UserID      string            `json:"user_id"`
	JobID       int64             `json:"job_id"`
	ResumeID    int64             `json:"resume_id"`
	CoverLetter *string           `json:"cover_letter"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// joined on reads
	JobTitle       string `json:"job_title,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	ApplicantEmail string `json:"applicant_email,omitempty"`
	ResumeURL      string `json:"resume_url,omitempty"`
}

type ApplyInput struct {
	JobID       int64   `json:"job_id" validate:"required,gt=0"`
	ResumeID    int64   `json:"resume_id" validate:"required,gt=0"`
	CoverLetter *string `json:"cover_letter" validate:"omitempty,max=3000"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	Exists(ctx context.Context, userID string, jobID int64) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	ListByJob(ctx context.Context, jobID int64) ([]Application, error)
	UpdateStatus(ctx context.Context, id int64, status ApplicationStatus) error
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, user *User, in *ApplyInput) (*Application, error)
	ListMine(ctx context.Context, user *User) ([]Application, error)
	ListForJob(ctx context.Context, user *User, jobID int64) ([]Application, error)
	UpdateStatus(ctx context.Context, user *User, id int64, status ApplicationStatus) (*Application, error)
}
