package usecase

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/logger"
	"alumni-talent-platform/pkg/security"

	"github.com/google/uuid"
)

const maxResumesPerUser = 10

type resumeUsecase struct {
	resumeRepo domain.ResumeRepository
	storage    domain.ObjectStorage
	quota      domain.UploadQuota
	audit      *security.SecurityLogger
}

// NewResumeUsecase creates the resume usecase. quota may be nil.
func NewResumeUsecase(resumeRepo domain.ResumeRepository, storage domain.ObjectStorage, quota domain.UploadQuota, audit *security.SecurityLogger) domain.ResumeUsecase {
	return &resumeUsecase{resumeRepo: resumeRepo, storage: storage, quota: quota, audit: audit}
}

func requireAlumni(user *domain.User) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if !user.IsVerifiedAs(domain.RoleAlumni) {
		return apperror.Forbidden("Verified alumni account required")
	}
	return nil
}

func (uc *resumeUsecase) Upload(ctx context.Context, user *domain.User, title string, file *domain.FileUpload) (*domain.Resume, error) {
	if err := requireAlumni(user); err != nil {
		return nil, err
	}
	if file.Empty() {
		return nil, apperror.Validation("file", "檔案: 必填")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	}
	if len([]rune(title)) > 100 {
		return nil, apperror.Validation("title", "標題: 最多 100 個字元")
	}

	check := security.ResumePolicy.Validate(file.Filename, file.Data)
	if !check.Valid {
		uc.audit.Log(ctx, security.SecurityEvent{
			Event:        security.EventUploadRejected,
			ActorID:      user.ID,
			SubjectType:  "user_id",
			SubjectValue: user.ID,
			Details:      map[string]interface{}{"reason": check.Error, "mime": check.DetectedMIME},
		})
		return nil, apperror.Validation("file", "檔案: "+check.Error)
	}

	existing, err := uc.resumeRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxResumesPerUser {
		return nil, apperror.Conflict(fmt.Sprintf("You can keep at most %d resumes", maxResumesPerUser))
	}

	if uc.quota != nil {
		allowed, err := uc.quota.Allow(ctx, user.ID)
		if err != nil {
			logger.Log.Warn("upload quota check failed", "user_id", user.ID, "error", err)
		}
		if !allowed {
			return nil, apperror.New(http.StatusTooManyRequests, "Daily upload limit reached", nil)
		}
	}

	key := fmt.Sprintf("resumes/%s/%s%s", user.ID, uuid.NewString(), check.Extension)
	url, err := uc.storage.Put(ctx, file.Data, key, check.ContentType())
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("upload resume: %w", err))
	}

	resume := &domain.Resume{
		UserID:      user.ID,
		Title:       title,
		ObjectKey:   key,
		URL:         url,
		FileName:    filepath.Base(file.Filename),
		ContentType: check.ContentType(),
		SizeBytes:   int64(len(file.Data)),
	}
	if err := uc.resumeRepo.Create(ctx, resume); err != nil {
		if delErr := uc.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.Log.Warn("failed to remove orphaned resume", "key", key, "error", delErr)
		}
		return nil, err
	}
	return resume, nil
}

func (uc *resumeUsecase) List(ctx context.Context, user *domain.User) ([]domain.Resume, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	resumes, err := uc.resumeRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if resumes == nil {
		resumes = []domain.Resume{}
	}
	return resumes, nil
}

// Delete removes the row first; the stored object is cleaned up after and
// a failure there only leaves an orphan.
func (uc *resumeUsecase) Delete(ctx context.Context, user *domain.User, id int64) error {
	if err := requireUser(user); err != nil {
		return err
	}
	resume, err := uc.resumeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if resume == nil || resume.UserID != user.ID {
		return apperror.NotFound("Resume not found")
	}
	if err := uc.resumeRepo.Delete(ctx, id); err != nil {
		return err
	}
	if resume.ObjectKey != "" {
		if err := uc.storage.Delete(ctx, resume.ObjectKey); err != nil {
			logger.Log.Warn("failed to remove resume object", "key", resume.ObjectKey, "error", err)
		}
	}
	return nil
}
