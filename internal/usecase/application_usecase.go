package usecase

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const resumeFolder = "resumes"

// maxAgeDays is the largest day count a time.Duration can hold.
const maxAgeDays = int(math.MaxInt64 / int64(24*time.Hour))

type ApplicationUseCase interface {
	// SubmitApplication stores an application; resume may be nil.
	SubmitApplication(ctx context.Context, app *domain.JobApplication, resume io.Reader) (*domain.JobApplication, error)
	GetApplication(ctx context.Context, id int64) (*domain.JobApplication, error)
	ListApplications(ctx context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (*domain.JobApplication, error)
	DeleteApplication(ctx context.Context, id int64) error
	ResumeFile(ctx context.Context, id int64) (string, error)
	// DeleteApplicationsOlderThan removes applications in status older than age and returns how many went.
	DeleteApplicationsOlderThan(ctx context.Context, status domain.ApplicationStatus, age time.Duration) (int, error)
}

type applicationUseCase struct {
	repo  domain.ApplicationRepository
	files domain.FileStorage
	now   func() time.Time
	log   *logrus.Logger
}

func NewApplicationUseCase(repo domain.ApplicationRepository, files domain.FileStorage, logger *logrus.Logger) ApplicationUseCase {
	return &applicationUseCase{
		repo:  repo,
		files: files,
		now:   time.Now,
		log:   logger,
	}
}

func (uc *applicationUseCase) SubmitApplication(ctx context.Context, app *domain.JobApplication, resume io.Reader) (*domain.JobApplication, error) {
	app.Name = strings.TrimSpace(app.Name)
	app.Email = strings.ToLower(strings.TrimSpace(app.Email))
	app.Position = strings.TrimSpace(app.Position)
	if app.Name == "" || app.Position == "" {
		return nil, fmt.Errorf("%w: name and position are required", domain.ErrInvalidInput)
	}
	if !isValidEmail(app.Email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	app.Status = domain.ApplicationPending
	app.ResumePath = ""

	if resume != nil {
		path, err := uc.files.Save(ctx, resumeFolder, resume, domain.ResumeTypes)
		if err != nil {
			uc.log.Warnf("Use Case: Could not store resume from %s: %v", app.Email, err)
			return nil, err
		}
		app.ResumePath = path
	}

	created, err := uc.repo.Create(ctx, app)
	if err != nil {
		if app.ResumePath != "" {
			if delErr := uc.files.Delete(context.Background(), app.ResumePath); delErr != nil {
				uc.log.Errorf("Use Case: Failed to delete resume %s: %v", app.ResumePath, delErr)
			}
		}
		return nil, err
	}
	uc.log.Infof("Use Case: Job application %d received for position '%s'", created.ID, created.Position)
	return created, nil
}

func (uc *applicationUseCase) GetApplication(ctx context.Context, id int64) (*domain.JobApplication, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *applicationUseCase) ListApplications(ctx context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.JobApplication, error) {
	if status != "" && !domain.IsValidApplicationStatus(status) {
		return nil, fmt.Errorf("%w: unknown application status '%s'", domain.ErrInvalidInput, status)
	}
	return uc.repo.List(ctx, status, limit, offset)
}

func (uc *applicationUseCase) UpdateApplicationStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (*domain.JobApplication, error) {
	if !domain.IsValidApplicationStatus(status) {
		return nil, fmt.Errorf("%w: unknown application status '%s'", domain.ErrInvalidInput, status)
	}
	app, err := uc.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Job application %d is now %s", id, status)
	return app, nil
}

func (uc *applicationUseCase) DeleteApplication(ctx context.Context, id int64) error {
	path, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.files.Delete(ctx, path); err != nil {
		uc.log.Errorf("Use Case: Application %d deleted but resume %s remains: %v", id, path, err)
	}
	return nil
}

func (uc *applicationUseCase) ResumeFile(ctx context.Context, id int64) (string, error) {
	app, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if app.ResumePath == "" {
		return "", fmt.Errorf("resume of application %d %w", id, domain.ErrNotFound)
	}
	return uc.files.Resolve(app.ResumePath)
}

func (uc *applicationUseCase) DeleteApplicationsOlderThan(ctx context.Context, status domain.ApplicationStatus, age time.Duration) (int, error) {
	if !domain.IsValidApplicationStatus(status) {
		return 0, fmt.Errorf("%w: unknown application status '%s'", domain.ErrInvalidInput, status)
	}
	if age <= 0 {
		return 0, fmt.Errorf("%w: age must be positive", domain.ErrInvalidInput)
	}

	cutoff := uc.now().Add(-age)
	paths, err := uc.repo.DeleteOlderThan(ctx, status, cutoff)
	if err != nil {
		uc.log.Errorf("Use Case: Cleanup of %s applications failed: %v", status, err)
		return 0, err
	}
	for _, path := range paths {
		if err := uc.files.Delete(ctx, path); err != nil {
			uc.log.Errorf("Use Case: Could not delete resume %s during cleanup: %v", path, err)
		}
	}
	uc.log.WithFields(logrus.Fields{
		"status":  status,
		"cutoff":  cutoff.Format(time.RFC3339),
		"deleted": len(paths),
	}).Info("Use Case: Application cleanup finished")
	return len(paths), nil
}

// ParseAge reads a retention age: a whole number of days such as "30d", or a Go duration such as "72h".
func ParseAge(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 || n > maxAgeDays {
			return 0, fmt.Errorf("%w: invalid age %q", domain.ErrInvalidInput, raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	age, err := time.ParseDuration(raw)
	if err != nil || age <= 0 {
		return 0, fmt.Errorf("%w: invalid age %q", domain.ErrInvalidInput, raw)
	}
	return age, nil
}
