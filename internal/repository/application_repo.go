package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresApplicationRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresApplicationRepository(db *sql.DB, logger *logrus.Logger) domain.ApplicationRepository {
	return &postgresApplicationRepository{
		db:  db,
		log: logger,
	}
}

const applicationColumns = `id, name, email, phone, position, cover_letter, resume_path, status, created_at, updated_at`

func scanApplication(row rowScanner) (*domain.JobApplication, error) {
	a := &domain.JobApplication{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Position, &a.CoverLetter,
		&a.ResumePath, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresApplicationRepository) Create(ctx context.Context, app *domain.JobApplication) (*domain.JobApplication, error) {
	query := `
        INSERT INTO job_applications (name, email, phone, position, cover_letter, resume_path, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, app.Name, app.Email, app.Phone, app.Position,
		app.CoverLetter, app.ResumePath, app.Status).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to create job application for %s: %v", app.Email, err)
		return nil, classify(err, "job application")
	}
	r.log.Infof("Repository: Job application created with ID: %d, Position: %s", app.ID, app.Position)
	return app, nil
}

func (r *postgresApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	app, err := scanApplication(r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, fmt.Sprintf("job application with id %d", id))
	}
	return app, nil
}

func (r *postgresApplicationRepository) List(ctx context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.JobApplication, error) {
	limit, offset = clampPage(limit, offset)

	query := `SELECT ` + applicationColumns + ` FROM job_applications`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += ` WHERE status = $1`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list job applications: %v", err)
		return nil, fmt.Errorf("could not list job applications: %w", err)
	}
	defer rows.Close()

	apps := []domain.JobApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning job application: %w", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job applications: %w", err)
	}
	return apps, nil
}

func (r *postgresApplicationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) (*domain.JobApplication, error) {
	app, err := scanApplication(r.db.QueryRowContext(ctx,
		`UPDATE job_applications SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+applicationColumns,
		status, id))
	if err != nil {
		r.log.Warnf("Repository: Failed to update job application %d: %v", id, err)
		return nil, classify(err, fmt.Sprintf("job application with id %d", id))
	}
	return app, nil
}

func (r *postgresApplicationRepository) Delete(ctx context.Context, id int64) (string, error) {
	var resumePath string
	err := r.db.QueryRowContext(ctx, `DELETE FROM job_applications WHERE id = $1 RETURNING resume_path`, id).Scan(&resumePath)
	if err != nil {
		return "", classify(err, fmt.Sprintf("job application with id %d", id))
	}
	r.log.Infof("Repository: Job application deleted with ID: %d", id)
	return resumePath, nil
}

func (r *postgresApplicationRepository) DeleteOlderThan(ctx context.Context, status domain.ApplicationStatus, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
        DELETE FROM job_applications
        WHERE status = $1 AND created_at < $2
        RETURNING resume_path`, status, cutoff)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete %s applications older than %s: %v", status, cutoff.Format(time.RFC3339), err)
		return nil, fmt.Errorf("could not delete job applications: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("error scanning deleted application: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deleted applications: %w", err)
	}

	r.log.Infof("Repository: Deleted %d %s applications created before %s", len(paths), status, cutoff.Format(time.RFC3339))
	return paths, nil
}
