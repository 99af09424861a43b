package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/honeycarbs/talentsync/internal/domain"
)

const jobColumns = `id, title, description, status, is_synced, external_id, created_at, updated_at`

func scanJob(row rowScanner) (domain.Job, error) {
	var (
		j          domain.Job
		status     string
		externalID sql.NullString
		createdAt  int64
		updatedAt  int64
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &status, &j.IsSynced, &externalID, &createdAt, &updatedAt); err != nil {
		return domain.Job{}, err
	}
	j.Status = domain.JobStatus(status)
	j.ExternalID = externalID.String
	j.CreatedAt = fromMillis(createdAt)
	j.UpdatedAt = fromMillis(updatedAt)
	return j, nil
}

// CreateJob inserts a job row
func (s *Store) CreateJob(ctx context.Context, j domain.Job) error {
	now := s.now()
	status := j.Status
	if status == "" {
		status = domain.JobDraft
	}

	_, err := s.exec(ctx, `INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Title, j.Description, string(status), j.IsSynced, nullString(j.ExternalID),
		toMillis(j.CreatedAt, now), toMillis(j.UpdatedAt, now),
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "job", Key: j.ID}
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetJob loads a job by id
func (s *Store) GetJob(ctx context.Context, id string) (domain.Job, error) {
	j, err := scanJob(s.queryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, &domain.NotFoundError{Entity: "job", ID: id}
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// ListJobs returns jobs newest first, optionally filtered by status
func (s *Store) ListJobs(ctx context.Context, status domain.JobStatus) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}
