package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/honeycarbs/talentsync/internal/domain"
)

const applicationColumns = `id, job_id, talent_id, stage, status, match_score, ai_review, created_at, updated_at`

func scanApplication(row rowScanner) (domain.Application, error) {
	var (
		a         domain.Application
		score     sql.NullFloat64
		review    sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&a.ID, &a.JobID, &a.TalentID, &a.Stage, &a.Status, &score, &review, &createdAt, &updatedAt); err != nil {
		return domain.Application{}, err
	}

	if review.Valid && review.String != "" {
		attrs, err := domain.UnmarshalAttrs([]byte(review.String))
		if err != nil {
			return domain.Application{}, err
		}
		a.AIReview = attrs
	}
	a.MatchScore = floatPtr(score)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

func encodeReview(review domain.Attrs) (any, error) {
	if len(review) == 0 {
		return nil, nil
	}
	return domain.MarshalAttrs(review)
}

// CreateApplication inserts an application row
func (s *Store) CreateApplication(ctx context.Context, a domain.Application) error {
	review, err := encodeReview(a.AIReview)
	if err != nil {
		return err
	}

	now := s.now()
	stage := a.Stage
	if stage == "" {
		stage = domain.StageApplied
	}
	status := a.Status
	if status == "" {
		status = domain.ApplicationActive
	}

	_, err = s.exec(ctx, `INSERT INTO applications (`+applicationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.TalentID, stage, status, nullFloat(a.MatchScore), review,
		toMillis(a.CreatedAt, now), toMillis(a.UpdatedAt, now),
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "application", Key: a.JobID + "/" + a.TalentID}
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// GetApplication loads an application by id
func (s *Store) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	a, err := scanApplication(s.queryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, &domain.NotFoundError{Entity: "application", ID: id}
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// FindApplication loads the application joining jobID and talentID
func (s *Store) FindApplication(ctx context.Context, jobID, talentID string) (domain.Application, error) {
	a, err := scanApplication(s.queryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = ? AND talent_id = ?`, jobID, talentID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, &domain.NotFoundError{Entity: "application", ID: jobID + "/" + talentID}
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("find application: %w", err)
	}
	return a, nil
}

// UpdateApplication writes stage, status and evaluation fields
func (s *Store) UpdateApplication(ctx context.Context, a domain.Application) error {
	review, err := encodeReview(a.AIReview)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, `UPDATE applications SET stage = ?, status = ?, match_score = ?, ai_review = ?, updated_at = ?
		WHERE id = ?`,
		a.Stage, a.Status, nullFloat(a.MatchScore), review, s.now(), a.ID)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return requireAffected(res, "application", a.ID)
}

// DeleteApplication removes an application by id
func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return requireAffected(res, "application", id)
}

// ListApplicationsForJob returns applications of a job oldest first
func (s *Store) ListApplicationsForJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	return s.listApplications(ctx, `job_id = ?`, jobID)
}

// ListApplicationsForTalent returns applications of a talent oldest first
func (s *Store) ListApplicationsForTalent(ctx context.Context, talentID string) ([]domain.Application, error) {
	return s.listApplications(ctx, `talent_id = ?`, talentID)
}

func (s *Store) listApplications(ctx context.Context, where string, arg any) ([]domain.Application, error) {
	rows, err := s.query(ctx, `SELECT `+applicationColumns+` FROM applications WHERE `+where+` ORDER BY created_at ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}
