package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/talentsync/internal/domain"
)

func jobFromNode(props map[string]any) domain.Job {
	return domain.Job{
		ID:          propString(props, "id"),
		Title:       propString(props, "title"),
		Description: propString(props, "description"),
		Status:      domain.JobStatus(propString(props, "status")),
		IsSynced:    propBool(props, "isSynced"),
		ExternalID:  propString(props, "externalId"),
		CreatedAt:   propTime(props, "createdAt"),
		UpdatedAt:   propTime(props, "updatedAt"),
	}
}

// CreateJob creates a Job node
func (s *Store) CreateJob(ctx context.Context, j domain.Job) error {
	now := s.nowMillis()
	status := j.Status
	if status == "" {
		status = domain.JobDraft
	}

	query := `
		CREATE (j:Job {
			id: $id,
			title: $title,
			description: $description,
			status: $status,
			isSynced: $isSynced,
			externalId: $externalId,
			createdAt: datetime({epochMillis: $createdAt}),
			updatedAt: datetime({epochMillis: $updatedAt})
		})
	`

	_, err := writeTx(ctx, s, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{
			"id":          j.ID,
			"title":       j.Title,
			"description": j.Description,
			"status":      string(status),
			"isSynced":    j.IsSynced,
			"externalId":  optionalString(j.ExternalID),
			"createdAt":   millisOr(j.CreatedAt, now),
			"updatedAt":   millisOr(j.UpdatedAt, now),
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		if isConstraintViolation(err) {
			return &domain.ConflictError{Entity: "job", Key: j.ID}
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// GetJob loads a job by id
func (s *Store) GetJob(ctx context.Context, id string) (domain.Job, error) {
	jobs, err := s.queryJobs(ctx, `MATCH (j:Job {id: $id}) RETURN j`, map[string]any{"id": id})
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	if len(jobs) == 0 {
		return domain.Job{}, &domain.NotFoundError{Entity: "job", ID: id}
	}
	return jobs[0], nil
}

// ListJobs returns jobs newest first, optionally filtered by status
func (s *Store) ListJobs(ctx context.Context, status domain.JobStatus) ([]domain.Job, error) {
	query := `MATCH (j:Job) WHERE $status = '' OR j.status = $status RETURN j ORDER BY j.createdAt DESC`
	jobs, err := s.queryJobs(ctx, query, map[string]any{"status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) queryJobs(ctx context.Context, query string, params map[string]any) ([]domain.Job, error) {
	return readTx(ctx, s, func(tx neo4j.ManagedTransaction) ([]domain.Job, error) {
		records, err := collect(ctx, tx, query, params)
		if err != nil {
			return nil, err
		}
		jobs := make([]domain.Job, 0, len(records))
		for _, record := range records {
			if props, ok := nodeFrom(record, "j"); ok {
				jobs = append(jobs, jobFromNode(props))
			}
		}
		return jobs, nil
	})
}
