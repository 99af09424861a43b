package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/talentsync/internal/domain"
)

func applicationFromNode(props map[string]any) (domain.Application, error) {
	review, err := propAttrs(props, "aiReview")
	if err != nil {
		return domain.Application{}, err
	}
	return domain.Application{
		ID:         propString(props, "id"),
		JobID:      propString(props, "jobId"),
		TalentID:   propString(props, "talentId"),
		Stage:      propString(props, "stage"),
		Status:     propString(props, "status"),
		MatchScore: propFloat(props, "matchScore"),
		AIReview:   review,
		CreatedAt:  propTime(props, "createdAt"),
		UpdatedAt:  propTime(props, "updatedAt"),
	}, nil
}

func applicationsFromRecords(records []*neo4j.Record) ([]domain.Application, error) {
	out := make([]domain.Application, 0, len(records))
	for _, record := range records {
		props, ok := nodeFrom(record, "a")
		if !ok {
			continue
		}
		a, err := applicationFromNode(props)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func reviewJSON(review domain.Attrs) (any, error) {
	if len(review) == 0 {
		return nil, nil
	}
	return domain.MarshalAttrs(review)
}

// CreateApplication attaches an Application node to its talent.
// The (job, talent) pair is checked in the same transaction as the create.
func (s *Store) CreateApplication(ctx context.Context, a domain.Application) error {
	review, err := reviewJSON(a.AIReview)
	if err != nil {
		return err
	}

	now := s.nowMillis()
	stage := a.Stage
	if stage == "" {
		stage = domain.StageApplied
	}
	status := a.Status
	if status == "" {
		status = domain.ApplicationActive
	}

	params := map[string]any{
		"id":         a.ID,
		"jobId":      a.JobID,
		"talentId":   a.TalentID,
		"stage":      stage,
		"status":     status,
		"matchScore": optional(a.MatchScore),
		"aiReview":   review,
		"createdAt":  millisOr(a.CreatedAt, now),
		"updatedAt":  millisOr(a.UpdatedAt, now),
	}

	_, err = writeTx(ctx, s, func(tx neo4j.ManagedTransaction) (any, error) {
		existing, err := collect(ctx, tx,
			`MATCH (a:Application {jobId: $jobId, talentId: $talentId}) RETURN a.id AS id`, params)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, &domain.ConflictError{Entity: "application", Key: a.JobID + "/" + a.TalentID}
		}

		created, err := collect(ctx, tx, `
			MATCH (t:Talent {id: $talentId})
			CREATE (t)-[:APPLIED]->(a:Application {
				id: $id,
				jobId: $jobId,
				talentId: $talentId,
				stage: $stage,
				status: $status,
				matchScore: $matchScore,
				aiReview: $aiReview,
				createdAt: datetime({epochMillis: $createdAt}),
				updatedAt: datetime({epochMillis: $updatedAt})
			})
			WITH a
			OPTIONAL MATCH (j:Job {id: a.jobId})
			FOREACH (_ IN CASE WHEN j IS NULL THEN [] ELSE [1] END | MERGE (a)-[:FOR_JOB]->(j))
			RETURN a.id AS id`, params)
		if err != nil {
			return nil, err
		}
		if len(created) == 0 {
			return nil, &domain.NotFoundError{Entity: "talent", ID: a.TalentID}
		}
		return nil, nil
	})
	if err != nil {
		if isConstraintViolation(err) {
			return &domain.ConflictError{Entity: "application", Key: a.JobID + "/" + a.TalentID}
		}
		if domain.IsConflict(err) || domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *Store) queryApplications(ctx context.Context, query string, params map[string]any) ([]domain.Application, error) {
	return readTx(ctx, s, func(tx neo4j.ManagedTransaction) ([]domain.Application, error) {
		records, err := collect(ctx, tx, query, params)
		if err != nil {
			return nil, err
		}
		return applicationsFromRecords(records)
	})
}

// GetApplication loads an application by id
func (s *Store) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	apps, err := s.queryApplications(ctx, `MATCH (a:Application {id: $id}) RETURN a`, map[string]any{"id": id})
	if err != nil {
		return domain.Application{}, fmt.Errorf("get application: %w", err)
	}
	if len(apps) == 0 {
		return domain.Application{}, &domain.NotFoundError{Entity: "application", ID: id}
	}
	return apps[0], nil
}

// FindApplication loads the application joining jobID and talentID
func (s *Store) FindApplication(ctx context.Context, jobID, talentID string) (domain.Application, error) {
	apps, err := s.queryApplications(ctx,
		`MATCH (a:Application {jobId: $jobId, talentId: $talentId}) RETURN a`,
		map[string]any{"jobId": jobID, "talentId": talentID})
	if err != nil {
		return domain.Application{}, fmt.Errorf("find application: %w", err)
	}
	if len(apps) == 0 {
		return domain.Application{}, &domain.NotFoundError{Entity: "application", ID: jobID + "/" + talentID}
	}
	return apps[0], nil
}

// UpdateApplication writes stage, status and evaluation fields
func (s *Store) UpdateApplication(ctx context.Context, a domain.Application) error {
	review, err := reviewJSON(a.AIReview)
	if err != nil {
		return err
	}

	query := `
		MATCH (a:Application {id: $id})
		SET a.stage = $stage,
		    a.status = $status,
		    a.matchScore = $matchScore,
		    a.aiReview = $aiReview,
		    a.updatedAt = datetime({epochMillis: $updatedAt})
		RETURN a.id AS id
	`

	matched, err := writeTx(ctx, s, func(tx neo4j.ManagedTransaction) (bool, error) {
		records, err := collect(ctx, tx, query, map[string]any{
			"id":         a.ID,
			"stage":      a.Stage,
			"status":     a.Status,
			"matchScore": optional(a.MatchScore),
			"aiReview":   review,
			"updatedAt":  s.nowMillis(),
		})
		if err != nil {
			return false, err
		}
		return len(records) > 0, nil
	})
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if !matched {
		return &domain.NotFoundError{Entity: "application", ID: a.ID}
	}
	return nil
}

// DeleteApplication removes an application by id
func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	query := `
		MATCH (a:Application {id: $id})
		DETACH DELETE a
		RETURN count(*) AS deleted
	`

	deleted, err := writeTx(ctx, s, func(tx neo4j.ManagedTransaction) (bool, error) {
		records, err := collect(ctx, tx, query, map[string]any{"id": id})
		if err != nil || len(records) == 0 {
			return false, err
		}
		n, _ := records[0].Get("deleted")
		count, _ := n.(int64)
		return count > 0, nil
	})
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if !deleted {
		return &domain.NotFoundError{Entity: "application", ID: id}
	}
	return nil
}

// ListApplicationsForJob returns applications of a job oldest first
func (s *Store) ListApplicationsForJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	apps, err := s.queryApplications(ctx,
		`MATCH (a:Application {jobId: $jobId}) RETURN a ORDER BY a.createdAt ASC`,
		map[string]any{"jobId": jobID})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// ListApplicationsForTalent returns applications of a talent oldest first
func (s *Store) ListApplicationsForTalent(ctx context.Context, talentID string) ([]domain.Application, error) {
	apps, err := s.queryApplications(ctx,
		`MATCH (:Talent {id: $talentId})-[:APPLIED]->(a:Application) RETURN a ORDER BY a.createdAt ASC`,
		map[string]any{"talentId": talentID})
	if err != nil {
		return nil, fmt.Errorf("list talent applications: %w", err)
	}
	return apps, nil
}
