package repository

import (
	"context"
	"time"

	"github.com/honeycarbs/talentsync/internal/domain"
)

// TalentRepository persists talents. Generic updates never touch sync fields;
// those move only through MarkTalentSynced and MarkTalentSyncFailed.
type TalentRepository interface {
	// CreateTalent inserts t; a duplicate handle yields *domain.ConflictError
	CreateTalent(ctx context.Context, t domain.Talent) error

	// GetTalent loads a talent by local id
	GetTalent(ctx context.Context, id string) (domain.Talent, error)

	// FindTalentByHandle loads a talent by natural key
	FindTalentByHandle(ctx context.Context, handle string) (domain.Talent, error)

	// UpdateTalent writes content fields and lifecycle status of t
	UpdateTalent(ctx context.Context, t domain.Talent) error

	// DeleteTalent removes a talent and its applications
	DeleteTalent(ctx context.Context, id string) error

	// MarkTalentSynced sets the external id and SYNCED in one write
	MarkTalentSynced(ctx context.Context, id, externalID string) error

	// MarkTalentSyncFailed sets ERROR
	MarkTalentSyncFailed(ctx context.Context, id string) error

	// ListTalents returns one page of talents ordered by score then recency
	ListTalents(ctx context.Context, filter domain.TalentFilter) ([]domain.Talent, int, error)

	// ListTalentsForRetry selects talents in the given sync states last touched before olderThan
	ListTalentsForRetry(ctx context.Context, statuses []domain.SyncStatus, olderThan time.Time, limit int) ([]domain.Talent, error)
}

// JobRepository persists locally created jobs
type JobRepository interface {
	CreateJob(ctx context.Context, j domain.Job) error
	GetJob(ctx context.Context, id string) (domain.Job, error)
	ListJobs(ctx context.Context, status domain.JobStatus) ([]domain.Job, error)
}

// ApplicationRepository persists talent/job applications
type ApplicationRepository interface {
	// CreateApplication inserts a; an existing (job, talent) pair yields *domain.ConflictError
	CreateApplication(ctx context.Context, a domain.Application) error

	GetApplication(ctx context.Context, id string) (domain.Application, error)

	// FindApplication loads the application of a (job, talent) pair
	FindApplication(ctx context.Context, jobID, talentID string) (domain.Application, error)

	// UpdateApplication writes stage, status, score and review of a
	UpdateApplication(ctx context.Context, a domain.Application) error

	// DeleteApplication removes an application; zero affected rows yields *domain.NotFoundError
	DeleteApplication(ctx context.Context, id string) error

	ListApplicationsForJob(ctx context.Context, jobID string) ([]domain.Application, error)
	ListApplicationsForTalent(ctx context.Context, talentID string) ([]domain.Application, error)
}

// Store is the Record Store: the only shared mutable resource
type Store interface {
	TalentRepository
	JobRepository
	ApplicationRepository

	// WithinTx runs fn against a transaction-scoped Store; fn's error rolls back
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// Migrate creates the schema if it does not exist
	Migrate(ctx context.Context) error

	Close(ctx context.Context) error
}
