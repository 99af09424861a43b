package domain

import (
	"strings"
	"time"
)

// SyncStatus tracks propagation of a talent to the external ATS
type SyncStatus string

const (
	SyncPending SyncStatus = "PENDING"
	SyncSynced  SyncStatus = "SYNCED"
	SyncError   SyncStatus = "ERROR"
)

// TalentStatus is the recruiting lifecycle of a talent
type TalentStatus string

const (
	TalentNew      TalentStatus = "NEW"
	TalentActive   TalentStatus = "ACTIVE"
	TalentRejected TalentStatus = "REJECTED"
	TalentHired    TalentStatus = "HIRED"
)

// Valid reports whether s is a known talent status
func (s TalentStatus) Valid() bool {
	switch s {
	case TalentNew, TalentActive, TalentRejected, TalentHired:
		return true
	}
	return false
}

// JobStatus is the lifecycle of a job opening
type JobStatus string

const (
	JobDraft    JobStatus = "DRAFT"
	JobOpen     JobStatus = "OPEN"
	JobClosed   JobStatus = "CLOSED"
	JobCanceled JobStatus = "CANCELED"
	JobPaused   JobStatus = "PAUSED"
)

// Valid reports whether s is a known job status
func (s JobStatus) Valid() bool {
	switch s {
	case JobDraft, JobOpen, JobClosed, JobCanceled, JobPaused:
		return true
	}
	return false
}

// ParseJobStatus accepts any casing ("open", "Open", "OPEN")
func ParseJobStatus(s string) (JobStatus, bool) {
	st := JobStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

const (
	// StageApplied is the canonical stage of a freshly attached application
	StageApplied = "applied"

	// ApplicationActive is the default application status
	ApplicationActive = "ACTIVE"
)

// CanonicalStage normalizes a free-form pipeline stage to a lowercase token
func CanonicalStage(stage string) string {
	s := strings.ToLower(strings.TrimSpace(stage))
	s = strings.Join(strings.Fields(s), "_")
	if s == "" {
		return StageApplied
	}
	return s
}

// Talent is the locally owned candidate record
type Talent struct {
	ID         string
	Handle     string
	Name       string
	Headline   string
	Email      string
	Phone      string
	Location   string
	Data       Attrs
	SyncStatus SyncStatus
	Status     TalentStatus
	MatchScore *float64
	ExternalID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Job is a locally created job opening
type Job struct {
	ID          string
	Title       string
	Description string
	Status      JobStatus
	IsSynced    bool
	ExternalID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Application joins one talent to one job
type Application struct {
	ID         string
	JobID      string
	TalentID   string
	Stage      string
	Status     string
	MatchScore *float64
	AIReview   Attrs
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Evaluation is a match re-evaluation attached to an application
type Evaluation struct {
	MatchScore *float64
	AIReview   Attrs
}

// Empty reports whether the evaluation carries nothing to apply
func (e *Evaluation) Empty() bool {
	return e == nil || (e.MatchScore == nil && len(e.AIReview) == 0)
}

// TalentFilter narrows talent listings
type TalentFilter struct {
	SearchTerm string
	MinScore   *float64
	Status     TalentStatus
	Page       int
	Limit      int
}

// Normalize applies paging defaults
func (f TalentFilter) Normalize() TalentFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	return f
}

// Offset returns the row offset for the current page
func (f TalentFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TalentPage is a page of talents with paging metadata
type TalentPage struct {
	Talents      []TalentSummary `json:"talents"`
	CurrentPage  int             `json:"current_page"`
	TotalPages   int             `json:"total_pages"`
	TotalTalents int             `json:"total_talents"`
}

// TalentSummary is the response-friendly talent view
type TalentSummary struct {
	ID         string   `json:"id"`
	Handle     string   `json:"handle"`
	Name       string   `json:"name"`
	Headline   string   `json:"headline,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Location   string   `json:"location,omitempty"`
	Status     string   `json:"status"`
	SyncStatus string   `json:"sync_status"`
	MatchScore *float64 `json:"match_score,omitempty"`
	ExternalID string   `json:"external_id,omitempty"`
}

// Summary converts a talent into its response view
func (t Talent) Summary() TalentSummary {
	return TalentSummary{
		ID:         t.ID,
		Handle:     t.Handle,
		Name:       t.Name,
		Headline:   t.Headline,
		Email:      t.Email,
		Phone:      t.Phone,
		Location:   t.Location,
		Status:     string(t.Status),
		SyncStatus: string(t.SyncStatus),
		MatchScore: t.MatchScore,
		ExternalID: t.ExternalID,
	}
}

// JobSummary is the response-friendly job view
type JobSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	ExternalID  string `json:"external_id,omitempty"`
	IsSynced    bool   `json:"is_synced"`
}

// Summary converts a job into its response view
func (j Job) Summary() JobSummary {
	return JobSummary{
		ID:          j.ID,
		Name:        j.Title,
		Description: j.Description,
		Status:      strings.ToLower(string(j.Status)),
		ExternalID:  j.ExternalID,
		IsSynced:    j.IsSynced,
	}
}

// ApplicationSummary is the response-friendly application view
type ApplicationSummary struct {
	ID         string   `json:"id"`
	JobID      string   `json:"job_id"`
	TalentID   string   `json:"talent_id"`
	Stage      string   `json:"stage"`
	Status     string   `json:"status"`
	MatchScore *float64 `json:"match_score,omitempty"`
	AIReview   Attrs    `json:"ai_review,omitempty"`
}

// Summary converts an application into its response view
func (a Application) Summary() ApplicationSummary {
	return ApplicationSummary{
		ID:         a.ID,
		JobID:      a.JobID,
		TalentID:   a.TalentID,
		Stage:      a.Stage,
		Status:     a.Status,
		MatchScore: a.MatchScore,
		AIReview:   a.AIReview,
	}
}

// Candidate is a talent in the context of one job pipeline
type Candidate struct {
	Talent      TalentSummary      `json:"talent"`
	Application ApplicationSummary `json:"application"`
}

// JobCandidates is the pipeline view of a job
type JobCandidates struct {
	JobID      string      `json:"job_id"`
	Candidates []Candidate `json:"candidates"`
	Stages     []string    `json:"stages"`
}
