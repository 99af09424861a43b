package sqlstore

// schema is valid for both SQLite and PostgreSQL
var schema = []string{
	`CREATE TABLE IF NOT EXISTS talents (
		id TEXT PRIMARY KEY,
		handle TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		headline TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '{}',
		sync_status TEXT NOT NULL DEFAULT 'PENDING',
		status TEXT NOT NULL DEFAULT 'NEW',
		match_score DOUBLE PRECISION,
		external_id TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_talents_sync ON talents(sync_status, updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_talents_external ON talents(external_id)`,
	`CREATE INDEX IF NOT EXISTS idx_talents_status ON talents(status)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'DRAFT',
		is_synced BOOLEAN NOT NULL DEFAULT FALSE,
		external_id TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_external ON jobs(external_id)`,

	`CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL,
		talent_id TEXT NOT NULL REFERENCES talents(id) ON DELETE CASCADE,
		stage TEXT NOT NULL DEFAULT 'applied',
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		match_score DOUBLE PRECISION,
		ai_review TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		UNIQUE (job_id, talent_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job ON applications(job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_talent ON applications(talent_id)`,
}
