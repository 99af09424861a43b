package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/repository"
)

const talentColumns = `id, handle, name, headline, email, phone, location, data,
	sync_status, status, match_score, external_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTalent(row rowScanner) (domain.Talent, error) {
	var (
		t          domain.Talent
		data       string
		syncStatus string
		status     string
		score      sql.NullFloat64
		externalID sql.NullString
		createdAt  int64
		updatedAt  int64
	)

	if err := row.Scan(
		&t.ID, &t.Handle, &t.Name, &t.Headline, &t.Email, &t.Phone, &t.Location, &data,
		&syncStatus, &status, &score, &externalID, &createdAt, &updatedAt,
	); err != nil {
		return domain.Talent{}, err
	}

	attrs, err := domain.UnmarshalAttrs([]byte(data))
	if err != nil {
		return domain.Talent{}, err
	}

	t.Data = attrs
	t.SyncStatus = domain.SyncStatus(syncStatus)
	t.Status = domain.TalentStatus(status)
	t.MatchScore = floatPtr(score)
	t.ExternalID = externalID.String
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

// CreateTalent inserts a talent row
func (s *Store) CreateTalent(ctx context.Context, t domain.Talent) error {
	data, err := domain.MarshalAttrs(t.Data)
	if err != nil {
		return err
	}

	now := s.now()
	syncStatus := t.SyncStatus
	if syncStatus == "" {
		syncStatus = domain.SyncPending
	}
	status := t.Status
	if status == "" {
		status = domain.TalentNew
	}

	_, err = s.exec(ctx, `INSERT INTO talents (`+talentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Handle, t.Name, t.Headline, t.Email, t.Phone, t.Location, data,
		string(syncStatus), string(status), nullFloat(t.MatchScore), nullString(t.ExternalID),
		toMillis(t.CreatedAt, now), toMillis(t.UpdatedAt, now),
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "talent", Key: t.Handle}
		}
		return fmt.Errorf("insert talent: %w", err)
	}
	return nil
}

// GetTalent loads a talent by id
func (s *Store) GetTalent(ctx context.Context, id string) (domain.Talent, error) {
	row := s.queryRow(ctx, `SELECT `+talentColumns+` FROM talents WHERE id = ?`, id)
	t, err := scanTalent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Talent{}, &domain.NotFoundError{Entity: "talent", ID: id}
	}
	if err != nil {
		return domain.Talent{}, fmt.Errorf("get talent: %w", err)
	}
	return t, nil
}

// FindTalentByHandle loads a talent by handle
func (s *Store) FindTalentByHandle(ctx context.Context, handle string) (domain.Talent, error) {
	row := s.queryRow(ctx, `SELECT `+talentColumns+` FROM talents WHERE handle = ?`, handle)
	t, err := scanTalent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Talent{}, &domain.NotFoundError{Entity: "talent", ID: handle}
	}
	if err != nil {
		return domain.Talent{}, fmt.Errorf("find talent by handle: %w", err)
	}
	return t, nil
}

// UpdateTalent writes content and lifecycle fields; sync fields are left alone
func (s *Store) UpdateTalent(ctx context.Context, t domain.Talent) error {
	data, err := domain.MarshalAttrs(t.Data)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, `UPDATE talents SET
		name = ?, headline = ?, email = ?, phone = ?, location = ?, data = ?,
		status = ?, match_score = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Headline, t.Email, t.Phone, t.Location, data,
		string(t.Status), nullFloat(t.MatchScore), s.now(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update talent: %w", err)
	}
	return requireAffected(res, "talent", t.ID)
}

// DeleteTalent removes a talent and its applications in one transaction
func (s *Store) DeleteTalent(ctx context.Context, id string) error {
	return s.WithinTx(ctx, func(tx repository.Store) error {
		scoped := tx.(*Store)
		if _, err := scoped.exec(ctx, `DELETE FROM applications WHERE talent_id = ?`, id); err != nil {
			return fmt.Errorf("delete talent applications: %w", err)
		}
		res, err := scoped.exec(ctx, `DELETE FROM talents WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete talent: %w", err)
		}
		return requireAffected(res, "talent", id)
	})
}

// MarkTalentSynced records the external id and SYNCED together
func (s *Store) MarkTalentSynced(ctx context.Context, id, externalID string) error {
	res, err := s.exec(ctx, `UPDATE talents SET external_id = ?, sync_status = ?, updated_at = ? WHERE id = ?`,
		nullString(externalID), string(domain.SyncSynced), s.now(), id)
	if err != nil {
		return fmt.Errorf("mark talent synced: %w", err)
	}
	return requireAffected(res, "talent", id)
}

// MarkTalentSyncFailed sets ERROR
func (s *Store) MarkTalentSyncFailed(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `UPDATE talents SET sync_status = ?, updated_at = ? WHERE id = ?`,
		string(domain.SyncError), s.now(), id)
	if err != nil {
		return fmt.Errorf("mark talent sync failed: %w", err)
	}
	return requireAffected(res, "talent", id)
}

// ListTalents returns one page of talents and the total match count
func (s *Store) ListTalents(ctx context.Context, filter domain.TalentFilter) ([]domain.Talent, int, error) {
	filter = filter.Normalize()

	var (
		clauses []string
		args    []any
	)
	if term := strings.ToLower(strings.TrimSpace(filter.SearchTerm)); term != "" {
		like := "%" + term + "%"
		clauses = append(clauses, `(LOWER(name) LIKE ? OR LOWER(headline) LIKE ? OR LOWER(handle) LIKE ?)`)
		args = append(args, like, like, like)
	}
	if filter.MinScore != nil {
		clauses = append(clauses, `match_score >= ?`)
		args = append(args, *filter.MinScore)
	}
	if filter.Status != "" {
		clauses = append(clauses, `status = ?`)
		args = append(args, string(filter.Status))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM talents`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count talents: %w", err)
	}

	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset())
	rows, err := s.query(ctx, `SELECT `+talentColumns+` FROM talents`+where+`
		ORDER BY (match_score IS NULL), match_score DESC, created_at DESC
		LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list talents: %w", err)
	}
	defer rows.Close()

	talents, err := collectTalents(rows)
	if err != nil {
		return nil, 0, err
	}
	return talents, total, nil
}

// ListTalentsForRetry returns talents stuck in statuses and untouched since olderThan
func (s *Store) ListTalentsForRetry(ctx context.Context, statuses []domain.SyncStatus, olderThan time.Time, limit int) ([]domain.Talent, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	args := make([]any, 0, len(statuses)+2)
	for _, st := range statuses {
		args = append(args, string(st))
	}
	args = append(args, olderThan.UnixMilli(), limit)

	rows, err := s.query(ctx, `SELECT `+talentColumns+` FROM talents
		WHERE sync_status IN (`+placeholders+`) AND updated_at < ?
		ORDER BY updated_at ASC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list talents for retry: %w", err)
	}
	defer rows.Close()

	return collectTalents(rows)
}

func collectTalents(rows *sql.Rows) ([]domain.Talent, error) {
	var out []domain.Talent
	for rows.Next() {
		t, err := scanTalent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan talent: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate talents: %w", err)
	}
	return out, nil
}

func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
