package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/talentsync/internal/domain"
)

func talentFromNode(props map[string]any) (domain.Talent, error) {
	data, err := propAttrs(props, "data")
	if err != nil {
		return domain.Talent{}, err
	}
	if data == nil {
		data = domain.Attrs{}
	}

	return domain.Talent{
		ID:         propString(props, "id"),
		Handle:     propString(props, "handle"),
		Name:       propString(props, "name"),
		Headline:   propString(props, "headline"),
		Email:      propString(props, "email"),
		Phone:      propString(props, "phone"),
		Location:   propString(props, "location"),
		Data:       data,
		SyncStatus: domain.SyncStatus(propString(props, "syncStatus")),
		Status:     domain.TalentStatus(propString(props, "status")),
		MatchScore: propFloat(props, "matchScore"),
		ExternalID: propString(props, "externalId"),
		CreatedAt:  propTime(props, "createdAt"),
		UpdatedAt:  propTime(props, "updatedAt"),
	}, nil
}

func talentsFromRecords(records []*neo4j.Record) ([]domain.Talent, error) {
	out := make([]domain.Talent, 0, len(records))
	for _, record := range records {
		props, ok := nodeFrom(record, "t")
		if !ok {
			continue
		}
		t, err := talentFromNode(props)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTalent creates a Talent node unless the handle is taken
func (s *Store) CreateTalent(ctx context.Context, t domain.Talent) error {
	data, err := domain.MarshalAttrs(t.Data)
	if err != nil {
		return err
	}

	now := s.nowMillis()
	syncStatus := t.SyncStatus
	if syncStatus == "" {
		syncStatus = domain.SyncPending
	}
	status := t.Status
	if status == "" {
		status = domain.TalentNew
	}

	query := `
		OPTIONAL MATCH (existing:Talent {handle: $handle})
		WITH existing WHERE existing IS NULL
		CREATE (t:Talent {
			id: $id,
			handle: $handle,
			name: $name,
			headline: $headline,
			email: $email,
			phone: $phone,
			location: $location,
			data: $data,
			syncStatus: $syncStatus,
			status: $status,
			matchScore: $matchScore,
			externalId: $externalId,
			createdAt: datetime({epochMillis: $createdAt}),
			updatedAt: datetime({epochMillis: $updatedAt})
		})
		RETURN t.id AS id
	`
	params := map[string]any{
		"id":         t.ID,
		"handle":     t.Handle,
		"name":       t.Name,
		"headline":   t.Headline,
		"email":      t.Email,
		"phone":      t.Phone,
		"location":   t.Location,
		"data":       data,
		"syncStatus": string(syncStatus),
		"status":     string(status),
		"matchScore": optional(t.MatchScore),
		"externalId": optionalString(t.ExternalID),
		"createdAt":  millisOr(t.CreatedAt, now),
		"updatedAt":  millisOr(t.UpdatedAt, now),
	}

	created, err := writeTx(ctx, s, func(tx neo4j.ManagedTransaction) (bool, error) {
		records, err := collect(ctx, tx, query, params)
		if err != nil {
			return false, err
		}
		return len(records) > 0, nil
	})
	if err != nil {
		if isConstraintViolation(err) {
			return &domain.ConflictError{Entity: "talent", Key: t.Handle}
		}
		return fmt.Errorf("create talent: %w", err)
	}
	if !created {
		return &domain.ConflictError{Entity: "talent", Key: t.Handle}
	}
	return nil
}

func (s *Store) findTalent(ctx context.Context, key, value string) (domain.Talent, error) {
	query := fmt.Sprintf(`MATCH (t:Talent {%s: $value}) RETURN t`, key)

	found, err := readTx(ctx, s, func(tx neo4j.ManagedTransaction) ([]domain.Talent, error) {
		records, err := collect(ctx, tx, query, map[string]any{"value": value})
		if err != nil {
			return nil, err
		}
		return talentsFromRecords(records)
	})
	if err != nil {
		return domain.Talent{}, fmt.Errorf("find talent: %w", err)
	}
	if len(found) == 0 {
		return domain.Talent{}, &domain.NotFoundError{Entity: "talent", ID: value}
	}
	return found[0], nil
}

// GetTalent loads a talent by id
func (s *Store) GetTalent(ctx context.Context, id string) (domain.Talent, error) {
	return s.findTalent(ctx, "id", id)
}

// FindTalentByHandle loads a talent by handle
func (s *Store) FindTalentByHandle(ctx context.Context, handle string) (domain.Talent, error) {
	return s.findTalent(ctx, "handle", handle)
}

func (s *Store) updateTalentNode(ctx context.Context, id, set string, params map[string]any) error {
	params["id"] = id
	params["updatedAt"] = s.nowMillis()
	query := `
		MATCH (t:Talent {id: $id})
		SET ` + set + `, t.updatedAt = datetime({epochMillis: $updatedAt})
		RETURN t.id AS id
	`

	matched, err := writeTx(ctx, s, func(tx neo4j.ManagedTransaction) (bool, error) {
		records, err := collect(ctx, tx, query, params)
		if err != nil {
			return false, err
		}
		return len(records) > 0, nil
	})
	if err != nil {
		return fmt.Errorf("update talent: %w", err)
	}
	if !matched {
		return &domain.NotFoundError{Entity: "talent", ID: id}
	}
	return nil
}

// UpdateTalent writes content and lifecycle fields; sync fields are left alone
func (s *Store) UpdateTalent(ctx context.Context, t domain.Talent) error {
	data, err := domain.MarshalAttrs(t.Data)
	if err != nil {
		return err
	}

	return s.updateTalentNode(ctx, t.ID, `
		t.name = $name,
		t.headline = $headline,
		t.email = $email,
		t.phone = $phone,
		t.location = $location,
		t.data = $data,
		t.status = $status,
		t.matchScore = $matchScore`,
		map[string]any{
			"name":       t.Name,
			"headline":   t.Headline,
			"email":      t.Email,
			"phone":      t.Phone,
			"location":   t.Location,
			"data":       data,
			"status":     string(t.Status),
			"matchScore": optional(t.MatchScore),
		})
}

// MarkTalentSynced records the external id and SYNCED together
func (s *Store) MarkTalentSynced(ctx context.Context, id, externalID string) error {
	return s.updateTalentNode(ctx, id, `t.externalId = $externalId, t.syncStatus = $syncStatus`,
		map[string]any{
			"externalId": optionalString(externalID),
			"syncStatus": string(domain.SyncSynced),
		})
}

// MarkTalentSyncFailed sets ERROR
func (s *Store) MarkTalentSyncFailed(ctx context.Context, id string) error {
	return s.updateTalentNode(ctx, id, `t.syncStatus = $syncStatus`,
		map[string]any{"syncStatus": string(domain.SyncError)})
}

// DeleteTalent removes a talent together with its applications
func (s *Store) DeleteTalent(ctx context.Context, id string) error {
	query := `
		MATCH (t:Talent {id: $id})
		OPTIONAL MATCH (t)-[:APPLIED]->(a:Application)
		WITH t, collect(a) AS apps
		FOREACH (a IN apps | DETACH DELETE a)
		DETACH DELETE t
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
		return fmt.Errorf("delete talent: %w", err)
	}
	if !deleted {
		return &domain.NotFoundError{Entity: "talent", ID: id}
	}
	return nil
}

// ListTalents returns one page of talents ordered by score then recency
func (s *Store) ListTalents(ctx context.Context, filter domain.TalentFilter) ([]domain.Talent, int, error) {
	filter = filter.Normalize()

	var clauses []string
	params := map[string]any{
		"skip":  filter.Offset(),
		"limit": filter.Limit,
	}
	if term := strings.ToLower(strings.TrimSpace(filter.SearchTerm)); term != "" {
		clauses = append(clauses, `(toLower(t.name) CONTAINS $term OR toLower(t.headline) CONTAINS $term OR t.handle CONTAINS $term)`)
		params["term"] = term
	}
	if filter.MinScore != nil {
		clauses = append(clauses, `t.matchScore >= $minScore`)
		params["minScore"] = *filter.MinScore
	}
	if filter.Status != "" {
		clauses = append(clauses, `t.status = $status`)
		params["status"] = string(filter.Status)
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	type page struct {
		talents []domain.Talent
		total   int
	}

	out, err := readTx(ctx, s, func(tx neo4j.ManagedTransaction) (page, error) {
		countRecords, err := collect(ctx, tx, `MATCH (t:Talent) `+where+` RETURN count(t) AS total`, params)
		if err != nil {
			return page{}, err
		}
		var total int64
		if len(countRecords) > 0 {
			if v, ok := countRecords[0].Get("total"); ok {
				total, _ = v.(int64)
			}
		}

		records, err := collect(ctx, tx, `
			MATCH (t:Talent) `+where+`
			RETURN t
			ORDER BY t.matchScore IS NULL, t.matchScore DESC, t.createdAt DESC
			SKIP $skip LIMIT $limit`, params)
		if err != nil {
			return page{}, err
		}
		talents, err := talentsFromRecords(records)
		if err != nil {
			return page{}, err
		}
		return page{talents: talents, total: int(total)}, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list talents: %w", err)
	}
	return out.talents, out.total, nil
}

// ListTalentsForRetry returns talents stuck in statuses and untouched since olderThan
func (s *Store) ListTalentsForRetry(ctx context.Context, statuses []domain.SyncStatus, olderThan time.Time, limit int) ([]domain.Talent, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, string(st))
	}

	query := `
		MATCH (t:Talent)
		WHERE t.syncStatus IN $statuses AND t.updatedAt < datetime({epochMillis: $olderThan})
		RETURN t
		ORDER BY t.updatedAt ASC
		LIMIT $limit
	`

	talents, err := readTx(ctx, s, func(tx neo4j.ManagedTransaction) ([]domain.Talent, error) {
		records, err := collect(ctx, tx, query, map[string]any{
			"statuses":  names,
			"olderThan": olderThan.UnixMilli(),
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}
		return talentsFromRecords(records)
	})
	if err != nil {
		return nil, fmt.Errorf("list talents for retry: %w", err)
	}
	return talents, nil
}
