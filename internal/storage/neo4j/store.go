package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/repository"

	pkgneo4j "github.com/honeycarbs/talentsync/pkg/neo4j"
)

// Ensure Store implements repository.Store
var _ repository.Store = (*Store)(nil)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Store implements repository.Store with Neo4j.
//
// Talents, jobs and applications are nodes; a talent points at its applications
// through APPLIED. Outside WithinTx every call runs in its own managed transaction.
type Store struct {
	client *pkgneo4j.Client
	tx     neo4j.ManagedTransaction
	clock  func() time.Time
}

// NewStore creates a Store with a Neo4j client
func NewStore(client *pkgneo4j.Client) *Store {
	return &Store{
		client: client,
		clock:  time.Now,
	}
}

// WithinTx runs fn inside one write transaction
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&Store{client: s.client, tx: tx, clock: s.clock})
	})
	return err
}

// Migrate creates uniqueness constraints and lookup indexes
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT talent_id IF NOT EXISTS FOR (t:Talent) REQUIRE t.id IS UNIQUE`,
		`CREATE CONSTRAINT talent_handle IF NOT EXISTS FOR (t:Talent) REQUIRE t.handle IS UNIQUE`,
		`CREATE CONSTRAINT job_id IF NOT EXISTS FOR (j:Job) REQUIRE j.id IS UNIQUE`,
		`CREATE CONSTRAINT application_id IF NOT EXISTS FOR (a:Application) REQUIRE a.id IS UNIQUE`,
		`CREATE INDEX application_job IF NOT EXISTS FOR (a:Application) ON (a.jobId)`,
		`CREATE INDEX talent_sync IF NOT EXISTS FOR (t:Talent) ON (t.syncStatus)`,
	}

	// schema statements cannot share a transaction with data writes
	session := s.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range statements {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("neo4j migrate: %w", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("neo4j migrate: %w", err)
		}
	}
	return nil
}

// Close is a no-op; the client is owned by the caller
func (s *Store) Close(_ context.Context) error {
	return nil
}

func execute[T any](ctx context.Context, s *Store, mode neo4j.AccessMode, fn func(tx neo4j.ManagedTransaction) (T, error)) (T, error) {
	var zero T
	if s.tx != nil {
		return fn(s.tx)
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		return fn(tx)
	}

	var (
		out any
		err error
	)
	if mode == neo4j.AccessModeWrite {
		out, err = session.ExecuteWrite(ctx, work)
	} else {
		out, err = session.ExecuteRead(ctx, work)
	}
	if err != nil {
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

func readTx[T any](ctx context.Context, s *Store, fn func(tx neo4j.ManagedTransaction) (T, error)) (T, error) {
	return execute(ctx, s, neo4j.AccessModeRead, fn)
}

func writeTx[T any](ctx context.Context, s *Store, fn func(tx neo4j.ManagedTransaction) (T, error)) (T, error) {
	return execute(ctx, s, neo4j.AccessModeWrite, fn)
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

func isConstraintViolation(err error) bool {
	var nerr *neo4j.Neo4jError
	return errors.As(err, &nerr) && nerr.Code == constraintViolation
}

func (s *Store) nowMillis() int64 {
	return s.clock().UnixMilli()
}

func millisOr(t time.Time, fallback int64) int64 {
	if t.IsZero() {
		return fallback
	}
	return t.UnixMilli()
}

func nodeFrom(record *neo4j.Record, key string) (map[string]any, bool) {
	val, ok := record.Get(key)
	if !ok {
		return nil, false
	}
	node, ok := val.(neo4j.Node)
	if !ok {
		return nil, false
	}
	return node.Props, true
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func propBool(props map[string]any, key string) bool {
	b, _ := props[key].(bool)
	return b
}

func propFloat(props map[string]any, key string) *float64 {
	switch v := props[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

func propTime(props map[string]any, key string) time.Time {
	switch v := props[key].(type) {
	case time.Time:
		return v.UTC()
	case neo4j.LocalDateTime:
		return v.Time()
	case int64:
		return time.UnixMilli(v).UTC()
	}
	return time.Time{}
}

func propAttrs(props map[string]any, key string) (domain.Attrs, error) {
	raw := propString(props, key)
	if raw == "" {
		return nil, nil
	}
	return domain.UnmarshalAttrs([]byte(raw))
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
