// Package postgres persists member records as jsonb documents, keyed by
// record id and scoped by tenant. The engine treats the store as an object
// store; Postgres gives it durability plus an index on the business id for
// duplicate checks.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kindred/internal/member/models"
	"kindred/internal/member/store"
	id "kindred/pkg/domain"
)

// Schema is the DDL this store expects. Applied by deployment tooling;
// EnsureSchema exists for development wiring.
const Schema = `
CREATE TABLE IF NOT EXISTS members (
    record_id  TEXT PRIMARY KEY,
    tenant_id  UUID NOT NULL,
    member_id  TEXT NOT NULL,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS members_tenant_member_idx ON members (tenant_id, member_id);
CREATE INDEX IF NOT EXISTS members_tenant_idx ON members (tenant_id);
`

// PostgresMemberStore is the production member store.
type PostgresMemberStore struct {
	pool *pgxpool.Pool
}

// New constructs a Postgres-backed member store.
func New(pool *pgxpool.Pool) *PostgresMemberStore {
	return &PostgresMemberStore{pool: pool}
}

// EnsureSchema applies the store's DDL.
func (s *PostgresMemberStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure members schema: %w", err)
	}
	return nil
}

func (s *PostgresMemberStore) Create(ctx context.Context, m *models.Member) (*models.Member, error) {
	stored := m.Clone()
	if stored.ID.IsZero() {
		stored.ID = id.RecordID(uuid.NewString())
	}
	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode member: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO members (record_id, tenant_id, member_id, doc) VALUES ($1, $2, $3, $4)`,
		stored.ID.String(), uuid.UUID(stored.CompanyID), stored.MemberID.String(), doc)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return stored, nil
}

func (s *PostgresMemberStore) Update(ctx context.Context, m *models.Member) (*models.Member, error) {
	stored := m.Clone()
	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode member: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE members SET member_id = $3, doc = $4, updated_at = now()
		 WHERE record_id = $1 AND tenant_id = $2`,
		stored.ID.String(), uuid.UUID(stored.CompanyID), stored.MemberID.String(), doc)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("member %s: %w", stored.ID, store.ErrNotFound)
	}
	return stored, nil
}

func (s *PostgresMemberStore) Delete(ctx context.Context, tenantID id.TenantID, recordID id.RecordID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM members WHERE record_id = $1 AND tenant_id = $2`,
		recordID.String(), uuid.UUID(tenantID))
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", recordID, store.ErrNotFound)
	}
	return nil
}

func (s *PostgresMemberStore) FindByRecordID(ctx context.Context, tenantID id.TenantID, recordID id.RecordID) (*models.Member, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM members WHERE record_id = $1 AND tenant_id = $2`,
		recordID.String(), uuid.UUID(tenantID)).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", recordID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return decodeMember(doc)
}

func (s *PostgresMemberStore) FindByMemberID(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) ([]*models.Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM members WHERE tenant_id = $1 AND member_id = $2 ORDER BY record_id`,
		uuid.UUID(tenantID), memberID.String())
	if err != nil {
		return nil, fmt.Errorf("find members by member id: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

func (s *PostgresMemberStore) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM members WHERE tenant_id = $1 ORDER BY record_id`,
		uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

func collectMembers(rows pgx.Rows) ([]*models.Member, error) {
	var out []*models.Member
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m, err := decodeMember(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return out, nil
}

func decodeMember(doc []byte) (*models.Member, error) {
	var m models.Member
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decode member: %w", err)
	}
	return &m, nil
}
