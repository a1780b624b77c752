package audit

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink persists audit entries to the audit_log table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink creates a new PostgreSQL audit sink.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// Write inserts one audit entry. Entries are independent appends; no
// transaction is needed.
func (s *PostgresSink) Write(ctx context.Context, entry Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (id, created_at, request, response, matched_rule_id, success, fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.CreatedAt, entry.Request, entry.Response,
		entry.MatchedRuleID, entry.Success, entry.Fingerprint)
	return err
}

// MemorySink keeps entries in memory, for the memory store type and tests.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write appends the entry.
func (s *MemorySink) Write(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of everything written so far.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Entry, len(s.entries))
	copy(result, s.entries)
	return result
}
