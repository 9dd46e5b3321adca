package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// EvidenceRepository implements secondary.EvidenceRepository with SQLite.
// Positions are never stored; they are the rank of id within a case.
type EvidenceRepository struct {
	db *sql.DB
}

// NewEvidenceRepository creates a new SQLite evidence repository.
func NewEvidenceRepository(db *sql.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Add appends an item and returns the position it was given.
func (r *EvidenceRepository) Add(ctx context.Context, item *secondary.EvidenceRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, courterr.Persistence("evidence.add", err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM evidence WHERE case_id = ?", item.CaseID).Scan(&count); err != nil {
		return 0, courterr.Persistence("evidence.add", err, "failed to count evidence")
	}

	submittedAt := item.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = now()
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO evidence (case_id, submitter_id, description, link, submitted_at) VALUES (?, ?, ?, ?, ?)",
		item.CaseID, item.SubmitterID, item.Description, item.Link, submittedAt.UTC(),
	)
	if err != nil {
		return 0, courterr.Persistence("evidence.add", err, "failed to add evidence")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, courterr.Persistence("evidence.add", err, "failed to read evidence id")
	}
	if err := tx.Commit(); err != nil {
		return 0, courterr.Persistence("evidence.add", err, "failed to commit evidence")
	}

	item.ID = id
	item.Position = count + 1
	item.SubmittedAt = submittedAt.UTC()
	return item.Position, nil
}

// RemoveAt deletes the item at position and returns it.
func (r *EvidenceRepository) RemoveAt(ctx context.Context, caseID int64, position int) (*secondary.EvidenceRecord, error) {
	if position < 1 {
		return nil, notFoundAt(caseID, position)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, courterr.Persistence("evidence.remove", err, "failed to begin transaction")
	}
	defer tx.Rollback()

	record, err := scanEvidence(tx.QueryRowContext(ctx,
		"SELECT id, case_id, submitter_id, description, link, submitted_at FROM evidence WHERE case_id = ? ORDER BY id LIMIT 1 OFFSET ?",
		caseID, position-1,
	))
	if err == sql.ErrNoRows {
		return nil, notFoundAt(caseID, position)
	}
	if err != nil {
		return nil, courterr.Persistence("evidence.remove", err, "failed to find evidence")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM evidence WHERE id = ?", record.ID); err != nil {
		return nil, courterr.Persistence("evidence.remove", err, "failed to remove evidence")
	}
	if err := tx.Commit(); err != nil {
		return nil, courterr.Persistence("evidence.remove", err, "failed to commit removal")
	}

	record.Position = position
	return record, nil
}

// List returns the items of a case in insertion order.
func (r *EvidenceRepository) List(ctx context.Context, caseID int64) ([]*secondary.EvidenceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, case_id, submitter_id, description, link, submitted_at FROM evidence WHERE case_id = ? ORDER BY id",
		caseID,
	)
	if err != nil {
		return nil, courterr.Persistence("evidence.list", err, "failed to list evidence")
	}
	defer rows.Close()

	var items []*secondary.EvidenceRecord
	for rows.Next() {
		record, err := scanEvidence(rows)
		if err != nil {
			return nil, courterr.Persistence("evidence.list", err, "failed to scan evidence")
		}
		record.Position = len(items) + 1
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence("evidence.list", err, "failed to list evidence")
	}
	return items, nil
}

// At returns the item at position.
func (r *EvidenceRepository) At(ctx context.Context, caseID int64, position int) (*secondary.EvidenceRecord, error) {
	if position < 1 {
		return nil, notFoundAt(caseID, position)
	}
	record, err := scanEvidence(r.db.QueryRowContext(ctx,
		"SELECT id, case_id, submitter_id, description, link, submitted_at FROM evidence WHERE case_id = ? ORDER BY id LIMIT 1 OFFSET ?",
		caseID, position-1,
	))
	if err == sql.ErrNoRows {
		return nil, notFoundAt(caseID, position)
	}
	if err != nil {
		return nil, courterr.Persistence("evidence.get", err, "failed to get evidence")
	}
	record.Position = position
	return record, nil
}

// Count returns the number of items for a case.
func (r *EvidenceRepository) Count(ctx context.Context, caseID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evidence WHERE case_id = ?", caseID).Scan(&n); err != nil {
		return 0, courterr.Persistence("evidence.count", err, "failed to count evidence")
	}
	return n, nil
}

func notFoundAt(caseID int64, position int) error {
	return courterr.NotFound("evidence.get", "evidence %s not found", fmt.Sprintf("%d.%d", caseID, position))
}

func scanEvidence(s scanner) (*secondary.EvidenceRecord, error) {
	var submittedAt sql.NullTime
	record := &secondary.EvidenceRecord{}
	if err := s.Scan(&record.ID, &record.CaseID, &record.SubmitterID, &record.Description, &record.Link, &submittedAt); err != nil {
		return nil, err
	}
	record.SubmittedAt = timeOrZero(submittedAt)
	return record, nil
}

// Ensure EvidenceRepository implements the interface
var _ secondary.EvidenceRepository = (*EvidenceRepository)(nil)
