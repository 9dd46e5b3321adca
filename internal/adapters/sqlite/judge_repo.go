package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// JudgeRepository implements secondary.JudgeRepository with SQLite.
type JudgeRepository struct {
	db *sql.DB
}

// NewJudgeRepository creates a new SQLite judge repository.
func NewJudgeRepository(db *sql.DB) *JudgeRepository {
	return &JudgeRepository{db: db}
}

// Upsert creates or replaces the judge's category binding.
func (r *JudgeRepository) Upsert(ctx context.Context, j *secondary.JudgeRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO judges (user_id, category_id, category_name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET category_id = excluded.category_id, category_name = excluded.category_name`,
		j.UserID, j.CategoryID, j.CategoryName, now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return courterr.Conflict("judge.upsert", "category %d already belongs to another judge", j.CategoryID)
		}
		return courterr.Persistence("judge.upsert", err, "failed to save judge")
	}
	return nil
}

// GetByUser retrieves a judge by user id.
func (r *JudgeRepository) GetByUser(ctx context.Context, userID int64) (*secondary.JudgeRecord, error) {
	record, err := scanJudge(r.db.QueryRowContext(ctx,
		"SELECT user_id, category_id, category_name, created_at FROM judges WHERE user_id = ?", userID))
	if err == sql.ErrNoRows {
		return nil, courterr.NotFound("judge.get", "user %d is not a judge", userID)
	}
	if err != nil {
		return nil, courterr.Persistence("judge.get", err, "failed to get judge")
	}
	return record, nil
}

// List returns all judges ordered by category name.
func (r *JudgeRepository) List(ctx context.Context) ([]*secondary.JudgeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id, category_id, category_name, created_at FROM judges ORDER BY category_name COLLATE NOCASE, user_id")
	if err != nil {
		return nil, courterr.Persistence("judge.list", err, "failed to list judges")
	}
	defer rows.Close()

	var judges []*secondary.JudgeRecord
	for rows.Next() {
		record, err := scanJudge(rows)
		if err != nil {
			return nil, courterr.Persistence("judge.list", err, "failed to scan judge")
		}
		judges = append(judges, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence("judge.list", err, "failed to list judges")
	}
	return judges, nil
}

// Delete removes a judge.
func (r *JudgeRepository) Delete(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM judges WHERE user_id = ?", userID)
	if err != nil {
		return courterr.Persistence("judge.delete", err, "failed to delete judge")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return courterr.NotFound("judge.delete", "user %d is not a judge", userID)
	}
	return nil
}

func scanJudge(s scanner) (*secondary.JudgeRecord, error) {
	var createdAt sql.NullTime
	record := &secondary.JudgeRecord{}
	if err := s.Scan(&record.UserID, &record.CategoryID, &record.CategoryName, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = timeOrZero(createdAt)
	return record, nil
}

// Ensure JudgeRepository implements the interface
var _ secondary.JudgeRepository = (*JudgeRepository)(nil)
