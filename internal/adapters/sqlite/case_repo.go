package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

const caseColumns = "id, channel_id, category_id, creator_id, assigned_judge_id, title, description, status, archived, created_at, updated_at, closed_at, closing_reason, archive_ref"

// CaseRepository implements secondary.CaseRepository with SQLite.
type CaseRepository struct {
	db *sql.DB
}

// NewCaseRepository creates a new SQLite case repository.
func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create persists a new case.
func (r *CaseRepository) Create(ctx context.Context, c *secondary.CaseRecord) (*secondary.CaseRecord, error) {
	ts := now()
	status := c.Status
	if status == "" {
		status = "open"
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cases (channel_id, category_id, creator_id, assigned_judge_id, title, description, status, archived, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ChannelID, c.CategoryID, c.CreatorID, nullInt64(c.AssignedJudgeID), c.Title, c.Description, status, c.Archived, ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, courterr.Conflict("case.create", "channel %d already has a case", c.ChannelID)
		}
		return nil, courterr.Persistence("case.create", err, "failed to create case")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, courterr.Persistence("case.create", err, "failed to read case id")
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a case by its ID.
func (r *CaseRepository) GetByID(ctx context.Context, id int64) (*secondary.CaseRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+caseColumns+" FROM cases WHERE id = ?", id)
	record, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, courterr.NotFound("case.get", "case %d not found", id)
	}
	if err != nil {
		return nil, courterr.Persistence("case.get", err, "failed to get case")
	}
	return record, nil
}

// GetByChannel retrieves the case bound to a channel.
func (r *CaseRepository) GetByChannel(ctx context.Context, channelID int64) (*secondary.CaseRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+caseColumns+" FROM cases WHERE channel_id = ?", channelID)
	record, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, courterr.NotFound("case.get", "this channel is not a case channel")
	}
	if err != nil {
		return nil, courterr.Persistence("case.get", err, "failed to get case")
	}
	return record, nil
}

// NextID returns the id the next insert will receive. AUTOINCREMENT never
// reuses ids, so the sequence table is authoritative.
func (r *CaseRepository) NextID(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT seq FROM sqlite_sequence WHERE name = 'cases'), (SELECT MAX(id) FROM cases), 0) + 1",
	).Scan(&next)
	if err != nil {
		return 0, courterr.Persistence("case.next_id", err, "failed to get next case id")
	}
	return next, nil
}

// Assign sets the judge on an open, unassigned case.
func (r *CaseRepository) Assign(ctx context.Context, id, judgeID int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cases SET assigned_judge_id = ?, status = 'assigned', updated_at = ? WHERE id = ? AND status = 'open' AND assigned_judge_id IS NULL",
		judgeID, now(), id,
	)
	if err != nil {
		return courterr.Persistence("case.assign", err, "failed to assign case")
	}
	return r.checkSwapped(ctx, "case.assign", id, res)
}

// Close sets status=closed with the close fields. The case is archived by
// the same statement.
func (r *CaseRepository) Close(ctx context.Context, id int64, fields secondary.CloseFields) error {
	closedAt := fields.ClosedAt
	if closedAt.IsZero() {
		closedAt = now()
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE cases SET status = 'closed', archived = 1, closed_at = ?, closing_reason = ?, archive_ref = ?, updated_at = ? WHERE id = ? AND status IN ('open', 'assigned')",
		closedAt.UTC(), nullString(fields.Reason), nullString(fields.ArchiveRef), now(), id,
	)
	if err != nil {
		return courterr.Persistence("case.close", err, "failed to close case")
	}
	return r.checkSwapped(ctx, "case.close", id, res)
}

// MarkArchived sets archived on an active case.
func (r *CaseRepository) MarkArchived(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cases SET archived = 1, updated_at = ? WHERE id = ? AND status IN ('open', 'assigned') AND archived = 0",
		now(), id,
	)
	if err != nil {
		return courterr.Persistence("case.archive", err, "failed to archive case")
	}
	return r.checkSwapped(ctx, "case.archive", id, res)
}

// checkSwapped turns a compare-and-swap that matched nothing into not found
// or conflict.
func (r *CaseRepository) checkSwapped(ctx context.Context, op string, id int64, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return courterr.Persistence(op, err, "failed to read update result")
	}
	if n > 0 {
		return nil
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return courterr.Conflict(op, "case %d is already in a different state (status: %s)", id, current.Status)
}

// List retrieves cases matching the given filters, newest first.
func (r *CaseRepository) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	query := "SELECT " + caseColumns + " FROM cases WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.JudgeID != 0 {
		query += " AND assigned_judge_id = ?"
		args = append(args, filters.JudgeID)
	}
	if filters.Archived != nil {
		query += " AND archived = ?"
		args = append(args, *filters.Archived)
	}

	query += " ORDER BY id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	return r.query(ctx, "case.list", query, args...)
}

// Search finds closed or archived cases mentioning term.
func (r *CaseRepository) Search(ctx context.Context, term string, limit int) ([]*secondary.CaseRecord, error) {
	if limit <= 0 {
		limit = 25
	}
	like := "%" + escapeLike(term) + "%"
	return r.query(ctx, "case.search",
		"SELECT "+caseColumns+` FROM cases
		WHERE (status = 'closed' OR archived = 1)
		AND (title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR closing_reason LIKE ? ESCAPE '\')
		ORDER BY id DESC LIMIT ?`,
		like, like, like, limit,
	)
}

// Stats returns case counts by status and per judge.
func (r *CaseRepository) Stats(ctx context.Context) (*secondary.CaseStats, error) {
	stats := &secondary.CaseStats{ByStatus: map[string]int{}}

	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM cases GROUP BY status")
	if err != nil {
		return nil, courterr.Persistence("case.stats", err, "failed to count cases")
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, courterr.Persistence("case.stats", err, "failed to scan case counts")
		}
		stats.ByStatus[status] = n
		stats.Total += n
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, courterr.Persistence("case.stats", err, "failed to count cases")
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cases WHERE archived = 1").Scan(&stats.Archived); err != nil {
		return nil, courterr.Persistence("case.stats", err, "failed to count archived cases")
	}

	rows, err = r.db.QueryContext(ctx, `SELECT assigned_judge_id, COUNT(*),
		SUM(CASE WHEN status IN ('open', 'assigned') THEN 1 ELSE 0 END)
		FROM cases WHERE assigned_judge_id IS NOT NULL
		GROUP BY assigned_judge_id ORDER BY COUNT(*) DESC, assigned_judge_id`)
	if err != nil {
		return nil, courterr.Persistence("case.stats", err, "failed to count judge cases")
	}
	defer rows.Close()
	for rows.Next() {
		var jc secondary.JudgeCaseCount
		if err := rows.Scan(&jc.JudgeID, &jc.Total, &jc.Active); err != nil {
			return nil, courterr.Persistence("case.stats", err, "failed to scan judge counts")
		}
		stats.ByJudge = append(stats.ByJudge, jc)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence("case.stats", err, "failed to count judge cases")
	}
	return stats, nil
}

// CountOpenAssigned counts active cases assigned to a judge.
func (r *CaseRepository) CountOpenAssigned(ctx context.Context, judgeID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cases WHERE assigned_judge_id = ? AND status IN ('open', 'assigned')",
		judgeID,
	).Scan(&n)
	if err != nil {
		return 0, courterr.Persistence("case.count", err, "failed to count assigned cases")
	}
	return n, nil
}

func (r *CaseRepository) query(ctx context.Context, op, query string, args ...any) ([]*secondary.CaseRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, courterr.Persistence(op, err, "failed to query cases")
	}
	defer rows.Close()

	var cases []*secondary.CaseRecord
	for rows.Next() {
		record, err := scanCase(rows)
		if err != nil {
			return nil, courterr.Persistence(op, err, "failed to scan case")
		}
		cases = append(cases, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence(op, err, "failed to query cases")
	}
	return cases, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(s scanner) (*secondary.CaseRecord, error) {
	var (
		judgeID       sql.NullInt64
		createdAt     sql.NullTime
		updatedAt     sql.NullTime
		closedAt      sql.NullTime
		closingReason sql.NullString
		archiveRef    sql.NullString
	)

	record := &secondary.CaseRecord{}
	err := s.Scan(&record.ID, &record.ChannelID, &record.CategoryID, &record.CreatorID, &judgeID,
		&record.Title, &record.Description, &record.Status, &record.Archived,
		&createdAt, &updatedAt, &closedAt, &closingReason, &archiveRef)
	if err != nil {
		return nil, err
	}

	record.AssignedJudgeID = judgeID.Int64
	record.CreatedAt = timeOrZero(createdAt)
	record.UpdatedAt = timeOrZero(updatedAt)
	record.ClosedAt = timeOrZero(closedAt)
	record.ClosingReason = closingReason.String
	record.ArchiveRef = archiveRef.String
	return record, nil
}

// Ensure CaseRepository implements the interface
var _ secondary.CaseRepository = (*CaseRepository)(nil)
