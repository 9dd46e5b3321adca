package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

const panelColumns = "id, category_id, channel_id, message_id, title, description, emoji, button_text, role_id, created_at"

// PanelRepository implements secondary.PanelRepository with SQLite.
type PanelRepository struct {
	db *sql.DB
}

// NewPanelRepository creates a new SQLite panel repository.
func NewPanelRepository(db *sql.DB) *PanelRepository {
	return &PanelRepository{db: db}
}

// Create persists a panel registration.
func (r *PanelRepository) Create(ctx context.Context, p *secondary.PanelRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ticket_panels (category_id, channel_id, message_id, title, description, emoji, button_text, role_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.CategoryID, p.ChannelID, p.MessageID, p.Title, p.Description, p.Emoji, p.ButtonText, nullInt64(p.RoleID), now(),
	)
	if err != nil {
		return 0, courterr.Persistence("panel.create", err, "failed to create panel")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, courterr.Persistence("panel.create", err, "failed to read panel id")
	}
	return id, nil
}

// GetByCategory retrieves the most recent panel for an intake category.
func (r *PanelRepository) GetByCategory(ctx context.Context, categoryID int64) (*secondary.PanelRecord, error) {
	record, err := scanPanel(r.db.QueryRowContext(ctx,
		"SELECT "+panelColumns+" FROM ticket_panels WHERE category_id = ? ORDER BY id DESC LIMIT 1", categoryID))
	if err == sql.ErrNoRows {
		return nil, courterr.NotFound("panel.get", "no panel is registered for category %d", categoryID)
	}
	if err != nil {
		return nil, courterr.Persistence("panel.get", err, "failed to get panel")
	}
	return record, nil
}

// List returns every panel.
func (r *PanelRepository) List(ctx context.Context) ([]*secondary.PanelRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+panelColumns+" FROM ticket_panels ORDER BY id")
	if err != nil {
		return nil, courterr.Persistence("panel.list", err, "failed to list panels")
	}
	defer rows.Close()

	var out []*secondary.PanelRecord
	for rows.Next() {
		record, err := scanPanel(rows)
		if err != nil {
			return nil, courterr.Persistence("panel.list", err, "failed to scan panel")
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence("panel.list", err, "failed to list panels")
	}
	return out, nil
}

func scanPanel(s scanner) (*secondary.PanelRecord, error) {
	var (
		roleID    sql.NullInt64
		createdAt sql.NullTime
	)
	record := &secondary.PanelRecord{}
	err := s.Scan(&record.ID, &record.CategoryID, &record.ChannelID, &record.MessageID, &record.Title,
		&record.Description, &record.Emoji, &record.ButtonText, &roleID, &createdAt)
	if err != nil {
		return nil, err
	}
	record.RoleID = roleID.Int64
	record.CreatedAt = timeOrZero(createdAt)
	return record, nil
}

// Ensure PanelRepository implements the interface
var _ secondary.PanelRepository = (*PanelRepository)(nil)
