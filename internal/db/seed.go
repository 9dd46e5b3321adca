package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: an intake
// and archive category, two judges, cases in every state and a small ledger.
// Ids are fake snowflakes.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC()

	categories := []struct {
		id         int64
		name, kind string
	}{
		{100, "Saker", "intake"},
		{101, "Arkiv", "archive"},
		{200, "Dommer Hansen", "judge"},
		{201, "Dommer Berg", "judge"},
	}
	for _, c := range categories {
		if _, err := database.Exec(
			"INSERT INTO categories (category_id, name, kind, created_at) VALUES (?, ?, ?, ?)",
			c.id, c.name, c.kind, now,
		); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}

	judges := []struct {
		userID, categoryID int64
		name               string
	}{
		{9001, 200, "Dommer Hansen"},
		{9002, 201, "Dommer Berg"},
	}
	for _, j := range judges {
		if _, err := database.Exec(
			"INSERT INTO judges (user_id, category_id, category_name, created_at) VALUES (?, ?, ?, ?)",
			j.userID, j.categoryID, j.name, now,
		); err != nil {
			return fmt.Errorf("seed judges: %w", err)
		}
	}

	cases := []struct {
		channelID, categoryID, judgeID int64
		title, status                  string
		archived                       bool
	}{
		{3001, 100, 0, "Boundary dispute", "open", false},
		{3002, 200, 9001, "Unpaid invoice", "assigned", false},
		{3003, 101, 9002, "Noise complaint", "closed", true},
		{3004, 101, 0, "Abandoned request", "open", true},
	}
	for i, c := range cases {
		var judge, closedAt, reason any
		if c.judgeID != 0 {
			judge = c.judgeID
		}
		if c.status == "closed" {
			closedAt = now
			reason = "Settled between the parties"
		}
		if _, err := database.Exec(
			`INSERT INTO cases (channel_id, category_id, creator_id, assigned_judge_id, title, description, status, archived, created_at, updated_at, closed_at, closing_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.channelID, c.categoryID, 8000+int64(i), judge, c.title, "Seeded case", c.status, c.archived,
			now.Add(-time.Duration(len(cases)-i)*time.Hour), now, closedAt, reason,
		); err != nil {
			return fmt.Errorf("seed cases: %w", err)
		}
	}

	evidence := []struct {
		caseID      int64
		desc, link  string
		submitterID int64
	}{
		{1, "Survey map", "https://example.com/map.png", 8000},
		{1, "Photo of fence", "https://example.com/fence.jpg", 8000},
		{2, "Invoice #42", "https://example.com/invoice.pdf", 8001},
	}
	for _, e := range evidence {
		if _, err := database.Exec(
			"INSERT INTO evidence (case_id, submitter_id, description, link, submitted_at) VALUES (?, ?, ?, ?, ?)",
			e.caseID, e.submitterID, e.desc, e.link, now,
		); err != nil {
			return fmt.Errorf("seed evidence: %w", err)
		}
	}

	if _, err := database.Exec(
		"INSERT INTO scheduled_notifications (target_user_id, message, scheduled_at, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		8000, "Hearing tomorrow at 18:00", now.Add(24*time.Hour), 9001, now,
	); err != nil {
		return fmt.Errorf("seed notifications: %w", err)
	}

	return nil
}
