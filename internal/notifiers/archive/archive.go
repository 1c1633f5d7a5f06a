// internal/notifiers/archive/archive.go
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

const createTableQuery = `
CREATE TABLE IF NOT EXISTS leads (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	contact_handle      TEXT NOT NULL,
	email               TEXT,
	archetype           TEXT NOT NULL,
	faith_journey       TEXT,
	church_status       TEXT,
	openness_to_contact TEXT,
	availability        TEXT,
	ratings             JSONB,
	free_text_answers   JSONB,
	follow_up_requested BOOLEAN NOT NULL DEFAULT FALSE,
	submitted_at        TIMESTAMPTZ NOT NULL
)`

const insertLeadQuery = `
INSERT INTO leads (
	id, name, contact_handle, email, archetype,
	faith_journey, church_status, openness_to_contact, availability,
	ratings, free_text_answers, follow_up_requested, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const flagFollowUpQuery = `
UPDATE leads SET follow_up_requested = TRUE
WHERE id = (
	SELECT id FROM leads WHERE contact_handle = $1
	ORDER BY submitted_at DESC LIMIT 1
)`

// Notifier keeps a durable copy of every lead in Postgres. The in-process
// store stays authoritative for reads; the archive exists so leads survive
// restarts and capacity eviction.
type Notifier struct {
	db     *sql.DB
	logger logger.Logger
}

// New wraps an open database handle.
func New(log logger.Logger, db *sql.DB) *Notifier {
	return &Notifier{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"notifier": "archive"}),
	}
}

func (n *Notifier) Name() string { return "archive" }

// EnsureSchema creates the leads table when it does not exist. Called once
// at startup.
func (n *Notifier) EnsureSchema(ctx context.Context) error {
	if _, err := n.db.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("create leads table: %w", err)
	}
	return nil
}

// LeadCreated inserts the lead row.
func (n *Notifier) LeadCreated(ctx context.Context, l *lead.Lead) error {
	ratings, err := json.Marshal(l.Ratings)
	if err != nil {
		return errors.NewArchiveWriteFailedError(err)
	}
	freeText, err := json.Marshal(l.FreeTextAnswers)
	if err != nil {
		return errors.NewArchiveWriteFailedError(err)
	}

	_, err = n.db.ExecContext(ctx, insertLeadQuery,
		l.ID,
		l.Name,
		l.ContactHandle,
		nullable(l.Email),
		string(l.Archetype),
		nullable(l.FaithJourney),
		nullable(l.ChurchStatus),
		nullable(l.OpennessToContact),
		strings.Join(l.Availability, ","),
		ratings,
		freeText,
		l.FollowUpRequested,
		l.SubmittedAtUTC,
	)
	if err != nil {
		return errors.NewArchiveWriteFailedError(err)
	}

	n.logger.Info("Lead archived", map[string]interface{}{
		"lead_id": l.ID,
	})
	return nil
}

// FollowUpFlagged marks the most recent archived lead for the handle.
func (n *Notifier) FollowUpFlagged(ctx context.Context, handle string) error {
	if _, err := n.db.ExecContext(ctx, flagFollowUpQuery, handle); err != nil {
		return errors.NewArchiveWriteFailedError(err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
