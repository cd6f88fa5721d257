package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tormodhaugland/wsb/internal/model"
)

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusStarted   Status = "started"
	StatusFailed    Status = "failed"
)

// Entry is one submitted build request and its outcome.
type Entry struct {
	ID          int64                           `json:"id"`
	WorkspaceID string                          `json:"workspace_id"`
	Workspace   string                          `json:"workspace"`
	Parameters  []model.WorkspaceBuildParameter `json:"parameters"`
	Status      Status                          `json:"status"`
	BuildID     string                          `json:"build_id,omitempty"`
	BuildNumber int                             `json:"build_number,omitempty"`
	Error       string                          `json:"error,omitempty"`
	SubmittedAt time.Time                       `json:"submitted_at"`
	CompletedAt *time.Time                      `json:"completed_at,omitempty"`
}

// RecordSubmission stores a build request before it is sent.
func (db *DB) RecordSubmission(ctx context.Context, ws model.Workspace, params []model.WorkspaceBuildParameter, at time.Time) (int64, error) {
	if params == nil {
		params = []model.WorkspaceBuildParameter{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("encoding parameters: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO build_requests (workspace_id, workspace, parameters, status, submitted_at)
		VALUES (?, ?, ?, ?, ?)
	`, ws.ID, ws.FullName(), string(raw), StatusSubmitted, at.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting build request: %w", err)
	}
	return res.LastInsertId()
}

// RecordResult stores the outcome of a submitted request. A nil buildErr
// marks it started.
func (db *DB) RecordResult(ctx context.Context, id int64, build model.WorkspaceBuild, buildErr error, at time.Time) error {
	var err error
	if buildErr != nil {
		_, err = db.conn.ExecContext(ctx, `
			UPDATE build_requests SET status = ?, error_message = ?, completed_at = ? WHERE id = ?
		`, StatusFailed, buildErr.Error(), at.UTC(), id)
	} else {
		_, err = db.conn.ExecContext(ctx, `
			UPDATE build_requests SET status = ?, build_id = ?, build_number = ?, completed_at = ? WHERE id = ?
		`, StatusStarted, build.ID, build.BuildNumber, at.UTC(), id)
	}
	if err != nil {
		return fmt.Errorf("updating build request %d: %w", id, err)
	}
	return nil
}

// List returns the newest entries first. An empty workspace matches all.
func (db *DB) List(ctx context.Context, workspace string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, workspace_id, workspace, parameters, status, build_id, build_number,
		       error_message, submitted_at, completed_at
		FROM build_requests
	`
	args := []any{}
	if workspace != "" {
		query += " WHERE workspace = ?"
		args = append(args, workspace)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying build requests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			rawParams   string
			buildID     sql.NullString
			buildNumber sql.NullInt64
			errMsg      sql.NullString
			completedAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.Workspace, &rawParams, &e.Status,
			&buildID, &buildNumber, &errMsg, &e.SubmittedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning build request: %w", err)
		}
		if err := json.Unmarshal([]byte(rawParams), &e.Parameters); err != nil {
			return nil, fmt.Errorf("decoding parameters of request %d: %w", e.ID, err)
		}
		e.BuildID = buildID.String
		e.BuildNumber = int(buildNumber.Int64)
		e.Error = errMsg.String
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
