package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
)

// timeFormat is used for stored timestamps so SQLite's date/time
// functions can operate on them (modernc.org/sqlite does not store
// time.Time in a compatible format by default).
const timeFormat = "2006-01-02 15:04:05"

// InsertQuotaSample records one usage observation.
func (db *DB) InsertQuotaSample(sample *models.QuotaSample) error {
	query := `
		INSERT INTO quota_history (
			account_id, username, used_requests, included_requests,
			remaining_requests, plan, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	recordedAt := sample.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	result, err := db.ExecContext(context.Background(), query,
		sample.AccountID,
		sample.Username,
		sample.UsedRequests,
		nullInt64(sample.IncludedRequests),
		nullInt64(sample.RemainingRequests),
		nullString(sample.Plan),
		recordedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quota sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		sample.ID = id
	}

	return nil
}

// GetAccountHistory returns an account's samples from the last N hours,
// oldest first.
func (db *DB) GetAccountHistory(accountID string, hours int) ([]models.QuotaSample, error) {
	query := `
		SELECT id, account_id, username, used_requests, included_requests,
			   remaining_requests, plan, recorded_at
		FROM quota_history
		WHERE account_id = ? AND recorded_at >= datetime('now', ?)
		ORDER BY recorded_at ASC
	`

	rows, err := db.QueryContext(context.Background(), query, accountID, fmt.Sprintf("-%d hours", hours))
	if err != nil {
		return nil, fmt.Errorf("failed to query account history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	return scanSamples(rows)
}

// GetRecentSamples returns the most recent samples across all accounts.
func (db *DB) GetRecentSamples(limit int) ([]models.QuotaSample, error) {
	query := `
		SELECT id, account_id, username, used_requests, included_requests,
			   remaining_requests, plan, recorded_at
		FROM quota_history
		ORDER BY recorded_at DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSamples(rows)
}

// PruneOlderThan deletes samples older than the given number of days and
// returns the number of rows removed.
func (db *DB) PruneOlderThan(days int) (int64, error) {
	query := `DELETE FROM quota_history WHERE recorded_at < datetime('now', ?)`

	result, err := db.ExecContext(context.Background(), query, fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, fmt.Errorf("failed to prune quota history: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAccountHistory removes all samples for an account, used when the
// account itself is deleted.
func (db *DB) DeleteAccountHistory(accountID string) error {
	if _, err := db.ExecContext(context.Background(),
		`DELETE FROM quota_history WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("failed to delete account history: %w", err)
	}
	return nil
}

func scanSamples(rows *sql.Rows) ([]models.QuotaSample, error) {
	var samples []models.QuotaSample
	for rows.Next() {
		var s models.QuotaSample
		var included, remaining sql.NullInt64
		var plan sql.NullString
		var recordedAt string

		err := rows.Scan(
			&s.ID,
			&s.AccountID,
			&s.Username,
			&s.UsedRequests,
			&included,
			&remaining,
			&plan,
			&recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quota sample: %w", err)
		}

		if included.Valid {
			s.IncludedRequests = &included.Int64
		}
		if remaining.Valid {
			s.RemainingRequests = &remaining.Int64
		}
		if plan.Valid {
			s.Plan = &plan.String
		}
		s.RecordedAt, _ = time.Parse(timeFormat, recordedAt)
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
