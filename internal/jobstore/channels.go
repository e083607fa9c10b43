package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobcore/internal/logging"
)

// SetChannelRecommendations replaces the job's previous recommendation set
// atomically (spec §4.F). Duplicates by channel are the caller's
// responsibility to have already suppressed (task.ParseChannels does this);
// this layer enforces it again defensively via the unique (job_id, channel)
// primary key.
func (s *Store) SetChannelRecommendations(jobID string, recs []ChannelRecommendation, failure *Failure) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return time.Time{}, fmt.Errorf("jobstore: set channel recommendations: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM channel_recommendations WHERE job_id = ?`, jobID); err != nil {
		return time.Time{}, fmt.Errorf("jobstore: set channel recommendations: clear: %w", err)
	}

	seen := map[string]bool{}
	for i, rec := range recs {
		if seen[rec.Channel] {
			continue
		}
		seen[rec.Channel] = true
		var cpa sql.NullFloat64
		if rec.ExpectedCPA != nil {
			cpa = sql.NullFloat64{Float64: *rec.ExpectedCPA, Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO channel_recommendations (job_id, position, channel, reason, expected_cpa)
			VALUES (?, ?, ?, ?, ?)
		`, jobID, i, rec.Channel, rec.Reason, cpa); err != nil {
			return time.Time{}, fmt.Errorf("jobstore: set channel recommendations: insert: %w", err)
		}
	}

	var failureBody sql.NullString
	if failure != nil {
		body, err := json.Marshal(failure)
		if err != nil {
			return time.Time{}, fmt.Errorf("jobstore: encode channels failure: %w", err)
		}
		failureBody = sql.NullString{String: string(body), Valid: true}
	}

	updatedAt := time.Now()
	result, err := tx.Exec(`
		UPDATE jobs SET channels_updated_at = ?, channels_failure_json = ?, updated_at = ? WHERE job_id = ?
	`, updatedAt, failureBody, updatedAt, jobID)
	if err != nil {
		return time.Time{}, fmt.Errorf("jobstore: set channel recommendations: update job: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return time.Time{}, fmt.Errorf("jobstore: set channel recommendations: job %q not found", jobID)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("jobstore: set channel recommendations: commit: %w", err)
	}

	logging.Job("job=%s: %d channel recommendations stored", jobID, len(seen))
	logging.AuditWithJob(jobID).JobLifecycle(logging.AuditJobChannelsSet, jobID, fmt.Sprintf("%d recommendations", len(seen)))
	return updatedAt, nil
}

// GetChannelRecommendations reads the job's cached recommendations in
// insertion order.
func (s *Store) GetChannelRecommendations(jobID string) ([]ChannelRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT channel, reason, expected_cpa FROM channel_recommendations
		WHERE job_id = ? ORDER BY position ASC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobstore: get channel recommendations: %w", err)
	}
	defer rows.Close()

	var recs []ChannelRecommendation
	for rows.Next() {
		var rec ChannelRecommendation
		var cpa sql.NullFloat64
		if err := rows.Scan(&rec.Channel, &rec.Reason, &cpa); err != nil {
			return nil, fmt.Errorf("jobstore: scan channel recommendation: %w", err)
		}
		if cpa.Valid {
			rec.ExpectedCPA = &cpa.Float64
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
