package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobcore/internal/logging"
)

// PlanAssetRun creates a new asset run: an assetRun{status: planning,
// plannedCount: N, completedCount: 0} plus N per-channel asset records
// with status PENDING (spec §4.F). rows is the already-expanded format
// plan (Asset Coordinator §4.G step 1); this layer only persists it.
func (s *Store) PlanAssetRun(jobID string, rows []AssetPlanRow) ([]Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("jobstore: plan asset run: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assets WHERE job_id = ?`, jobID); err != nil {
		return nil, fmt.Errorf("jobstore: plan asset run: clear: %w", err)
	}

	now := time.Now()
	assets := make([]Asset, 0, len(rows))
	for _, row := range rows {
		asset := Asset{
			AssetID:   uuid.NewString(),
			FormatID:  row.FormatID,
			ChannelID: row.ChannelID,
			Status:    AssetPending,
			UpdatedAt: now,
		}
		if _, err := tx.Exec(`
			INSERT INTO assets (job_id, asset_id, format_id, channel_id, status, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, jobID, asset.AssetID, asset.FormatID, asset.ChannelID, asset.Status, now); err != nil {
			return nil, fmt.Errorf("jobstore: plan asset run: insert asset: %w", err)
		}
		assets = append(assets, asset)
	}

	result, err := tx.Exec(`
		UPDATE jobs SET
			asset_run_status = ?,
			asset_run_planned_count = ?,
			asset_run_completed_count = 0,
			asset_run_error = NULL,
			updated_at = ?
		WHERE job_id = ?
	`, string(AssetRunPlanning), len(rows), now, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobstore: plan asset run: update job: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("jobstore: plan asset run: job %q not found", jobID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("jobstore: plan asset run: commit: %w", err)
	}

	logging.Job("job=%s: asset run planned, %d assets", jobID, len(assets))
	return assets, nil
}

// UpsertAsset merges content and applies a status transition for one
// asset. READY and FAILED are terminal: once reached, further calls for
// the same assetId are rejected (spec §3 Lifecycles, §4.F) unless a new
// PlanAssetRun has since replaced the row.
func (s *Store) UpsertAsset(jobID, assetID string, status AssetStatus, content map[string]any, logoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("jobstore: upsert asset: begin: %w", err)
	}
	defer tx.Rollback()

	var currentStatus AssetStatus
	err = tx.QueryRow(`SELECT status FROM assets WHERE job_id = ? AND asset_id = ?`, jobID, assetID).Scan(&currentStatus)
	if err == sql.ErrNoRows {
		return fmt.Errorf("jobstore: upsert asset: asset %q not found for job %q", assetID, jobID)
	}
	if err != nil {
		return fmt.Errorf("jobstore: upsert asset: read current status: %w", err)
	}
	if terminalAssetStatus(currentStatus) {
		return fmt.Errorf("jobstore: upsert asset: asset %q is already terminal (%s)", assetID, currentStatus)
	}

	contentBody, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("jobstore: upsert asset: encode content: %w", err)
	}

	now := time.Now()
	if _, err := tx.Exec(`
		UPDATE assets SET status = ?, content_json = ?, logo_url = ?, updated_at = ?
		WHERE job_id = ? AND asset_id = ?
	`, status, contentBody, logoURL, now, jobID, assetID); err != nil {
		return fmt.Errorf("jobstore: upsert asset: update: %w", err)
	}

	if terminalAssetStatus(status) {
		if err := s.recomputeAssetRunLocked(tx, jobID, now); err != nil {
			if _, ok := err.(*errInvariant); ok {
				// Keep the failed assetRun status written by the recount.
				_ = tx.Commit()
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("jobstore: upsert asset: commit: %w", err)
	}
	logging.Job("job=%s asset=%s: status -> %s", jobID, assetID, status)
	return nil
}

// recomputeAssetRunLocked recounts completed/failed assets and advances
// assetRun.status to completed once every planned asset is terminal,
// enforcing completedCount <= plannedCount (spec §4.F invariants).
func (s *Store) recomputeAssetRunLocked(tx *sql.Tx, jobID string, now time.Time) error {
	var planned int
	if err := tx.QueryRow(`SELECT asset_run_planned_count FROM jobs WHERE job_id = ?`, jobID).Scan(&planned); err != nil {
		return fmt.Errorf("jobstore: recompute asset run: read planned count: %w", err)
	}

	var terminalCount, failedCount int
	if err := tx.QueryRow(`
		SELECT COUNT(*), SUM(CASE WHEN status = ? THEN 1 ELSE 0 END)
		FROM assets WHERE job_id = ? AND status IN (?, ?)
	`, AssetFailed, jobID, AssetReady, AssetFailed).Scan(&terminalCount, &failedCount); err != nil {
		return fmt.Errorf("jobstore: recompute asset run: count terminal: %w", err)
	}

	if terminalCount > planned {
		_, _ = tx.Exec(`UPDATE jobs SET asset_run_status = ?, asset_run_error = ? WHERE job_id = ?`,
			string(AssetRunFailed), "internal_invariant: completedCount > plannedCount", jobID)
		return newInvariantError("completed_count_exceeds_planned", fmt.Sprintf("job %q: terminal=%d planned=%d", jobID, terminalCount, planned))
	}

	status := AssetRunGenerating
	if terminalCount == planned && planned > 0 {
		status = AssetRunCompleted
	}

	_, err := tx.Exec(`
		UPDATE jobs SET asset_run_status = ?, asset_run_completed_count = ?, updated_at = ? WHERE job_id = ?
	`, string(status), terminalCount, now, jobID)
	if err != nil {
		return fmt.Errorf("jobstore: recompute asset run: update: %w", err)
	}
	return nil
}

// GetAssetRun returns the job's current aggregate asset run state.
func (s *Store) GetAssetRun(jobID string) (*AssetRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var status sql.NullString
	var planned, completed int
	var runErr sql.NullString
	err := s.db.QueryRow(`
		SELECT asset_run_status, asset_run_planned_count, asset_run_completed_count, asset_run_error
		FROM jobs WHERE job_id = ?
	`, jobID).Scan(&status, &planned, &completed, &runErr)
	if err == sql.ErrNoRows || !status.Valid {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: get asset run: %w", err)
	}
	return &AssetRun{
		Status:         AssetRunStatus(status.String),
		PlannedCount:   planned,
		CompletedCount: completed,
		Error:          runErr.String,
	}, nil
}

// GetAssets returns every asset row for jobID. This is the monotonic
// polling read path's data source (see snapshot.go).
func (s *Store) GetAssets(jobID string) ([]Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAssetsLocked(jobID)
}

func (s *Store) getAssetsLocked(jobID string) ([]Asset, error) {
	rows, err := s.db.Query(`
		SELECT asset_id, format_id, channel_id, status, content_json, logo_url, updated_at
		FROM assets WHERE job_id = ? ORDER BY updated_at ASC, asset_id ASC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobstore: get assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var asset Asset
		var contentBody, logoURL sql.NullString
		if err := rows.Scan(&asset.AssetID, &asset.FormatID, &asset.ChannelID, &asset.Status,
			&contentBody, &logoURL, &asset.UpdatedAt); err != nil {
			return nil, fmt.Errorf("jobstore: scan asset: %w", err)
		}
		asset.LogoURL = logoURL.String
		if contentBody.Valid {
			_ = json.Unmarshal([]byte(contentBody.String), &asset.Content)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}
