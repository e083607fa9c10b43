package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobcore/internal/logging"
)

// PutRefinement stores both sides of a refine-task run: the original draft
// that was sent and the refined draft that came back, plus the analysis
// summary/metadata. A non-nil failure records a run that could not produce
// a refined draft at all (spec §4.F).
func (s *Store) PutRefinement(jobID string, refined Draft, summary string, metadata RefinementMetadata, failure *Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refinedBody, err := encodeDraft(refined)
	if err != nil {
		return fmt.Errorf("jobstore: encode refined draft: %w", err)
	}
	metadataBody, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("jobstore: encode refinement metadata: %w", err)
	}

	var failureBody sql.NullString
	if failure != nil {
		body, err := json.Marshal(failure)
		if err != nil {
			return fmt.Errorf("jobstore: encode refinement failure: %w", err)
		}
		failureBody = sql.NullString{String: string(body), Valid: true}
	}

	result, err := s.db.Exec(`
		UPDATE jobs SET
			refined_json = ?,
			refinement_summary = ?,
			refinement_metadata_json = ?,
			refinement_failure_json = ?,
			updated_at = ?
		WHERE job_id = ?
	`, refinedBody, summary, metadataBody, failureBody, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("jobstore: put refinement: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("jobstore: put refinement: job %q not found", jobID)
	}

	logging.Job("job=%s: refinement stored (improvement_score=%d)", jobID, metadata.ImprovementScore)
	logging.AuditWithJob(jobID).JobLifecycle(logging.AuditJobRefined, jobID, "refined")
	return nil
}

// GetRefined returns the job's current refined draft, if any.
func (s *Store) GetRefined(jobID string) (Draft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw sql.NullString
	err := s.db.QueryRow(`SELECT refined_json FROM jobs WHERE job_id = ?`, jobID).Scan(&raw)
	if err == sql.ErrNoRows || !raw.Valid {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("jobstore: get refined: %w", err)
	}
	draft, err := decodeDraft(raw.String)
	if err != nil {
		return Draft{}, false, fmt.Errorf("jobstore: decode refined draft: %w", err)
	}
	return draft, true, nil
}
