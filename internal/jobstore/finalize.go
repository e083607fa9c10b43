package jobstore

import (
	"database/sql"
	"fmt"
	"time"

	"jobcore/internal/logging"
)

// ErrInvalidSource is returned when Finalize is called with a source
// outside the closed {original, refined, edited} set (spec §4.F).
var ErrInvalidSource = fmt.Errorf("jobstore: source must be one of original, refined, edited")

var validSources = map[FinalizationSource]bool{
	SourceOriginal: true, SourceRefined: true, SourceEdited: true,
}

// Finalize records the approval click: finalJob becomes the authoritative
// draft variant, source records which lineage it came from. Re-running
// Finalize is a new finalization event and is always allowed (spec §3
// Lifecycles); within one event source is written atomically alongside
// finalizedAt so no reader observes the old source next to the new
// finalizedAt.
func (s *Store) Finalize(jobID string, finalJob Draft, source FinalizationSource) (Finalization, error) {
	if !validSources[source] {
		return Finalization{}, ErrInvalidSource
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := encodeDraft(finalJob)
	if err != nil {
		return Finalization{}, fmt.Errorf("jobstore: encode final job: %w", err)
	}
	finalizedAt := time.Now()

	result, err := s.db.Exec(`
		UPDATE jobs SET
			finalization_source = ?,
			finalized_draft_json = ?,
			finalized_at = ?,
			updated_at = ?
		WHERE job_id = ?
	`, string(source), body, finalizedAt, finalizedAt, jobID)
	if err != nil {
		return Finalization{}, fmt.Errorf("jobstore: finalize: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return Finalization{}, fmt.Errorf("jobstore: finalize: job %q not found", jobID)
	}

	logging.Job("job=%s: finalized source=%s", jobID, source)
	logging.AuditWithJob(jobID).JobLifecycle(logging.AuditJobFinalized, jobID, string(source))
	return Finalization{Source: source, FinalizedAt: finalizedAt}, nil
}

// GetFinalization returns the job's current finalization, if any.
func (s *Store) GetFinalization(jobID string) (*Finalization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var source sql.NullString
	var finalizedAt sql.NullTime
	err := s.db.QueryRow(`SELECT finalization_source, finalized_at FROM jobs WHERE job_id = ?`, jobID).
		Scan(&source, &finalizedAt)
	if err == sql.ErrNoRows || !source.Valid {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: get finalization: %w", err)
	}
	return &Finalization{Source: FinalizationSource(source.String), FinalizedAt: finalizedAt.Time}, nil
}

// GetFinalizedDraft returns the draft snapshot recorded at the most recent
// Finalize call.
func (s *Store) GetFinalizedDraft(jobID string) (Draft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw sql.NullString
	err := s.db.QueryRow(`SELECT finalized_draft_json FROM jobs WHERE job_id = ?`, jobID).Scan(&raw)
	if err == sql.ErrNoRows || !raw.Valid {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("jobstore: get finalized draft: %w", err)
	}
	draft, err := decodeDraft(raw.String)
	if err != nil {
		return Draft{}, false, fmt.Errorf("jobstore: decode finalized draft: %w", err)
	}
	return draft, true, nil
}
