package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// GetJob assembles the full per-job document (spec §3 Job). It is the
// single read path the HTTP surface's polling GET uses; because every
// component write (UpsertAsset, SetChannelRecommendations, ...) commits
// its own transaction before this read can observe it, and because
// completedCount/terminal asset status only ever move forward, two calls
// separated in time never disagree in the "fewer completed assets"
// direction (spec §9 DESIGN NOTES, §8 invariant: snapshot monotonicity).
func (s *Store) GetJob(jobID string) (*Job, bool, error) {
	s.mu.RLock()
	row := s.db.QueryRow(`
		SELECT draft_json, refined_json, refinement_summary, refinement_metadata_json,
			refinement_failure_json, finalization_source, finalized_at,
			channels_updated_at, channels_failure_json,
			asset_run_status, asset_run_planned_count, asset_run_completed_count, asset_run_error,
			hero_image_json, video_json, created_at, updated_at
		FROM jobs WHERE job_id = ?
	`, jobID)

	var (
		draftRaw, refinedRaw, refinementMetaRaw, refinementFailureRaw sql.NullString
		summary                                                      sql.NullString
		finalizationSource                                           sql.NullString
		finalizedAt, channelsUpdatedAt                                sql.NullTime
		channelsFailureRaw                                           sql.NullString
		assetRunStatus                                               sql.NullString
		plannedCount, completedCount                                 int
		assetRunError                                                sql.NullString
		heroImageRaw, videoRaw                                       sql.NullString
		job                                                          Job
	)

	err := row.Scan(&draftRaw, &refinedRaw, &summary, &refinementMetaRaw, &refinementFailureRaw,
		&finalizationSource, &finalizedAt, &channelsUpdatedAt, &channelsFailureRaw,
		&assetRunStatus, &plannedCount, &completedCount, &assetRunError,
		&heroImageRaw, &videoRaw, &job.CreatedAt, &job.UpdatedAt)
	s.mu.RUnlock()

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("jobstore: get job: %w", err)
	}
	job.JobID = jobID

	draft, err := decodeDraft(draftRaw.String)
	if err != nil {
		return nil, false, fmt.Errorf("jobstore: get job: decode draft: %w", err)
	}
	job.Draft = draft

	if refinedRaw.Valid {
		refined, err := decodeDraft(refinedRaw.String)
		if err != nil {
			return nil, false, fmt.Errorf("jobstore: get job: decode refined: %w", err)
		}
		job.Refined = &refined
		job.RefinementSummary = summary.String
	}
	if refinementMetaRaw.Valid {
		var meta RefinementMetadata
		if err := json.Unmarshal([]byte(refinementMetaRaw.String), &meta); err == nil {
			job.RefinementMetadata = &meta
		}
	}
	if refinementFailureRaw.Valid {
		var failure Failure
		if err := json.Unmarshal([]byte(refinementFailureRaw.String), &failure); err == nil {
			job.RefinementFailure = &failure
		}
	}
	if finalizationSource.Valid {
		job.Finalization = &Finalization{
			Source:      FinalizationSource(finalizationSource.String),
			FinalizedAt: finalizedAt.Time,
		}
	}
	if channelsUpdatedAt.Valid {
		job.ChannelsUpdatedAt = channelsUpdatedAt.Time
	}
	if channelsFailureRaw.Valid {
		var failure Failure
		if err := json.Unmarshal([]byte(channelsFailureRaw.String), &failure); err == nil {
			job.ChannelsFailure = &failure
		}
	}
	if assetRunStatus.Valid {
		job.AssetRun = &AssetRun{
			Status:         AssetRunStatus(assetRunStatus.String),
			PlannedCount:   plannedCount,
			CompletedCount: completedCount,
			Error:          assetRunError.String,
		}
	}
	if heroImageRaw.Valid {
		var hero HeroImage
		if err := json.Unmarshal([]byte(heroImageRaw.String), &hero); err == nil {
			job.HeroImage = &hero
		}
	}
	if videoRaw.Valid {
		var video Video
		if err := json.Unmarshal([]byte(videoRaw.String), &video); err == nil {
			job.Video = &video
		}
	}

	recs, err := s.GetChannelRecommendations(jobID)
	if err != nil {
		return nil, false, err
	}
	job.ChannelRecommendations = recs

	assets, err := s.GetAssets(jobID)
	if err != nil {
		return nil, false, err
	}
	job.Assets = assets

	conversation, err := s.GetConversation(jobID)
	if err != nil {
		return nil, false, err
	}
	job.CopilotConversation = conversation

	return &job, true, nil
}
