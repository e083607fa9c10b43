package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobcore/internal/logging"
)

// SetHeroImage replaces the job's single hero-image record (spec §4.F).
func (s *Store) SetHeroImage(jobID string, record HeroImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("jobstore: encode hero image: %w", err)
	}
	result, err := s.db.Exec(`UPDATE jobs SET hero_image_json = ?, updated_at = ? WHERE job_id = ?`, body, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("jobstore: set hero image: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("jobstore: set hero image: job %q not found", jobID)
	}
	logging.HeroImage("job=%s: hero image -> %s", jobID, record.Status)
	return nil
}

// GetHeroImage returns the job's current hero-image record, if any.
func (s *Store) GetHeroImage(jobID string) (*HeroImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw sql.NullString
	err := s.db.QueryRow(`SELECT hero_image_json FROM jobs WHERE job_id = ?`, jobID).Scan(&raw)
	if err == sql.ErrNoRows || !raw.Valid {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: get hero image: %w", err)
	}
	var record HeroImage
	if err := json.Unmarshal([]byte(raw.String), &record); err != nil {
		return nil, fmt.Errorf("jobstore: decode hero image: %w", err)
	}
	return &record, nil
}

// SetVideo replaces the job's single video record (spec §4.F).
func (s *Store) SetVideo(jobID string, record Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("jobstore: encode video: %w", err)
	}
	result, err := s.db.Exec(`UPDATE jobs SET video_json = ?, updated_at = ? WHERE job_id = ?`, body, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("jobstore: set video: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("jobstore: set video: job %q not found", jobID)
	}
	logging.Video("job=%s: video -> %s", jobID, record.Status)
	return nil
}

// GetVideo returns the job's current video record, if any.
func (s *Store) GetVideo(jobID string) (*Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw sql.NullString
	err := s.db.QueryRow(`SELECT video_json FROM jobs WHERE job_id = ?`, jobID).Scan(&raw)
	if err == sql.ErrNoRows || !raw.Valid {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: get video: %w", err)
	}
	var record Video
	if err := json.Unmarshal([]byte(raw.String), &record); err != nil {
		return nil, fmt.Errorf("jobstore: decode video: %w", err)
	}
	return &record, nil
}
