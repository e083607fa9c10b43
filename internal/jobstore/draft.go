package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobcore/internal/logging"
)

// ErrUnknownField is returned by PutDraft when the input carries a field id
// outside the closed set (spec §3 Job Draft, invariant 1).
type ErrUnknownField struct{ FieldID string }

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("jobstore: unknown draft field id %q", e.FieldID)
}

// ErrInvalidLogoURL is returned when logoUrl is neither an absolute URL nor
// a data: URL (spec §3 Job Draft invariants).
var ErrInvalidLogoURL = fmt.Errorf("jobstore: logoUrl must be an absolute URL or a data: URL")

// NormalizeDraft trims scalars, drops empty list entries, and validates
// logoUrl's shape. It is applied on every PutDraft so the invariant
// "putDraft(getDraft(J)) == J for the draft portion" (spec §8.7) holds
// regardless of how ragged the caller's input is.
func NormalizeDraft(raw map[string]any) (Draft, error) {
	draft := NewDraft()
	for key, value := range raw {
		field := FieldID(key)
		switch {
		case scalarFields[field]:
			s, _ := value.(string)
			s = strings.TrimSpace(s)
			if field == FieldLogoURL && s != "" {
				if !isValidLogoURL(s) {
					return Draft{}, ErrInvalidLogoURL
				}
			}
			if s != "" {
				draft.Scalars[field] = s
			}
		case listFields[field]:
			items, _ := value.([]any)
			cleaned := make([]string, 0, len(items))
			for _, item := range items {
				s, _ := item.(string)
				s = strings.TrimSpace(s)
				if s != "" {
					cleaned = append(cleaned, s)
				}
			}
			if len(cleaned) > 0 {
				draft.Lists[field] = cleaned
			}
		default:
			return Draft{}, &ErrUnknownField{FieldID: key}
		}
	}
	return draft, nil
}

func isValidLogoURL(raw string) bool {
	if strings.HasPrefix(raw, "data:") {
		return true
	}
	parsed, err := url.Parse(raw)
	return err == nil && parsed.IsAbs() && parsed.Host != ""
}

// ToMap renders a Draft back into the caller-facing field-id map.
func (d Draft) ToMap() map[string]any {
	out := make(map[string]any, len(d.Scalars)+len(d.Lists))
	for k, v := range d.Scalars {
		out[string(k)] = v
	}
	for k, v := range d.Lists {
		out[string(k)] = v
	}
	return out
}

// HasRequiredForRefine reports whether every RequiredForRefine field is
// present and non-empty.
func (d Draft) HasRequiredForRefine() bool {
	for _, field := range RequiredForRefine {
		if d.Scalars[field] == "" {
			return false
		}
	}
	return true
}

func encodeDraft(d Draft) (string, error) {
	body, err := json.Marshal(d.ToMap())
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func decodeDraft(raw string) (Draft, error) {
	if raw == "" {
		return NewDraft(), nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Draft{}, err
	}
	return NormalizeDraft(m)
}

// GetDraft returns the current draft for jobId, or (Draft{}, false, nil) if
// the job does not exist.
func (s *Store) GetDraft(jobID string) (Draft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow(`SELECT draft_json FROM jobs WHERE job_id = ?`, jobID).Scan(&raw)
	if err == sql.ErrNoRows {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("jobstore: get draft: %w", err)
	}
	draft, err := decodeDraft(raw)
	if err != nil {
		return Draft{}, false, fmt.Errorf("jobstore: decode draft: %w", err)
	}
	return draft, true, nil
}

// PutDraft merges patch over the existing draft (scalar fields merge
// individually, list fields replace whole — spec §4.F), creating the job
// row if it does not yet exist.
func (s *Store) PutDraft(jobID string, patch map[string]any) (Draft, error) {
	patched, err := NormalizeDraft(patch)
	if err != nil {
		return Draft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existingRaw sql.NullString
	err = s.db.QueryRow(`SELECT draft_json FROM jobs WHERE job_id = ?`, jobID).Scan(&existingRaw)
	isNewJob := err == sql.ErrNoRows
	now := time.Now()

	merged := NewDraft()
	if err == nil && existingRaw.Valid {
		existing, decodeErr := decodeDraft(existingRaw.String)
		if decodeErr != nil {
			return Draft{}, fmt.Errorf("jobstore: decode existing draft: %w", decodeErr)
		}
		for k, v := range existing.Scalars {
			merged.Scalars[k] = v
		}
		for k, v := range existing.Lists {
			merged.Lists[k] = v
		}
	} else if err != nil && err != sql.ErrNoRows {
		return Draft{}, fmt.Errorf("jobstore: get draft: %w", err)
	}

	for k, v := range patched.Scalars {
		merged.Scalars[k] = v
	}
	for k, v := range patched.Lists {
		merged.Lists[k] = v
	}
	for k := range patch {
		field := FieldID(k)
		if scalarFields[field] && patched.Scalars[field] == "" {
			delete(merged.Scalars, field)
		}
	}

	body, err := encodeDraft(merged)
	if err != nil {
		return Draft{}, fmt.Errorf("jobstore: encode draft: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO jobs (job_id, draft_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET draft_json = excluded.draft_json, updated_at = excluded.updated_at
	`, jobID, body, now, now)
	if err != nil {
		return Draft{}, fmt.Errorf("jobstore: put draft: %w", err)
	}

	logging.Job("job=%s: draft updated (%d scalar, %d list fields)", jobID, len(merged.Scalars), len(merged.Lists))
	if isNewJob {
		logging.AuditWithJob(jobID).JobLifecycle(logging.AuditJobCreated, jobID, "draft_created")
	}
	return merged, nil
}
